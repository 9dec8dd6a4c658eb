package declaration

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-dpiva/pkg/compression"
)

// Extension is the only accepted declaration file extension
const Extension = ".xml"

// Declaration is one periodic VAT declaration read from a file or bundle.
type Declaration struct {
	// Name is the file path or bundle entry name
	Name string
	Data []byte
	Info *Info
	// Err is set when the declaration was rejected before submission
	Err error
}

// Info holds the header fields of a DPIVA document.
type Info struct {
	NIF    string
	Year   string
	Period string
}

// Load reads and checks a declaration file.
func Load(filePath string) (*Declaration, error) {
	if !HasExtension(filePath) {
		return nil, fmt.Errorf("%s: %w", filePath, ErrWrongExtension)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filePath, ErrUnreadable, err)
	}
	if info.Size() > MaxSize {
		return nil, fmt.Errorf("%s: %w: larger than %d bytes", filePath, ErrUnreadable, MaxSize)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", filePath, ErrUnreadable, err)
	}

	return New(filePath, data)
}

// New parses the header of an in-memory declaration.
func New(name string, data []byte) (*Declaration, error) {
	info, err := ParseInfo(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Declaration{Name: name, Data: data, Info: info}, nil
}

// LoadBundle reads a zip bundle of declarations. Entries that fail the
// extension or header checks are returned with Err set so the caller can
// report them without aborting the rest of the bundle.
func LoadBundle(bundlePath string) ([]*Declaration, error) {
	archive, err := os.ReadFile(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	entries, err := compression.Unzip(archive, MaxSize)
	if err != nil {
		return nil, fmt.Errorf("extracting bundle %s: %w", bundlePath, err)
	}

	decls := make([]*Declaration, 0, len(entries))
	for _, entry := range entries {
		name := bundlePath + ":" + entry.Name
		if !HasExtension(entry.Name) {
			decls = append(decls, &Declaration{Name: name, Err: ErrWrongExtension})
			continue
		}
		d, err := New(name, entry.Data)
		if err != nil {
			decls = append(decls, &Declaration{Name: name, Data: entry.Data, Err: err})
			continue
		}
		decls = append(decls, d)
	}
	return decls, nil
}

// HasExtension reports whether name ends in the declaration extension.
func HasExtension(name string) bool {
	return strings.EqualFold(path.Ext(filepath.ToSlash(name)), Extension)
}

// ParseInfo reads nif, anoDeclaracao and periodoDeclaracao from
// dpiva/rosto/inicio.
func ParseInfo(data []byte) (*Info, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "dpiva" {
		return nil, fmt.Errorf("%w: root element is not dpiva", ErrUnreadable)
	}

	inicio := child(child(root, "rosto"), "inicio")
	if inicio == nil {
		return nil, fmt.Errorf("%w: dpiva/rosto/inicio not found", ErrUnreadable)
	}

	info := &Info{
		NIF:    text(child(inicio, "nif")),
		Year:   text(child(inicio, "anoDeclaracao")),
		Period: text(child(inicio, "periodoDeclaracao")),
	}
	switch {
	case info.NIF == "":
		return nil, fmt.Errorf("%w: client NIF not found", ErrUnreadable)
	case info.Year == "":
		return nil, fmt.Errorf("%w: declaration year not found", ErrUnreadable)
	case info.Period == "":
		return nil, fmt.Errorf("%w: declaration period not found", ErrUnreadable)
	}
	return info, nil
}

// child returns the first child element with the given local name.
func child(e *etree.Element, tag string) *etree.Element {
	if e == nil {
		return nil
	}
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func text(e *etree.Element) string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text())
}

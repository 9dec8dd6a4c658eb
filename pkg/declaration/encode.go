package declaration

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/sirosfoundation/go-dpiva/pkg/compression"
)

// EntryName is the name of the single archive entry the service expects
const EntryName = "data.txt"

// MaxSize bounds a declaration document.
const MaxSize = 16 << 20

// Encode wraps a declaration document for the declaracao element: a zip
// archive with the document as data.txt, base64 encoded twice.
func Encode(data []byte) (string, error) {
	archive, err := compression.ZipSingle(EntryName, data, compression.DefaultZipLevel)
	if err != nil {
		return "", &EncodingError{Err: err}
	}

	once := base64.StdEncoding.EncodeToString(archive)
	return base64.StdEncoding.EncodeToString([]byte(once)), nil
}

// Decode reverses Encode and returns the original document.
func Decode(encoded string) ([]byte, error) {
	once, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("outer base64: %w", err)
	}
	archive, err := base64.StdEncoding.DecodeString(string(once))
	if err != nil {
		return nil, fmt.Errorf("inner base64: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != EntryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", EntryName, err)
		}
		defer rc.Close()
		return io.ReadAll(io.LimitReader(rc, MaxSize))
	}
	return nil, fmt.Errorf("archive has no %s entry", EntryName)
}

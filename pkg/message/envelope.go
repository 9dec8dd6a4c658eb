package message

import (
	"errors"
	"strings"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-dpiva/pkg/security"
)

// SubmitRequest holds everything placed in a submission envelope
type SubmitRequest struct {
	Filer *security.UsernameToken
	// Accountant selects the dual-actor envelope when set
	Accountant *security.UsernameToken
	// Declaration is the encoded declaration payload
	Declaration string
	// Version defaults to DefaultDeclarationVersion
	Version string
}

// BuildEnvelope renders the submission request as a single-line SOAP envelope.
//
// With an accountant token the header carries one Security block per actor,
// each declaring the at and wss namespaces, and the body has no
// aceitaAlertas. Without it those namespaces are declared on the Envelope
// and the body accepts alerts.
func BuildEnvelope(req *SubmitRequest) ([]byte, error) {
	if req == nil || req.Filer == nil {
		return nil, errors.New("filer token is required")
	}
	if req.Declaration == "" {
		return nil, errors.New("declaration is required")
	}
	version := req.Version
	if version == "" {
		version = DefaultDeclarationVersion
	}
	dual := req.Accountant != nil

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8" standalone="no"`)

	envelope := doc.CreateElement("S:Envelope")
	envelope.CreateAttr("xmlns:S", NsSOAPEnv)
	if !dual {
		envelope.CreateAttr("xmlns:at", NsAuth)
		envelope.CreateAttr("xmlns:wss", NsWSS)
	}

	header := envelope.CreateElement("S:Header")
	addSecurity(header, ActorSPA, req.Filer, dual, false)
	if dual {
		// the reference client trims only the accountant's password ciphertext
		addSecurity(header, ActorTOC, req.Accountant, true, true)
	}

	body := envelope.CreateElement("S:Body")
	op := body.CreateElement("tns:" + SubmitOperation)
	op.CreateAttr("xmlns:tns", NsDeclaration)
	setText(op.CreateElement("versaoDeclaracao"), version)
	setText(op.CreateElement("declaracao"), req.Declaration)
	if !dual {
		op.CreateElement("aceitaAlertas").SetText("true")
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}
	return CollapseWhitespace(out), nil
}

func addSecurity(header *etree.Element, actor string, token *security.UsernameToken, declareNamespaces, trimPassword bool) {
	sec := header.CreateElement("wss:Security")
	if declareNamespaces {
		sec.CreateAttr("xmlns:at", NsAuth)
		sec.CreateAttr("xmlns:wss", NsWSS)
	}
	sec.CreateAttr("S:Actor", actor)
	sec.CreateAttr("at:Version", AuthVersion)

	ut := sec.CreateElement("wss:UsernameToken")
	setText(ut.CreateElement("wss:Username"), strings.TrimSpace(token.Username))
	setText(ut.CreateElement("wss:Nonce"), token.Nonce)

	password := token.Password
	if trimPassword {
		password = strings.TrimSpace(password)
	}
	pw := ut.CreateElement("wss:Password")
	pw.CreateAttr("Type", PasswordType)
	pw.CreateAttr("Digest", token.Digest)
	setText(pw, password)

	setText(ut.CreateElement("wss:Created"), token.Created)
}

const (
	cdataStart = "<![CDATA["
	cdataEnd   = "]]>"
)

// setText writes value as escaped text, or as a CDATA section when value is
// already wrapped in one.
func setText(e *etree.Element, value string) {
	if IsCDATA(value) {
		e.CreateCData(value[len(cdataStart) : len(value)-len(cdataEnd)])
		return
	}
	e.SetText(value)
}

// IsCDATA reports whether s is a complete CDATA section.
func IsCDATA(s string) bool {
	return len(s) >= len(cdataStart)+len(cdataEnd) &&
		strings.HasPrefix(s, cdataStart) && strings.HasSuffix(s, cdataEnd)
}

// CollapseWhitespace removes line breaks and folds every remaining run of
// whitespace into a single space.
func CollapseWhitespace(in []byte) []byte {
	out := make([]byte, 0, len(in))
	space := false
	for _, b := range in {
		switch b {
		case '\r', '\n':
			continue
		case ' ', '\t', '\f', '\v':
			space = true
			continue
		}
		if space {
			out = append(out, ' ')
			space = false
		}
		out = append(out, b)
	}
	if space {
		out = append(out, ' ')
	}
	return out
}

// Pretty returns an indented copy of an envelope for debug logs, or the
// envelope unchanged if it cannot be parsed.
func Pretty(envelope []byte) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(envelope); err != nil {
		return string(envelope)
	}
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return string(envelope)
	}
	return s
}

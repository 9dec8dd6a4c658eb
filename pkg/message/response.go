package message

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// SuccessCode is the only codigo that means the declaration was accepted
const SuccessCode = "0"

// Outcome is the classified result of a submission response
type Outcome struct {
	Code    string
	Message string
	// Submission is set when the response carried dadosSubmissao
	Submission *SubmissionData
	// Errors is set when the response carried erros
	Errors *ValidationErrors
}

// OK reports whether the service accepted the declaration.
func (o *Outcome) OK() bool {
	return o != nil && o.Code == SuccessCode
}

// SubmissionData is the receipt of an accepted declaration
type SubmissionData struct {
	Date          string
	Year          string
	Period        string
	DeclarationID string
	// TaxpayerNIFs lists contribuinte/nif in order: filer first, accountant second
	TaxpayerNIFs []string
}

// ValidationErrors is the first validation error reported by the service
type ValidationErrors struct {
	Annex      string
	Table      string
	Code       string
	Message    string
	MoreErrors string
}

// ParseResponse classifies a raw service response. Anything that is not a
// SOAP envelope whose body holds a *Response element is a *ProtocolError;
// a recognised response is returned as an Outcome whatever its code.
func ParseResponse(resp *transport.Response) (*Outcome, error) {
	if resp == nil {
		return nil, &ProtocolError{Reason: "no response"}
	}
	fail := func(reason string, err error) error {
		return &ProtocolError{
			Reason:        reason,
			StatusCode:    resp.StatusCode,
			StatusMessage: resp.StatusMessage,
			Body:          string(resp.Body),
			Err:           err,
		}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(resp.Body); err != nil {
		return nil, fail("response is not XML", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fail("empty response", nil)
	}

	var body *etree.Element
	if root.Tag == "Envelope" {
		body = child(root, "Body")
	}
	if body == nil {
		return nil, fail("missing SOAP body", nil)
	}

	elems := body.ChildElements()
	if len(elems) == 0 {
		return nil, fail("missing response element", nil)
	}
	el := elems[0]
	if el.Tag == "Fault" {
		return nil, fail("missing response element", fmt.Errorf("SOAP fault %s: %s",
			childText(el, "faultcode"), childText(el, "faultstring")))
	}
	if !strings.Contains(strings.ToLower(el.FullTag()), "response") {
		return nil, fail("missing response element", fmt.Errorf("unexpected element %s", el.FullTag()))
	}

	outcome := &Outcome{
		Code:    childText(el, "codigo"),
		Message: childText(el, "mensagem"),
	}

	if data := child(el, "dadosSubmissao"); data != nil {
		outcome.Submission = parseSubmissionData(data)
		outcome.Message = outcome.Submission.String()
	} else if errs := child(el, "erros"); errs != nil {
		outcome.Errors = parseValidationErrors(errs)
		outcome.Message = outcome.Errors.String()
	}

	return outcome, nil
}

func parseSubmissionData(e *etree.Element) *SubmissionData {
	data := &SubmissionData{
		Date:          childText(e, "data"),
		Year:          childText(e, "ano"),
		Period:        childText(e, "periodo"),
		DeclarationID: childText(e, "idDeclaracao"),
	}
	for _, c := range e.ChildElements() {
		if c.Tag == "contribuinte" {
			data.TaxpayerNIFs = append(data.TaxpayerNIFs, childText(c, "nif"))
		}
	}
	return data
}

func parseValidationErrors(e *etree.Element) *ValidationErrors {
	errs := &ValidationErrors{MoreErrors: childText(e, "temMaisErros")}
	if first := child(e, "erro"); first != nil {
		errs.Annex = childText(first, "anexo")
		errs.Table = childText(first, "quadro")
		errs.Code = childText(first, "codigo")
		errs.Message = childText(first, "mensagem")
	}
	return errs
}

// String formats the submission receipt as shown to the user.
func (d *SubmissionData) String() string {
	return fmt.Sprintf("Data: %s\nAno: %s\nPeriodo: %s\nidDeclaracao: %s\nContribuinte: %s\nTOC: %s",
		d.Date, d.Year, d.Period, d.DeclarationID, d.nif(0), d.nif(1))
}

func (d *SubmissionData) nif(i int) string {
	if i < len(d.TaxpayerNIFs) {
		return d.TaxpayerNIFs[i]
	}
	return ""
}

// String formats the validation error as shown to the user.
func (v *ValidationErrors) String() string {
	return fmt.Sprintf("(%s - %s - %s): %s. Tem mais erros: %s",
		v.Annex, v.Table, v.Code, v.Message, v.MoreErrors)
}

// child returns the first child element with the given local name.
func child(e *etree.Element, tag string) *etree.Element {
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func childText(e *etree.Element, tag string) string {
	c := child(e, tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text())
}

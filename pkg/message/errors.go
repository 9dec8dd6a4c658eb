package message

import "fmt"

// ProtocolError reports a response that is not a recognisable SOAP
// submission response. It keeps the raw body and HTTP status for diagnosis.
type ProtocolError struct {
	Reason        string
	StatusCode    int
	StatusMessage string
	Body          string
	Err           error
}

func (e *ProtocolError) Error() string {
	msg := "protocol error: " + e.Reason
	if e.StatusCode != 0 || e.StatusMessage != "" {
		msg += fmt.Sprintf(" (HTTP %d %s)", e.StatusCode, e.StatusMessage)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

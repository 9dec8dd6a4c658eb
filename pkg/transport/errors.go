package transport

import "fmt"

// Fault reports a failure to exchange the request with the service:
// connection, TLS, timeout or body read errors. HTTP error statuses are not
// faults; their bodies are returned for classification.
type Fault struct {
	Target   Target
	Endpoint string
	Err      error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("transport fault (%s %s): %v", f.Target, f.Endpoint, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

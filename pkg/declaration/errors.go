package declaration

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongExtension is returned for files that are not declaration XML documents
	ErrWrongExtension = errors.New("wrong file extension")
	// ErrUnreadable is returned when a declaration cannot be opened or lacks its header fields
	ErrUnreadable = errors.New("can't open file")
)

// EncodingError reports a failure to build the encoded declaration payload.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding declaration: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

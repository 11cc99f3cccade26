package payload

import "fmt"

// MalformedPayloadError reports a data-URI prefix that announces a payload
// but carries no comma-separated body.
type MalformedPayloadError struct {
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: %s", e.Reason)
}

// DecodeError reports a payload that is not valid base64 even after
// normalization.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("base64 decode failed: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

package apiclient

import (
	"bytes"
	"encoding/json"
)

// Envelope is the uniform wrapper returned by every API call.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// rawEnvelope defers decoding of data until the status has been checked.
// Success is a pointer so a body without the field is not read as a failure.
type rawEnvelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e rawEnvelope) failed() bool {
	return e.Success != nil && !*e.Success
}

// hasData reports whether data is present and not null.
func (e rawEnvelope) hasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

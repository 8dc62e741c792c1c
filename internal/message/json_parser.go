package message

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseDynamicJSON parses a JSON object into a DynamicMessage. Numbers are
// kept as json.Number so integer feature values survive unchanged.
func ParseDynamicJSON(data []byte) (DynamicMessage, error) {
	var msg DynamicMessage

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	if msg == nil {
		return nil, ErrNotAnObject
	}
	return msg, nil
}

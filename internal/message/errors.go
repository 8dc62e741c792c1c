package message

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal JSON message")
	ErrNotAnObject         = errors.New("message is not a JSON object")
)

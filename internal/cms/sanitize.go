package cms

import (
	"bytes"
	"encoding/json"
)

// Sanitize drops anything a misbehaving backend printed before the JSON
// payload, e.g. "Connected successfully[{...}]". Bodies without any JSON
// start are returned trimmed and unchanged otherwise.
func Sanitize(body []byte) []byte {
	body = bytes.TrimSpace(body)
	i := bytes.IndexAny(body, "[{")
	if i <= 0 {
		return body
	}
	return body[i:]
}

// decodeList parses a list payload. Anything that is not a JSON array yields
// an empty list.
func decodeList[T any](body []byte) ([]T, bool) {
	body = Sanitize(body)
	if len(body) == 0 || body[0] != '[' {
		return []T{}, false
	}
	var out []T
	if err := json.Unmarshal(body, &out); err != nil {
		return []T{}, false
	}
	if out == nil {
		out = []T{}
	}
	return out, true
}

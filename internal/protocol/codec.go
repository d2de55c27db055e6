package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Decode splits a frame into its command name and JSON object payload.
//
// The split happens on the first space only; the payload may contain spaces.
// The returned raw bytes are the payload exactly as received.
func Decode(line string) (name string, payload map[string]any, raw json.RawMessage, err error) {
	name, rest, found := strings.Cut(line, " ")
	if !found {
		return "", nil, nil, ErrMissingSeparator
	}

	raw = json.RawMessage(rest)
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", nil, nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if payload == nil {
		// "null" decodes into a nil map without error.
		return "", nil, nil, ErrInvalidPayload
	}

	return name, payload, raw, nil
}

// Encode renders "<name> <json>". No line terminator is added.
func Encode(name string, payload any) ([]byte, error) {
	if name == "" {
		return nil, ErrEmptyCommand
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", name, err)
	}

	var buf bytes.Buffer
	buf.Grow(len(name) + 1 + len(body))
	buf.WriteString(name)
	buf.WriteByte(' ')
	buf.Write(body)
	return buf.Bytes(), nil
}

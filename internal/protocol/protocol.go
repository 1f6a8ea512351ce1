// Package protocol implements the line-delimited JSON wire format spoken
// between the prime server and its clients: one JSON object per
// newline-terminated frame.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Error is the protocol-level error taxonomy: malformed frames, wrong
// shapes, unknown commands, and invalid required fields. Sessions report
// these to the client verbatim and keep serving.
type Error struct {
	reason string
}

func (e *Error) Error() string { return e.reason }

func Errorf(format string, args ...any) *Error {
	return &Error{reason: fmt.Sprintf(format, args...)}
}

// Message is one decoded client frame. Data values carry json.Number for
// numeric fields so integer validation can reject fractional input.
type Message struct {
	Command string
	Data    map[string]any
}

// Response is the server-side frame shape.
type Response struct {
	Status  string `json:"status"`
	Payload any    `json:"payload"`
}

// Decode parses one frame line into a Message. The command is lower-cased;
// a missing or null data field decodes to an empty map.
func Decode(line []byte) (Message, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Message{}, Errorf("payload is not valid JSON")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Message{}, Errorf("payload must be a JSON object")
	}
	command, ok := obj["command"].(string)
	if !ok {
		return Message{}, Errorf("command field must be a string")
	}
	data := map[string]any{}
	if v, present := obj["data"]; present && v != nil {
		m, ok := v.(map[string]any)
		if !ok {
			return Message{}, Errorf("data field must be a JSON object")
		}
		data = m
	}
	return Message{Command: strings.ToLower(command), Data: data}, nil
}

// Encode serializes one response frame, newline-terminated.
func Encode(payload any, status string) ([]byte, error) {
	frame, err := json.Marshal(Response{Status: status, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return append(frame, '\n'), nil
}

// EncodeResponse serializes a success frame.
func EncodeResponse(payload any) ([]byte, error) {
	return Encode(payload, StatusOK)
}

// EncodeError serializes an error frame carrying the message. The payload
// shape cannot fail to marshal, so no error is returned.
func EncodeError(message string) []byte {
	frame, _ := Encode(map[string]string{"error": message}, StatusError)
	return frame
}

package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeValidFrame(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"PRIME","data":{"number":17}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Command != "prime" {
		t.Fatalf("command not lower-cased: %q", msg.Command)
	}
	n, ok := msg.Data["number"].(json.Number)
	if !ok {
		t.Fatalf("expected json.Number, got %T", msg.Data["number"])
	}
	if v, err := n.Int64(); err != nil || v != 17 {
		t.Fatalf("unexpected number: %v %v", v, err)
	}
}

func TestDecodeDefaultsMissingData(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"stats"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Data == nil || len(msg.Data) != 0 {
		t.Fatalf("expected empty data map, got %v", msg.Data)
	}
}

func TestDecodeNullDataIsEmpty(t *testing.T) {
	msg, err := Decode([]byte(`{"command":"stats","data":null}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msg.Data) != 0 {
		t.Fatalf("expected empty data map, got %v", msg.Data)
	}
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{not json`,
		"non-object":         `[1,2,3]`,
		"missing command":    `{"data":{}}`,
		"non-string command": `{"command":7}`,
		"non-object data":    `{"command":"prime","data":[1]}`,
		"empty line":         ``,
	}
	for name, input := range cases {
		_, err := Decode([]byte(input))
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Fatalf("%s: expected protocol error, got %T", name, err)
		}
	}
}

func TestEncodeResponseShape(t *testing.T) {
	frame, err := EncodeResponse(map[string]any{"message": "connected", "client_id": 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasSuffix(string(frame), "\n") {
		t.Fatal("frame is not newline-terminated")
	}
	var resp Response
	if err := json.Unmarshal(frame, &resp); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if resp.Status != StatusOK {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
}

func TestEncodeErrorShape(t *testing.T) {
	frame := EncodeError("unknown command: bogus")
	var resp struct {
		Status  string            `json:"status"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(frame, &resp); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if resp.Status != StatusError {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
	if resp.Payload["error"] != "unknown command: bogus" {
		t.Fatalf("unexpected payload: %v", resp.Payload)
	}
}

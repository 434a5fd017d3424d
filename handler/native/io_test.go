package native

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"
)

func TestReadWriteMessage(t *testing.T) {
	var buf bytes.Buffer

	in := map[string]string{"type": "panel-ready"}
	if err := WriteMessage(&buf, in); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	// 4-byte little-endian length prefix
	var length uint32
	if err := binary.Read(bytes.NewReader(buf.Bytes()[:4]), binary.LittleEndian, &length); err != nil {
		t.Fatalf("read prefix: %v", err)
	}
	if int(length) != buf.Len()-4 {
		t.Errorf("prefix = %d, payload is %d bytes", length, buf.Len()-4)
	}

	raw, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["type"] != "panel-ready" {
		t.Errorf("type = %q, want panel-ready", out["type"])
	}
}

func TestReadMessageLimits(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
	}{
		{"zero length", 0},
		{"over cap", MaxMessageSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_ = binary.Write(&buf, binary.LittleEndian, tt.length)

			if _, err := ReadMessage(&buf); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadMessageTruncated(t *testing.T) {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, uint32(100))
	buf.WriteString("short")

	if _, err := ReadMessage(&buf); err == nil {
		t.Error("expected error on truncated payload")
	}
}

func TestReadMessageEOF(t *testing.T) {
	if _, err := ReadMessage(bytes.NewReader(nil)); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

// Package native speaks the Chrome Native Messaging protocol over
// stdio: 4-byte little-endian length prefix followed by a JSON payload,
// carrying the same envelopes as the HTTP bridge.
package native

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// MaxMessageSize is the 1 MiB cap the Chrome native messaging spec
// imposes on a single message.
const MaxMessageSize = 1024 * 1024

// ReadMessage reads one framed message.
func ReadMessage(r io.Reader) (json.RawMessage, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}

	if length == 0 {
		return nil, fmt.Errorf("invalid message length: 0")
	}

	if length > MaxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes (max %d)", length, MaxMessageSize)
	}

	msg := make([]byte, length)
	if _, err := io.ReadFull(r, msg); err != nil {
		return nil, fmt.Errorf("read message payload: %w", err)
	}

	return msg, nil
}

// WriteMessage writes one framed message.
func WriteMessage(w io.Writer, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if len(data) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("write length prefix: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write message payload: %w", err)
	}

	return nil
}

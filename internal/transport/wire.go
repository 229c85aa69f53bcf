package transport

import (
	"encoding/json"
	"fmt"

	"github.com/jabolina/pleroma/internal/message"
)

// Encode serializes a message for the wire. message.Message and
// value.ValueNode already carry the json tags the envelope needs
// (destination, source, function, promise_id, is_response, values; each
// value as kind/num/str/ref), and address.EntityAddress is marshalled
// by its field names Node, Vat and Entity, so there is no separate
// envelope DTO to keep in sync - the domain struct is marshalled
// directly.
func Encode(m message.Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("transport: encode: %w", err)
	}
	return b, nil
}

// Decode parses a wire payload back into a Message.
func Decode(b []byte) (message.Message, error) {
	var m message.Message
	if err := json.Unmarshal(b, &m); err != nil {
		return message.Message{}, fmt.Errorf("transport: decode: %w", err)
	}
	return m, nil
}

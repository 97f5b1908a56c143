package jumbf

import "encoding/json"

// JSONBox is a JUMBF content box whose payload is a JSON document (type
// "json"). C2PA assertions generally use CBOR, but JUMBF itself allows
// JSON content boxes and the engine must round-trip them byte-exactly
// like any other box (§4.1).
type JSONBox struct {
	Content interface{}
}

var _ Content = (*JSONBox)(nil)

// TypeTag implements Content.
func (b *JSONBox) TypeTag() string { return TypeJSON }

// EncodePayload implements Content.
func (b *JSONBox) EncodePayload() ([]byte, error) {
	return json.Marshal(b.Content)
}

func decodeJSON(payload []byte) (Content, error) {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return &JSONBox{Content: v}, nil
}

func init() {
	register(TypeJSON, decodeJSON)
}

// NewJSONBox wraps an already-decoded value for serialization.
func NewJSONBox(content interface{}) *JSONBox {
	return &JSONBox{Content: content}
}

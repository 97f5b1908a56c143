package jumbf

import (
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
)

// undefinedMarker is the single-byte CBOR encoding of the "undefined"
// simple value (major type 7, value 23): 0xf7. An empty CBORBox encodes
// its payload as exactly this byte rather than CBOR null (S4).
const undefinedMarker = 0xf7

// CBORBox is a JUMBF content box whose payload is a CBOR-encoded value
// (type "cbor"). Content holds the decoded value; when Content is nil and
// Undefined is true, the box represents an explicitly empty payload.
type CBORBox struct {
	Content   interface{}
	Undefined bool
}

var _ Content = (*CBORBox)(nil)

// TypeTag implements Content.
func (b *CBORBox) TypeTag() string { return TypeCBOR }

// EncodePayload implements Content.
func (b *CBORBox) EncodePayload() ([]byte, error) {
	if b.Undefined {
		return []byte{undefinedMarker}, nil
	}
	return c2pacbor.Marshal(b.Content)
}

func decodeCBOR(payload []byte) (Content, error) {
	if len(payload) == 1 && payload[0] == undefinedMarker {
		return &CBORBox{Undefined: true}, nil
	}

	var v interface{}
	if err := c2pacbor.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return &CBORBox{Content: v}, nil
}

func init() {
	register(TypeCBOR, decodeCBOR)
}

// NewCBORBox wraps an already-decoded value for serialization.
func NewCBORBox(content interface{}) *CBORBox {
	return &CBORBox{Content: content}
}

// NewUndefinedCBORBox returns the canonical empty CBORBox (S4).
func NewUndefinedCBORBox() *CBORBox {
	return &CBORBox{Undefined: true}
}

package jumbf

// RawBox is a JUMBF content box carrying uninterpreted binary data (type
// "bidb", §3 "raw binary"). It never decodes its payload; it exists so
// binary content boxes are represented the same way as every other known
// type instead of falling through to FallbackBox.
type RawBox struct {
	Data []byte
}

var _ Content = (*RawBox)(nil)

// TypeTag implements Content.
func (b *RawBox) TypeTag() string { return TypeRaw }

// EncodePayload implements Content.
func (b *RawBox) EncodePayload() ([]byte, error) {
	return b.Data, nil
}

func decodeRaw(payload []byte) (Content, error) {
	return &RawBox{Data: payload}, nil
}

func init() {
	register(TypeRaw, decodeRaw)
}

// NewRawBox wraps raw bytes for serialization.
func NewRawBox(data []byte) *RawBox {
	return &RawBox{Data: data}
}

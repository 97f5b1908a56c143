package jumbf

// FallbackBox preserves an unrecognized box type verbatim: its payload is
// carried as opaque bytes tagged with the original type, never decoded or
// re-encoded beyond replaying the bytes it was parsed from (§4.1, design
// note "explicit fallback variant carrying raw bytes and type tag").
type FallbackBox struct {
	OriginalType string
	Payload      []byte
}

var _ Content = (*FallbackBox)(nil)

// TypeTag implements Content.
func (b *FallbackBox) TypeTag() string { return b.OriginalType }

// EncodePayload implements Content.
func (b *FallbackBox) EncodePayload() ([]byte, error) {
	return b.Payload, nil
}

func decodeFallback(boxType string, payload []byte) (Content, error) {
	return &FallbackBox{OriginalType: boxType, Payload: payload}, nil
}

// NewFallbackBox wraps an opaque payload under an arbitrary type tag.
func NewFallbackBox(boxType string, payload []byte) *FallbackBox {
	return &FallbackBox{OriginalType: boxType, Payload: payload}
}

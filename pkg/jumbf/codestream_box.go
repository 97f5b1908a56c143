package jumbf

// CodestreamBox carries an embedded JPEG 2000/JUMBF code-stream payload
// (type "jp2c", §3). Like RawBox it is opaque, but kept as its own
// registered type so its semantics (an image code-stream, not arbitrary
// binary) are explicit in the tagged variant.
type CodestreamBox struct {
	Data []byte
}

var _ Content = (*CodestreamBox)(nil)

// TypeTag implements Content.
func (b *CodestreamBox) TypeTag() string { return TypeCodestream }

// EncodePayload implements Content.
func (b *CodestreamBox) EncodePayload() ([]byte, error) {
	return b.Data, nil
}

func decodeCodestream(payload []byte) (Content, error) {
	return &CodestreamBox{Data: payload}, nil
}

func init() {
	register(TypeCodestream, decodeCodestream)
}

// NewCodestreamBox wraps raw code-stream bytes for serialization.
func NewCodestreamBox(data []byte) *CodestreamBox {
	return &CodestreamBox{Data: data}
}

// EmbeddedFileBox carries an arbitrary embedded file payload (type
// "bfdb", §3). Used by thumbnail assertions and ingredient manifests that
// embed a full file rather than referencing it externally.
type EmbeddedFileBox struct {
	Data []byte
}

var _ Content = (*EmbeddedFileBox)(nil)

// TypeTag implements Content.
func (b *EmbeddedFileBox) TypeTag() string { return TypeEmbeddedFile }

// EncodePayload implements Content.
func (b *EmbeddedFileBox) EncodePayload() ([]byte, error) {
	return b.Data, nil
}

func decodeEmbeddedFile(payload []byte) (Content, error) {
	return &EmbeddedFileBox{Data: payload}, nil
}

func init() {
	register(TypeEmbeddedFile, decodeEmbeddedFile)
}

// NewEmbeddedFileBox wraps raw embedded-file bytes for serialization.
func NewEmbeddedFileBox(data []byte) *EmbeddedFileBox {
	return &EmbeddedFileBox{Data: data}
}

// Package jumbf implements the JUMBF (JPEG Universal Metadata Box Format,
// ISO/IEC 19566-5) engine: a generic typed-box container with recursive
// super-boxes, multiple content encodings, and exact byte-preserving
// round-tripping (§4.1).
//
// A Box is represented as a closed tagged variant: the box's 4-byte type
// tag plus a Content value drawn from a fixed set of known content types,
// with FallbackBox covering everything else. There is no dynamic
// class hierarchy — content decoding is dispatched through the schema
// registry in schema.go, a compile-time table keyed by type tag.
package jumbf

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/binutil"
	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// Well-known box type tags.
const (
	TypeSuperBox    = "jumb"
	TypeDescription = "jumd"
	TypeCBOR        = "cbor"
	TypeJSON        = "json"
	TypeRaw         = "bidb"
	TypeUUID        = "uuid"
	TypeCodestream  = "jp2c"
	TypeEmbeddedFile = "bfdb"
	TypeHashedURI   = "c2sh"
)

// extendedLengthMarker signals that an 8-byte length follows the header
// (§3, "When length == 1, an extended 64-bit length follows").
const extendedLengthMarker = 1

// toEndOfParent signals that the box extends to the end of its parent
// (§3, "when length == 0").
const toEndOfParent = 0

// headerSize is the fixed-size portion of every box header: 4-byte length
// plus 4-byte type. The optional 8-byte extended length is additional.
const headerSize = 8

// Content is implemented by every concrete box payload type (SuperBox,
// CBORBox, JSONBox, RawBox, UUIDBox, CodestreamBox, HashedURIBox,
// FallbackBox). EncodePayload produces the canonical re-encoding of the
// decoded value; it is only invoked when a Box has been mutated and its
// original bytes can no longer be replayed verbatim.
type Content interface {
	TypeTag() string
	EncodePayload() ([]byte, error)
}

// Box is a single JUMBF record: a 4-byte-type-tagged, length-prefixed
// span of bytes. Every Box retains the exact bytes it was parsed from
// (raw) and replays them on Marshal unless Touch has been called to mark
// the content as mutated (§4.1, "byte-exact reproducibility is a
// first-class requirement").
type Box struct {
	Type    string
	Content Content

	raw   []byte // exact original full box bytes (header + payload), nil if synthesized
	dirty bool
}

// NewBox wraps content in a fresh, synthesized (not yet serialized) Box.
func NewBox(content Content) *Box {
	return &Box{Type: content.TypeTag(), Content: content, dirty: true}
}

// Touch marks b as mutated, forcing Marshal to re-encode Content instead
// of replaying the original bytes even if b.raw is still present.
func (b *Box) Touch() { b.dirty = true }

// RawBytes returns the exact bytes this box was parsed from, or nil if it
// was constructed fresh and never serialized.
func (b *Box) RawBytes() []byte { return b.raw }

// Marshal serializes b to its full header+payload byte image. If the box
// has not been mutated since it was parsed, the original bytes are
// replayed exactly (invariant (ii), §3); otherwise Content.EncodePayload
// is invoked and a fresh header is computed.
func (b *Box) Marshal() ([]byte, error) {
	if !b.dirty && b.raw != nil {
		return b.raw, nil
	}

	payload, err := b.Content.EncodePayload()
	if err != nil {
		return nil, fmt.Errorf("jumbf: marshal %s: %w", b.Type, err)
	}

	w := binutil.NewWriter(headerSize + len(payload))
	writeHeader(w, b.Type, len(payload))
	w.WriteBytes(payload)

	out := w.Bytes()
	b.raw = out
	b.dirty = false
	return out, nil
}

func writeHeader(w *binutil.Writer, boxType string, payloadLen int) {
	totalLen := headerSize + payloadLen
	if totalLen > 0xFFFFFFFF {
		w.WriteUint32(extendedLengthMarker)
		w.WriteBytes([]byte(boxType))
		w.WriteUint64(uint64(totalLen) + 8)
		return
	}
	w.WriteUint32(uint32(totalLen))
	w.WriteBytes([]byte(boxType))
}

// ReadBox parses one box from r. remaining is the number of bytes left in
// the enclosing parent (or r.Len() at the top level); it is required to
// resolve the length==0 "extends to end of parent" case (§3).
func ReadBox(r *binutil.Reader, remaining int) (*Box, error) {
	start := r.Pos()

	declaredLen, err := r.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("jumbf: reading box length: %w", err)
	}
	typeBytes, err := r.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("jumbf: reading box type: %w", err)
	}
	boxType := string(typeBytes)

	var totalLen int
	headerLen := headerSize
	switch declaredLen {
	case toEndOfParent:
		totalLen = remaining
	case extendedLengthMarker:
		ext, err := r.ReadUint64()
		if err != nil {
			return nil, fmt.Errorf("jumbf: reading extended length of %q box: %w", boxType, err)
		}
		totalLen = int(ext)
		headerLen = headerSize + 8
	default:
		totalLen = int(declaredLen)
	}

	if totalLen < headerLen || totalLen > remaining {
		return nil, fmt.Errorf("%w: %q box declares length %d, have %d bytes remaining", c2paerrors.ErrMalformedBox, boxType, totalLen, remaining)
	}

	payloadLen := totalLen - headerLen
	payload, err := r.ReadBytes(payloadLen)
	if err != nil {
		return nil, fmt.Errorf("jumbf: reading %q payload: %w", boxType, err)
	}

	content, err := decodePayload(boxType, payload)
	if err != nil {
		return nil, fmt.Errorf("jumbf: decoding %q payload: %w", boxType, err)
	}

	raw := make([]byte, totalLen)
	copy(raw, sliceBetween(r, start, start+totalLen))

	return &Box{
		Type:    boxType,
		Content: content,
		raw:     raw,
	}, nil
}

// sliceBetween re-derives the backing bytes a Reader consumed between two
// absolute offsets. Reader keeps its buffer unexported, so ReadBox instead
// captures the image by re-reading through a small accessor; this helper
// exists purely to keep that logic in one place.
func sliceBetween(r *binutil.Reader, start, end int) []byte {
	return r.PeekAbsolute(start, end)
}

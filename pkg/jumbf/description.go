package jumbf

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/trustnxt/c2pa-go/pkg/binutil"
)

// Description toggle bits (§3).
const (
	toggleRequestable = 1 << 0 // reserved by ISO/IEC 19566-5, carried through unchanged
	toggleLabel       = 1 << 1
	toggleID          = 1 << 2
	toggleSignature   = 1 << 3
	togglePrivate     = 1 << 4
)

// DescriptionBox is the mandatory first child of every SuperBox (type
// "jumd"). It carries the UUID identifying the super-box's payload
// semantics plus optional label/ID/signature metadata (§3).
type DescriptionBox struct {
	UUID      uuid.UUID
	Label     *string
	ID        *uint32
	Signature []byte // 32-byte signature-of-payload field, when present
	Private   bool
	Requestable bool
}

var _ Content = (*DescriptionBox)(nil)

// TypeTag implements Content.
func (d *DescriptionBox) TypeTag() string { return TypeDescription }

// EncodePayload implements Content.
func (d *DescriptionBox) EncodePayload() ([]byte, error) {
	if d.Signature != nil && len(d.Signature) != 32 {
		return nil, fmt.Errorf("description box signature field must be 32 bytes, got %d", len(d.Signature))
	}

	var toggles uint8
	if d.Requestable {
		toggles |= toggleRequestable
	}
	if d.Label != nil {
		toggles |= toggleLabel
	}
	if d.ID != nil {
		toggles |= toggleID
	}
	if d.Signature != nil {
		toggles |= toggleSignature
	}
	if d.Private {
		toggles |= togglePrivate
	}

	w := binutil.NewWriter(16 + 1 + 16)
	w.WriteUUID(d.UUID)
	w.WriteUint8(toggles)
	if d.Label != nil {
		w.WriteCString(*d.Label)
	}
	if d.ID != nil {
		w.WriteUint32(*d.ID)
	}
	if d.Signature != nil {
		w.WriteBytes(d.Signature)
	}
	return w.Bytes(), nil
}

func decodeDescription(payload []byte) (Content, error) {
	r := binutil.NewReader(payload)

	u, err := r.ReadUUID()
	if err != nil {
		return nil, fmt.Errorf("description box: %w", err)
	}
	toggles, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("description box: %w", err)
	}

	d := &DescriptionBox{
		UUID:        u,
		Requestable: toggles&toggleRequestable != 0,
		Private:     toggles&togglePrivate != 0,
	}

	if toggles&toggleLabel != 0 {
		label, err := r.ReadCString()
		if err != nil {
			return nil, fmt.Errorf("description box label: %w", err)
		}
		d.Label = &label
	}
	if toggles&toggleID != 0 {
		id, err := r.ReadUint32()
		if err != nil {
			return nil, fmt.Errorf("description box id: %w", err)
		}
		d.ID = &id
	}
	if toggles&toggleSignature != 0 {
		sig, err := r.ReadBytes(32)
		if err != nil {
			return nil, fmt.Errorf("description box signature: %w", err)
		}
		d.Signature = sig
	}

	return d, nil
}

func init() {
	register(TypeDescription, decodeDescription)
}

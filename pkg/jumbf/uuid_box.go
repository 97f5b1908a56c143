package jumbf

import (
	"fmt"

	"github.com/google/uuid"
)

// UUIDBox is a JUMBF content box whose payload is a bare 16-byte UUID
// (type "uuid"), distinct from the UUID carried in a DescriptionBox.
type UUIDBox struct {
	Value uuid.UUID
}

var _ Content = (*UUIDBox)(nil)

// TypeTag implements Content.
func (b *UUIDBox) TypeTag() string { return TypeUUID }

// EncodePayload implements Content.
func (b *UUIDBox) EncodePayload() ([]byte, error) {
	out := make([]byte, 16)
	copy(out, b.Value[:])
	return out, nil
}

func decodeUUID(payload []byte) (Content, error) {
	if len(payload) != 16 {
		return nil, fmt.Errorf("uuid box payload must be 16 bytes, got %d", len(payload))
	}
	u, err := uuid.FromBytes(payload)
	if err != nil {
		return nil, fmt.Errorf("uuid box: %w", err)
	}
	return &UUIDBox{Value: u}, nil
}

func init() {
	register(TypeUUID, decodeUUID)
}

// NewUUIDBox wraps a UUID value for serialization.
func NewUUIDBox(v uuid.UUID) *UUIDBox {
	return &UUIDBox{Value: v}
}

package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// Dialect selects the label a claim is written under (§3 "Two
// dialects"). Both are recognized on read. Encode writes the same CBOR
// map fields for either dialect.
type Dialect string

const (
	DialectV1 Dialect = "c2pa.claim"
	DialectV2 Dialect = "c2pa.claim.v2"
)

// Claim is the signed core of a manifest (§3 "Claim"). SignatureRef
// points at the sibling claim-signature box; it is populated once the
// claim has been signed and is empty on a claim still being built.
type Claim struct {
	Dialect        Dialect
	ClaimGenerator string
	SignatureRef   string
	Assertions     []jumbf.HashedURI
	HashAlgorithm  cryptoprovider.HashAlg
	InstanceID     string
	Format         string
}

// claimWire is the CBOR map shape a Claim serializes to. Field names
// follow the C2PA claim map (§3).
type claimWire struct {
	ClaimGenerator string            `cbor:"claim_generator"`
	Assertions     []jumbf.HashedURI `cbor:"assertions"`
	Signature      string            `cbor:"signature"`
	Alg            string            `cbor:"alg"`
	InstanceID     string            `cbor:"instanceID"`
	Format         string            `cbor:"dc:format,omitempty"`
}

var hashAlgNames = map[string]cryptoprovider.HashAlg{
	"sha256": cryptoprovider.HashSHA256,
	"sha384": cryptoprovider.HashSHA384,
	"sha512": cryptoprovider.HashSHA512,
}

func hashAlgFromName(name string) (cryptoprovider.HashAlg, error) {
	alg, ok := hashAlgNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown hash algorithm name %q", c2paerrors.ErrUnsupportedAlgorithm, name)
	}
	return alg, nil
}

// Encode serializes c to its claim CBOR bytes.
func (c *Claim) Encode() ([]byte, error) {
	wire := claimWire{
		ClaimGenerator: c.ClaimGenerator,
		Assertions:     c.Assertions,
		Signature:      c.SignatureRef,
		Alg:            c.HashAlgorithm.String(),
		InstanceID:     c.InstanceID,
		Format:         c.Format,
	}
	return c2pacbor.Marshal(wire)
}

// DecodeClaim parses claim CBOR bytes tagged with dialect (the label the
// claim box was found under) into a Claim.
func DecodeClaim(data []byte, dialect Dialect) (*Claim, error) {
	var wire claimWire
	if err := c2pacbor.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed claim: %v", c2paerrors.ErrMalformedBox, err)
	}
	alg, err := hashAlgFromName(wire.Alg)
	if err != nil {
		return nil, err
	}
	return &Claim{
		Dialect:        dialect,
		ClaimGenerator: wire.ClaimGenerator,
		SignatureRef:   wire.Signature,
		Assertions:     wire.Assertions,
		HashAlgorithm:  alg,
		InstanceID:     wire.InstanceID,
		Format:         wire.Format,
	}, nil
}

// Label returns the JUMBF super-box label a claim of this dialect is
// stored under, which is also its CBOR content-box label.
func (d Dialect) Label() string { return string(d) }

// ParseDialect recognizes either claim label (§3 "both are recognized on
// read").
func ParseDialect(label string) (Dialect, error) {
	switch Dialect(label) {
	case DialectV1, DialectV2:
		return Dialect(label), nil
	default:
		return "", fmt.Errorf("%w: unrecognized claim dialect label %q", c2paerrors.ErrMalformedBox, label)
	}
}

// ToJUMBFBox wraps c's encoded CBOR in a labeled content box ready to be
// placed as the sole child of the claim's description-bearing super-box.
func (c *Claim) ToJUMBFBox() (*jumbf.Box, error) {
	encoded, err := c.Encode()
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding claim: %w", err)
	}
	var v interface{}
	if err := c2pacbor.Unmarshal(encoded, &v); err != nil {
		return nil, fmt.Errorf("manifest: re-decoding claim for CBOR box: %w", err)
	}
	return jumbf.NewBox(jumbf.NewCBORBox(v)), nil
}

// ToJUMBFSuperBox wraps c in its full claim super-box: a description
// carrying uuidClaim and c's dialect label, plus the CBOR content box.
func (c *Claim) ToJUMBFSuperBox() (*jumbf.Box, error) {
	content, err := c.ToJUMBFBox()
	if err != nil {
		return nil, err
	}
	label := c.Dialect.Label()
	desc := &jumbf.DescriptionBox{UUID: uuidClaim, Label: &label}
	return jumbf.NewBox(jumbf.NewSuperBox(desc, content)), nil
}

// claimFromSuperBox decodes a claim super-box (description + single CBOR
// content box) back into a Claim.
func claimFromSuperBox(box *jumbf.Box) (*Claim, error) {
	sb, ok := box.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: claim box is not a super-box", c2paerrors.ErrMalformedBox)
	}
	dialect, err := ParseDialect(sb.Label())
	if err != nil {
		return nil, err
	}
	if len(sb.Children) != 1 {
		return nil, fmt.Errorf("%w: claim super-box must have exactly one content child, got %d", c2paerrors.ErrMalformedBox, len(sb.Children))
	}
	cborBox, ok := sb.Children[0].Content.(*jumbf.CBORBox)
	if !ok {
		return nil, fmt.Errorf("%w: claim content box must be CBOR", c2paerrors.ErrMalformedBox)
	}
	encoded, err := c2pacbor.Marshal(cborBox.Content)
	if err != nil {
		return nil, fmt.Errorf("manifest: re-encoding claim content: %w", err)
	}
	return DecodeClaim(encoded, dialect)
}

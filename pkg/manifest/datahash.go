package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// DataHashAssertion binds a claim to every byte of its host asset except
// the declared exclusions (§4.3 "DataHashAssertion").
type DataHashAssertion struct {
	Exclusions []asset.Exclusion
	Name       string
	Algorithm  cryptoprovider.HashAlg
	Hash       []byte
	Pad        []byte
}

var _ Assertion = (*DataHashAssertion)(nil)

func (d *DataHashAssertion) Label() string { return LabelDataHash }

type exclusionWire struct {
	Start  int64 `cbor:"start"`
	Length int64 `cbor:"length"`
}

type dataHashWire struct {
	Exclusions []exclusionWire `cbor:"exclusions,omitempty"`
	Name       string          `cbor:"name,omitempty"`
	Alg        string          `cbor:"alg"`
	Hash       []byte          `cbor:"hash"`
	Pad        []byte          `cbor:"pad,omitempty"`
}

func (d *DataHashAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	child, err := singleContentChild(box)
	if err != nil {
		return err
	}
	cborBox, ok := child.Content.(*jumbf.CBORBox)
	if !ok {
		return fmt.Errorf("%w: data-hash assertion content must be CBOR", c2paerrors.ErrMalformedBox)
	}
	encoded, err := c2pacbor.Marshal(cborBox.Content)
	if err != nil {
		return fmt.Errorf("manifest: re-encoding data-hash content: %w", err)
	}
	var wire dataHashWire
	if err := c2pacbor.Unmarshal(encoded, &wire); err != nil {
		return fmt.Errorf("%w: malformed data-hash assertion: %v", c2paerrors.ErrMalformedBox, err)
	}
	alg, err := hashAlgFromName(wire.Alg)
	if err != nil {
		return err
	}
	d.Name = wire.Name
	d.Algorithm = alg
	d.Hash = wire.Hash
	d.Pad = wire.Pad
	d.Exclusions = make([]asset.Exclusion, len(wire.Exclusions))
	for i, e := range wire.Exclusions {
		d.Exclusions[i] = asset.Range{Start: e.Start, Length: e.Length}
	}
	return nil
}

func (d *DataHashAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	wire := dataHashWire{
		Name: d.Name,
		Alg:  d.Algorithm.String(),
		Hash: d.Hash,
		Pad:  d.Pad,
	}
	wire.Exclusions = make([]exclusionWire, len(d.Exclusions))
	for i, e := range d.Exclusions {
		wire.Exclusions[i] = exclusionWire{Start: e.Start, Length: e.Length}
	}
	var v interface{}
	encoded, err := c2pacbor.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding data-hash content: %w", err)
	}
	if err := c2pacbor.Unmarshal(encoded, &v); err != nil {
		return nil, fmt.Errorf("manifest: re-decoding data-hash content: %w", err)
	}
	return assertionSuperBox(LabelDataHash, jumbf.NewCBORBox(v)), nil
}

// ComputeHash digests a's full byte image with d.Exclusions plus any
// caller-supplied placeholderExclusions (typically the claim signature's
// reserved range, §4.3 "uses C4's exclusion list plus the assertion's own
// declared exclusions") and writes the result into d.Hash.
func (d *DataHashAssertion) ComputeHash(a asset.Asset, placeholderExclusions []asset.Exclusion, provider cryptoprovider.Provider) error {
	data := a.Bytes()
	all := append(append([]asset.Exclusion(nil), d.Exclusions...), placeholderExclusions...)
	sorted, err := asset.SortExclusions(all, int64(len(data)))
	if err != nil {
		return err
	}
	digest, err := hashWithExclusions(data, sorted, d.Algorithm, provider)
	if err != nil {
		return err
	}
	d.Hash = digest
	return nil
}

// Verify recomputes the digest over a with the same exclusions and
// compares it against d.Hash (§4.6 "recompute the hash over the asset
// with the assertion's exclusions").
func (d *DataHashAssertion) Verify(a asset.Asset, provider cryptoprovider.Provider) error {
	data := a.Bytes()
	sorted, err := asset.SortExclusions(d.Exclusions, int64(len(data)))
	if err != nil {
		return err
	}
	digest, err := hashWithExclusions(data, sorted, d.Algorithm, provider)
	if err != nil {
		return err
	}
	if !bytesEqual(digest, d.Hash) {
		return fmt.Errorf("%w: data hash assertion %q", c2paerrors.ErrHashMismatch, d.Name)
	}
	return nil
}

// hashWithExclusions streams data through provider, skipping the byte
// ranges in sortedExclusions (already validated non-overlapping and
// ascending by asset.SortExclusions), matching S7's "hashing
// buffer[0..1000] ++ buffer[1100..]" semantics without materializing the
// concatenation.
func hashWithExclusions(data []byte, sortedExclusions []asset.Exclusion, alg cryptoprovider.HashAlg, provider cryptoprovider.Provider) ([]byte, error) {
	ctx, err := provider.StreamingDigest(alg)
	if err != nil {
		return nil, err
	}
	pos := int64(0)
	for _, e := range sortedExclusions {
		if e.Start > pos {
			ctx.Update(data[pos:e.Start])
		}
		pos = e.End()
	}
	if pos < int64(len(data)) {
		ctx.Update(data[pos:])
	}
	return ctx.Final(), nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

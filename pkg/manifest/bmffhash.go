package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
	"github.com/trustnxt/c2pa-go/pkg/merkle"
)

// BMFFExclusion names an ISO-BMFF box (by path, e.g. "/uuid") excluded
// from a BMFFHashAssertion's hash, optionally qualified to an exact
// encoded length so only a box of that size is skipped.
type BMFFExclusion struct {
	XPath  string
	Length *uint64
}

// BMFFHashAssertion computes hashes over an ISO-BMFF box tree (§4.3
// "BMFFHashAssertion"). When UseMerkle is set, the digest is a Merkle
// root over per-chunk leaf hashes (the "merkle-tree rollups" case) rather
// than a single whole-range digest, so large fragmented media can be
// re-hashed incrementally.
type BMFFHashAssertion struct {
	Exclusions  []BMFFExclusion
	Name        string
	Algorithm   cryptoprovider.HashAlg
	UseMerkle   bool
	Hash        []byte   // set when !UseMerkle
	ChunkHashes [][]byte // leaf hashes, set when UseMerkle
	MerkleRoot  []byte   // root over ChunkHashes, set when UseMerkle
}

var _ Assertion = (*BMFFHashAssertion)(nil)

func (b *BMFFHashAssertion) Label() string { return LabelBMFFHash }

type bmffExclusionWire struct {
	XPath  string  `cbor:"xpath"`
	Length *uint64 `cbor:"length,omitempty"`
}

type bmffMerkleWire struct {
	ChunkHashes [][]byte `cbor:"chunkHashes"`
	Root        []byte   `cbor:"root"`
}

type bmffHashWire struct {
	Exclusions []bmffExclusionWire `cbor:"exclusions,omitempty"`
	Name       string              `cbor:"name,omitempty"`
	Alg        string              `cbor:"alg"`
	Hash       []byte              `cbor:"hash,omitempty"`
	Merkle     *bmffMerkleWire     `cbor:"merkle,omitempty"`
}

func (b *BMFFHashAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	child, err := singleContentChild(box)
	if err != nil {
		return err
	}
	cborBox, ok := child.Content.(*jumbf.CBORBox)
	if !ok {
		return fmt.Errorf("%w: bmff-hash assertion content must be CBOR", c2paerrors.ErrMalformedBox)
	}
	encoded, err := c2pacbor.Marshal(cborBox.Content)
	if err != nil {
		return fmt.Errorf("manifest: re-encoding bmff-hash content: %w", err)
	}
	var wire bmffHashWire
	if err := c2pacbor.Unmarshal(encoded, &wire); err != nil {
		return fmt.Errorf("%w: malformed bmff-hash assertion: %v", c2paerrors.ErrMalformedBox, err)
	}
	alg, err := hashAlgFromName(wire.Alg)
	if err != nil {
		return err
	}
	b.Name = wire.Name
	b.Algorithm = alg
	b.Exclusions = make([]BMFFExclusion, len(wire.Exclusions))
	for i, e := range wire.Exclusions {
		b.Exclusions[i] = BMFFExclusion{XPath: e.XPath, Length: e.Length}
	}
	if wire.Merkle != nil {
		b.UseMerkle = true
		b.ChunkHashes = wire.Merkle.ChunkHashes
		b.MerkleRoot = wire.Merkle.Root
	} else {
		b.Hash = wire.Hash
	}
	return nil
}

func (b *BMFFHashAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	wire := bmffHashWire{
		Name: b.Name,
		Alg:  b.Algorithm.String(),
	}
	wire.Exclusions = make([]bmffExclusionWire, len(b.Exclusions))
	for i, e := range b.Exclusions {
		wire.Exclusions[i] = bmffExclusionWire{XPath: e.XPath, Length: e.Length}
	}
	if b.UseMerkle {
		wire.Merkle = &bmffMerkleWire{ChunkHashes: b.ChunkHashes, Root: b.MerkleRoot}
	} else {
		wire.Hash = b.Hash
	}

	encoded, err := c2pacbor.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding bmff-hash content: %w", err)
	}
	var v interface{}
	if err := c2pacbor.Unmarshal(encoded, &v); err != nil {
		return nil, fmt.Errorf("manifest: re-decoding bmff-hash content: %w", err)
	}
	return assertionSuperBox(LabelBMFFHash, jumbf.NewCBORBox(v)), nil
}

// ComputeChunked digests each of chunks individually and, when UseMerkle
// is set, rolls the per-chunk digests up into a Merkle root. A non-merkle
// BMFF hash assertion has nothing meaningful to do with more than one
// chunk, so it requires exactly one spanning the whole hashed range.
func (b *BMFFHashAssertion) ComputeChunked(chunks [][]byte, provider cryptoprovider.Provider) error {
	leaves := make([][]byte, len(chunks))
	for i, c := range chunks {
		digest, err := provider.Digest(c, b.Algorithm)
		if err != nil {
			return err
		}
		leaves[i] = digest
	}

	if !b.UseMerkle {
		if len(leaves) != 1 {
			return fmt.Errorf("manifest: non-merkle BMFF hash assertion requires exactly one chunk, got %d", len(leaves))
		}
		b.Hash = leaves[0]
		return nil
	}

	root, err := merkle.RootFromLeaves(provider, b.Algorithm, leaves)
	if err != nil {
		return err
	}
	b.ChunkHashes = leaves
	b.MerkleRoot = root
	return nil
}

// Verify recomputes digests over chunks and checks them against the
// assertion's recorded hash or Merkle root.
func (b *BMFFHashAssertion) Verify(chunks [][]byte, provider cryptoprovider.Provider) error {
	leaves := make([][]byte, len(chunks))
	for i, c := range chunks {
		digest, err := provider.Digest(c, b.Algorithm)
		if err != nil {
			return err
		}
		leaves[i] = digest
	}

	if !b.UseMerkle {
		if len(leaves) != 1 || !bytesEqual(leaves[0], b.Hash) {
			return fmt.Errorf("%w: bmff hash assertion %q", c2paerrors.ErrHashMismatch, b.Name)
		}
		return nil
	}

	root, err := merkle.RootFromLeaves(provider, b.Algorithm, leaves)
	if err != nil {
		return err
	}
	if !bytesEqual(root, b.MerkleRoot) {
		return fmt.Errorf("%w: bmff hash assertion %q merkle root", c2paerrors.ErrHashMismatch, b.Name)
	}
	return nil
}

// Package merkle implements the RFC 6962 leaf/node hash-prefixing
// convention used to roll a list of leaf digests up into a single tree
// root. The teacher's original package built this around a SCITT
// transparency log (inclusion/consistency proofs against a tile-backed
// log, checkpoints, tile path naming) — none of which C2PA has a use
// for. What survives here is just the prefix convention itself,
// generalized from a fixed sha256.Sum256 to any cryptoprovider.Provider
// digest algorithm, since BMFFHashAssertion's merkle-tree rollups
// (§4.3) need the same tree shape under whichever algorithm the
// manifest declares.
package merkle

import "github.com/trustnxt/c2pa-go/pkg/cryptoprovider"

const (
	// LeafHashPrefix is prepended to a leaf's digest before hashing it
	// into the tree (RFC 6962 §2.1).
	LeafHashPrefix = 0x00

	// NodeHashPrefix is prepended to a pair of child hashes before
	// hashing them into their parent (RFC 6962 §2.1).
	NodeHashPrefix = 0x01
)

// HashLeaf applies the RFC 6962 leaf prefix to leaf and digests the
// result under alg.
func HashLeaf(provider cryptoprovider.Provider, alg cryptoprovider.HashAlg, leaf []byte) ([]byte, error) {
	return provider.Digest(append([]byte{LeafHashPrefix}, leaf...), alg)
}

// HashNode applies the RFC 6962 node prefix to a pair of child hashes
// and digests the result under alg.
func HashNode(provider cryptoprovider.Provider, alg cryptoprovider.HashAlg, left, right []byte) ([]byte, error) {
	combined := append(append([]byte{NodeHashPrefix}, left...), right...)
	return provider.Digest(combined, alg)
}

// RootFromLeaves hashes each entry in leaves as an RFC 6962 leaf, then
// folds the results pairwise (left to right, carrying an odd one out
// forward unchanged) until a single root hash remains. An empty leaf set
// digests nothing, matching RFC 6962's empty-tree root definition.
func RootFromLeaves(provider cryptoprovider.Provider, alg cryptoprovider.HashAlg, leaves [][]byte) ([]byte, error) {
	if len(leaves) == 0 {
		return provider.Digest(nil, alg)
	}

	level := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		hashed, err := HashLeaf(provider, alg, leaf)
		if err != nil {
			return nil, err
		}
		level[i] = hashed
	}

	for len(level) > 1 {
		var next [][]byte
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			node, err := HashNode(provider, alg, level[i], level[i+1])
			if err != nil {
				return nil, err
			}
			next = append(next, node)
		}
		level = next
	}
	return level[0], nil
}

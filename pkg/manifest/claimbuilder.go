package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// ClaimBuilder collects assertion hashed-URIs in the order added and
// serializes the final claim CBOR (§4.3 "ClaimBuilder"). Insertion order
// is preserved verbatim in the resulting claim's assertion list (§5
// "Ordering").
type ClaimBuilder struct {
	claimGenerator string
	dialect        Dialect
	hashAlgorithm  cryptoprovider.HashAlg
	instanceID     string
	format         string
	provider       cryptoprovider.Provider

	assertionRefs   []jumbf.HashedURI
	assertionBoxes  []*jumbf.Box
}

// NewClaimBuilder starts a claim build for the given generator string,
// dialect and declared hash algorithm.
func NewClaimBuilder(claimGenerator string, dialect Dialect, hashAlgorithm cryptoprovider.HashAlg, provider cryptoprovider.Provider) *ClaimBuilder {
	return &ClaimBuilder{
		claimGenerator: claimGenerator,
		dialect:        dialect,
		hashAlgorithm:  hashAlgorithm,
		provider:       provider,
	}
}

// WithInstanceID sets the claim's instance ID.
func (b *ClaimBuilder) WithInstanceID(id string) *ClaimBuilder {
	b.instanceID = id
	return b
}

// WithFormat sets the claim's format metadata (e.g. "image/jpeg").
func (b *ClaimBuilder) WithFormat(format string) *ClaimBuilder {
	b.format = format
	return b
}

// AddAssertion serializes assertion to its JUMBF box, digests the box's
// bytes under the builder's declared hash algorithm, and appends the
// resulting hashed-URI reference to the claim's assertion list. No
// assertion variant's GenerateJUMBFBox currently consults the
// in-progress claim, so none exists yet at this point in the build.
func (b *ClaimBuilder) AddAssertion(assertion Assertion) error {
	box, err := assertion.GenerateJUMBFBox(nil)
	if err != nil {
		return fmt.Errorf("manifest: generating %q assertion box: %w", assertion.Label(), err)
	}
	encoded, err := box.Marshal()
	if err != nil {
		return fmt.Errorf("manifest: marshaling %q assertion box: %w", assertion.Label(), err)
	}
	digest, err := b.provider.Digest(encoded, b.hashAlgorithm)
	if err != nil {
		return fmt.Errorf("manifest: digesting %q assertion box: %w", assertion.Label(), err)
	}

	b.assertionBoxes = append(b.assertionBoxes, box)
	b.assertionRefs = append(b.assertionRefs, jumbf.HashedURI{
		URL:  fmt.Sprintf("self#jumbf=c2pa.assertions/%s", assertion.Label()),
		Alg:  b.hashAlgorithm.String(),
		Hash: digest,
	})
	return nil
}

// Build assembles the final unsigned Claim (SignatureRef left empty; it
// is populated by the signer after the claim bytes are signed, §3
// "Lifecycle") plus the ordered list of assertion super-boxes added so
// far.
func (b *ClaimBuilder) Build() (*Claim, []*jumbf.Box) {
	claim := &Claim{
		Dialect:        b.dialect,
		ClaimGenerator: b.claimGenerator,
		Assertions:     append([]jumbf.HashedURI(nil), b.assertionRefs...),
		HashAlgorithm:  b.hashAlgorithm,
		InstanceID:     b.instanceID,
		Format:         b.format,
	}
	return claim, append([]*jumbf.Box(nil), b.assertionBoxes...)
}

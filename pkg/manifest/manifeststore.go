package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

const (
	labelAssertionStore  = "c2pa.assertions"
	labelClaimSignature  = "c2pa.signature"
)

// Manifest is one entry in a ManifestStore: a claim, its assertions, and
// its COSE_Sign1 claim signature bytes (§3 "ManifestStore").
type Manifest struct {
	Label      string
	Claim      *Claim
	Assertions []Assertion
	Signature  []byte // raw, possibly CBOR-tagged COSE_Sign1 bytes

	// AssertionBoxes holds the exact JUMBF box for each entry in
	// Assertions, in the same order, when the manifest was parsed from
	// bytes (parseManifest below). It is nil for manifests built fresh
	// via ClaimBuilder — the validator's hashed-URI digest recompute
	// (§4.6) only ever runs against a parsed manifest.
	AssertionBoxes []*jumbf.Box
}

// ManifestStore is an ordered list of manifests; the last is active (§3).
type ManifestStore struct {
	Manifests []*Manifest
}

// Active returns the active manifest: the last in the store.
func (s *ManifestStore) Active() (*Manifest, error) {
	if len(s.Manifests) == 0 {
		return nil, fmt.Errorf("%w: manifest store has no manifests", c2paerrors.ErrManifestAbsent)
	}
	return s.Manifests[len(s.Manifests)-1], nil
}

// ByLabel resolves a manifest by its store-local label, the mechanism
// ingredient assertions use instead of an owning pointer (§9 "Cyclic
// references... ingredient assertions hold labels resolved against that
// table").
func (s *ManifestStore) ByLabel(label string) (*Manifest, bool) {
	for _, m := range s.Manifests {
		if m.Label == label {
			return m, true
		}
	}
	return nil, false
}

// ToJUMBFBox serializes m into its manifest super-box: an assertion-store
// child, a claim child, and a claim-signature child, in that order.
func (m *Manifest) ToJUMBFBox(assertionBoxes []*jumbf.Box) (*jumbf.Box, error) {
	assertionStoreDesc := &jumbf.DescriptionBox{UUID: uuidAssertionStore, Label: strPtr(labelAssertionStore)}
	assertionStoreBox := jumbf.NewBox(jumbf.NewSuperBox(assertionStoreDesc, assertionBoxes...))

	claimBox, err := m.Claim.ToJUMBFSuperBox()
	if err != nil {
		return nil, fmt.Errorf("manifest: serializing claim: %w", err)
	}

	sigDesc := &jumbf.DescriptionBox{UUID: uuidClaimSignature, Label: strPtr(labelClaimSignature)}
	sigBox := jumbf.NewBox(jumbf.NewSuperBox(sigDesc, jumbf.NewBox(jumbf.NewRawBox(m.Signature))))

	manifestDesc := &jumbf.DescriptionBox{UUID: uuidManifest, Label: strPtr(m.Label)}
	return jumbf.NewBox(jumbf.NewSuperBox(manifestDesc, assertionStoreBox, claimBox, sigBox)), nil
}

// BuildManifestStore serializes an ordered manifest list (plus each
// manifest's already-generated assertion boxes, as returned by
// ClaimBuilder.Build) into the top-level manifest-store super-box.
func BuildManifestStore(manifests []*Manifest, assertionBoxesByManifest [][]*jumbf.Box) (*jumbf.Box, error) {
	if len(manifests) != len(assertionBoxesByManifest) {
		return nil, fmt.Errorf("manifest: %d manifests but %d assertion box sets", len(manifests), len(assertionBoxesByManifest))
	}
	children := make([]*jumbf.Box, len(manifests))
	for i, m := range manifests {
		box, err := m.ToJUMBFBox(assertionBoxesByManifest[i])
		if err != nil {
			return nil, err
		}
		children[i] = box
	}
	desc := &jumbf.DescriptionBox{UUID: uuidManifestStore, Label: strPtr("c2pa")}
	return jumbf.NewBox(jumbf.NewSuperBox(desc, children...)), nil
}

// ParseManifestStore decodes the top-level manifest-store super-box into
// a ManifestStore.
func ParseManifestStore(root *jumbf.Box) (*ManifestStore, error) {
	sb, ok := root.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: manifest store root is not a super-box", c2paerrors.ErrMalformedBox)
	}

	store := &ManifestStore{}
	for _, child := range sb.Children {
		m, err := parseManifest(child)
		if err != nil {
			return nil, err
		}
		store.Manifests = append(store.Manifests, m)
	}
	return store, nil
}

func parseManifest(box *jumbf.Box) (*Manifest, error) {
	sb, ok := box.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: manifest entry is not a super-box", c2paerrors.ErrMalformedBox)
	}

	assertionStoreBox, ok := sb.ChildByLabel(labelAssertionStore)
	if !ok {
		return nil, fmt.Errorf("%w: manifest %q missing assertion store", c2paerrors.ErrMalformedBox, sb.Label())
	}
	assertionStore, ok := assertionStoreBox.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: assertion store is not a super-box", c2paerrors.ErrMalformedBox)
	}

	var claimBox *jumbf.Box
	for _, dialect := range []Dialect{DialectV1, DialectV2} {
		if b, ok := sb.ChildByLabel(dialect.Label()); ok {
			claimBox = b
			break
		}
	}
	if claimBox == nil {
		return nil, fmt.Errorf("%w: manifest %q missing claim box", c2paerrors.ErrMalformedBox, sb.Label())
	}
	claim, err := claimFromSuperBox(claimBox)
	if err != nil {
		return nil, err
	}

	sigBox, ok := sb.ChildByLabel(labelClaimSignature)
	if !ok {
		return nil, fmt.Errorf("%w: manifest %q missing claim signature", c2paerrors.ErrMalformedBox, sb.Label())
	}
	sigSuper, ok := sigBox.Content.(*jumbf.SuperBox)
	if !ok || len(sigSuper.Children) != 1 {
		return nil, fmt.Errorf("%w: claim signature box malformed", c2paerrors.ErrMalformedBox)
	}
	sigRaw, ok := sigSuper.Children[0].Content.(*jumbf.RawBox)
	if !ok {
		return nil, fmt.Errorf("%w: claim signature content must be raw binary", c2paerrors.ErrMalformedBox)
	}

	assertions := make([]Assertion, len(assertionStore.Children))
	for i, child := range assertionStore.Children {
		a, err := decodeAssertion(child, claim)
		if err != nil {
			return nil, err
		}
		assertions[i] = a
	}

	return &Manifest{
		Label:          sb.Label(),
		Claim:          claim,
		Assertions:     assertions,
		Signature:      sigRaw.Data,
		AssertionBoxes: assertionStore.Children,
	}, nil
}

func strPtr(s string) *string { return &s }

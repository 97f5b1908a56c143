package manifest

import (
	"bytes"
	"testing"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

func buildTestManifest(t *testing.T, label string, provider cryptoprovider.Provider) (*Manifest, []*jumbf.Box) {
	t.Helper()

	da := &DataHashAssertion{Name: "jumbf manifest", Algorithm: cryptoprovider.HashSHA256, Hash: bytes.Repeat([]byte{0x11}, 32)}
	actions := &ActionsAssertion{Actions: []Action{{Action: "c2pa.created"}}}

	builder := NewClaimBuilder("c2pa-go/0.1", DialectV1, cryptoprovider.HashSHA256, provider).
		WithInstanceID("xmp:iid:" + label).
		WithFormat("image/jpeg")

	if err := builder.AddAssertion(da); err != nil {
		t.Fatalf("AddAssertion(data hash): %v", err)
	}
	if err := builder.AddAssertion(actions); err != nil {
		t.Fatalf("AddAssertion(actions): %v", err)
	}

	claim, assertionBoxes := builder.Build()
	claim.SignatureRef = "self#jumbf=c2pa.signature"

	m := &Manifest{
		Label:      label,
		Claim:      claim,
		Assertions: []Assertion{da, actions},
		Signature:  bytes.Repeat([]byte{0x22}, 64),
	}
	return m, assertionBoxes
}

func TestManifestStoreBuildAndParseRoundTrip(t *testing.T) {
	provider := cryptoprovider.New()
	m1, boxes1 := buildTestManifest(t, "c2pa.manifest.0", provider)
	m2, boxes2 := buildTestManifest(t, "c2pa.manifest.1", provider)

	root, err := BuildManifestStore([]*Manifest{m1, m2}, [][]*jumbf.Box{boxes1, boxes2})
	if err != nil {
		t.Fatalf("BuildManifestStore: %v", err)
	}
	encoded, err := root.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reparsed, err := jumbf.Parse(encoded)
	if err != nil {
		t.Fatalf("jumbf.Parse: %v", err)
	}

	store, err := ParseManifestStore(reparsed)
	if err != nil {
		t.Fatalf("ParseManifestStore: %v", err)
	}
	if len(store.Manifests) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(store.Manifests))
	}

	active, err := store.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active.Label != "c2pa.manifest.1" {
		t.Errorf("expected active manifest c2pa.manifest.1, got %q", active.Label)
	}

	first, ok := store.ByLabel("c2pa.manifest.0")
	if !ok {
		t.Fatal("expected to resolve c2pa.manifest.0 by label")
	}
	if first.Claim.ClaimGenerator != "c2pa-go/0.1" {
		t.Errorf("unexpected claim generator: %q", first.Claim.ClaimGenerator)
	}
	if len(first.Claim.Assertions) != 2 {
		t.Fatalf("expected 2 assertion refs in order, got %d", len(first.Claim.Assertions))
	}
	if first.Claim.Assertions[0].URL == first.Claim.Assertions[1].URL {
		t.Error("expected distinct assertion URLs preserving insertion order")
	}
	if len(first.Assertions) != 2 {
		t.Fatalf("expected 2 decoded assertions, got %d", len(first.Assertions))
	}
	if _, ok := first.Assertions[0].(*DataHashAssertion); !ok {
		t.Errorf("expected first assertion to decode as DataHashAssertion, got %T", first.Assertions[0])
	}
	if _, ok := first.Assertions[1].(*ActionsAssertion); !ok {
		t.Errorf("expected second assertion to decode as ActionsAssertion, got %T", first.Assertions[1])
	}
	if !bytes.Equal(first.Signature, m1.Signature) {
		t.Error("claim signature bytes did not round-trip")
	}
}

func TestManifestStoreByteExactWhenUntouched(t *testing.T) {
	provider := cryptoprovider.New()
	m, boxes := buildTestManifest(t, "c2pa.manifest.0", provider)

	root, err := BuildManifestStore([]*Manifest{m}, [][]*jumbf.Box{boxes})
	if err != nil {
		t.Fatalf("BuildManifestStore: %v", err)
	}
	encoded, err := root.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reparsed, err := jumbf.Parse(encoded)
	if err != nil {
		t.Fatalf("jumbf.Parse: %v", err)
	}
	reencoded, err := reparsed.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Error("manifest store did not round-trip byte-exactly")
	}
}

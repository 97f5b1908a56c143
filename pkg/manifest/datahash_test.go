package manifest

import (
	"testing"

	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
)

type fakeAsset struct {
	data []byte
}

func (f *fakeAsset) Kind() asset.Kind                      { return asset.KindJPEG }
func (f *fakeAsset) Bytes() []byte                         { return f.data }
func (f *fakeAsset) GetManifestStoreRange() (asset.Range, bool) { return asset.Range{}, false }
func (f *fakeAsset) ReadManifestStore() ([]byte, bool, error)   { return nil, false, nil }
func (f *fakeAsset) WriteManifestStore(b []byte) (asset.Asset, error) {
	return &fakeAsset{data: b}, nil
}
func (f *fakeAsset) DataHashExclusions(_ asset.Range) ([]asset.Exclusion, error) { return nil, nil }

func TestDataHashAssertionComputeAndVerify(t *testing.T) {
	data := make([]byte, 2000)
	for i := range data {
		data[i] = byte(i % 256)
	}
	a := &fakeAsset{data: data}
	provider := cryptoprovider.New()

	da := &DataHashAssertion{
		Name:      "jumbf manifest",
		Algorithm: cryptoprovider.HashSHA256,
	}
	placeholder := []asset.Exclusion{{Start: 1000, Length: 100}}
	if err := da.ComputeHash(a, placeholder, provider); err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}
	if len(da.Hash) != 32 {
		t.Fatalf("expected 32-byte sha256 digest, got %d", len(da.Hash))
	}

	// Verify re-derives the same digest when exclusions are baked into
	// the assertion itself (not just passed in as a placeholder).
	da.Exclusions = placeholder
	recomputed := &DataHashAssertion{Name: da.Name, Algorithm: da.Algorithm, Exclusions: placeholder}
	if err := recomputed.ComputeHash(a, nil, provider); err != nil {
		t.Fatalf("ComputeHash (exclusions baked in): %v", err)
	}
	if err := recomputed.Verify(a, provider); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestDataHashAssertionVerifyRejectsTamperedAsset(t *testing.T) {
	data := make([]byte, 500)
	a := &fakeAsset{data: data}
	provider := cryptoprovider.New()

	da := &DataHashAssertion{Algorithm: cryptoprovider.HashSHA256}
	if err := da.ComputeHash(a, nil, provider); err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}

	tampered := &fakeAsset{data: append([]byte(nil), data...)}
	tampered.data[0] ^= 0xFF
	if err := da.Verify(tampered, provider); err == nil {
		t.Fatal("expected hash mismatch on tampered asset")
	}
}

func TestDataHashAssertionJUMBFRoundTrip(t *testing.T) {
	da := &DataHashAssertion{
		Name:       "jumbf manifest",
		Algorithm:  cryptoprovider.HashSHA256,
		Hash:       make([]byte, 32),
		Exclusions: []asset.Exclusion{{Start: 10, Length: 5}},
	}
	box, err := da.GenerateJUMBFBox(nil)
	if err != nil {
		t.Fatalf("GenerateJUMBFBox: %v", err)
	}

	decoded := &DataHashAssertion{}
	if err := decoded.ReadFromJUMBF(box, nil); err != nil {
		t.Fatalf("ReadFromJUMBF: %v", err)
	}
	if decoded.Name != da.Name || decoded.Algorithm != da.Algorithm {
		t.Errorf("decoded fields mismatch: %+v", decoded)
	}
	if len(decoded.Exclusions) != 1 || decoded.Exclusions[0] != da.Exclusions[0] {
		t.Errorf("decoded exclusions mismatch: %+v", decoded.Exclusions)
	}
}

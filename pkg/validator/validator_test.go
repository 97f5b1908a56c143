package validator_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/trustnxt/c2pa-go/pkg/asset"
	"github.com/trustnxt/c2pa-go/pkg/cose"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
	"github.com/trustnxt/c2pa-go/pkg/manifest"
	"github.com/trustnxt/c2pa-go/pkg/trust"
	"github.com/trustnxt/c2pa-go/pkg/validator"
)

func issueTestCert(t *testing.T, key *ecdsa.PrivateKey, cn string, isCA bool) *x509.Certificate {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:                  isCA,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate: %v", err)
	}
	return cert
}

func newTestSigner(t *testing.T) (cose.Signer, *x509.Certificate) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	cert := issueTestCert(t, key, "test signer", true)
	signer, err := cose.NewLocalSigner(key, cryptoprovider.AlgorithmES256, []*x509.Certificate{cert}, cryptoprovider.New())
	if err != nil {
		t.Fatalf("NewLocalSigner: %v", err)
	}
	return signer, cert
}

type fakeAsset struct {
	data []byte
}

func (f *fakeAsset) Kind() asset.Kind                               { return asset.KindJPEG }
func (f *fakeAsset) Bytes() []byte                                  { return f.data }
func (f *fakeAsset) GetManifestStoreRange() (asset.Range, bool)     { return asset.Range{}, false }
func (f *fakeAsset) ReadManifestStore() ([]byte, bool, error)       { return nil, false, nil }
func (f *fakeAsset) WriteManifestStore(b []byte) (asset.Asset, error) {
	return &fakeAsset{data: b}, nil
}
func (f *fakeAsset) DataHashExclusions(_ asset.Range) ([]asset.Exclusion, error) { return nil, nil }

// buildSignedManifest builds a claim with a data-hash and an actions
// assertion over a, signs it, and returns a fully decoded Manifest the
// way ParseManifestStore would hand one to the validator (including
// AssertionBoxes).
func buildSignedManifest(t *testing.T, label string, a asset.Asset, signer cose.Signer, provider cryptoprovider.Provider) *manifest.Manifest {
	t.Helper()

	da := &manifest.DataHashAssertion{Name: "jumbf manifest", Algorithm: cryptoprovider.HashSHA256}
	if err := da.ComputeHash(a, nil, provider); err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}
	actions := &manifest.ActionsAssertion{Actions: []manifest.Action{{Action: "c2pa.created"}}}

	builder := manifest.NewClaimBuilder("c2pa-go/0.1", manifest.DialectV1, cryptoprovider.HashSHA256, provider).
		WithInstanceID("xmp:iid:" + label).
		WithFormat("image/jpeg")
	if err := builder.AddAssertion(da); err != nil {
		t.Fatalf("AddAssertion(data hash): %v", err)
	}
	if err := builder.AddAssertion(actions); err != nil {
		t.Fatalf("AddAssertion(actions): %v", err)
	}
	claim, assertionBoxes := builder.Build()

	claimBytes, err := claim.Encode()
	if err != nil {
		t.Fatalf("claim.Encode: %v", err)
	}
	sign1, err := cose.CreateCoseSign1(claimBytes, signer, provider)
	if err != nil {
		t.Fatalf("CreateCoseSign1: %v", err)
	}
	sigBytes, err := cose.EncodeCoseSign1(sign1)
	if err != nil {
		t.Fatalf("EncodeCoseSign1: %v", err)
	}

	m := &manifest.Manifest{
		Label:      label,
		Claim:      claim,
		Assertions: []manifest.Assertion{da, actions},
		Signature:  sigBytes,
	}

	// Round trip through JUMBF so AssertionBoxes is populated the way
	// ParseManifestStore would populate it for a real asset read.
	box, err := m.ToJUMBFBox(assertionBoxes)
	if err != nil {
		t.Fatalf("ToJUMBFBox: %v", err)
	}
	encoded, err := box.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reparsed, err := jumbf.Parse(encoded)
	if err != nil {
		t.Fatalf("jumbf.Parse: %v", err)
	}
	store, err := manifest.ParseManifestStore(wrapAsStore(reparsed, label))
	if err != nil {
		t.Fatalf("ParseManifestStore: %v", err)
	}
	return store.Manifests[0]
}

// wrapAsStore wraps a single already-built manifest super-box into a
// top-level manifest-store super-box so ParseManifestStore's shape
// expectations are met.
func wrapAsStore(manifestBox *jumbf.Box, label string) *jumbf.Box {
	desc := &jumbf.DescriptionBox{UUID: manifestBox.Content.(*jumbf.SuperBox).Description.Content.(*jumbf.DescriptionBox).UUID}
	_ = label
	return jumbf.NewBox(jumbf.NewSuperBox(desc, manifestBox))
}

func trustedStore(t *testing.T, root *x509.Certificate) *trust.Store {
	t.Helper()
	s, err := trust.Open(trust.Options{Path: filepath.Join(t.TempDir(), "trust.db")})
	if err != nil {
		t.Fatalf("trust.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Add(trust.Anchor{Fingerprint: trust.Fingerprint(root), Subject: root.Subject.String(), CertDER: root.Raw}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	return s
}

func TestValidateStoreAllChecksSucceed(t *testing.T) {
	provider := cryptoprovider.New()
	signer, cert := newTestSigner(t)

	a := &fakeAsset{data: make([]byte, 256)}
	for i := range a.data {
		a.data[i] = byte(i)
	}

	m := buildSignedManifest(t, "c2pa.manifest.0", a, signer, provider)
	store := &manifest.ManifestStore{Manifests: []*manifest.Manifest{m}}

	v := validator.New(provider, trustedStore(t, cert))
	report, err := v.ValidateStore(context.Background(), a, store)
	if err != nil {
		t.Fatalf("ValidateStore: %v", err)
	}

	if !report.Success() {
		t.Fatalf("expected all checks to succeed, failures: %+v", report.Failures())
	}

	var sawSignature, sawDataHash, sawAssertionDigest bool
	for _, r := range report.Results {
		switch r.Code {
		case validator.CodeClaimSignatureValidated:
			sawSignature = true
		case validator.CodeAssertionDataHashMatch:
			sawDataHash = true
		case validator.CodeAssertionHashedURIMatch:
			sawAssertionDigest = true
		}
	}
	if !sawSignature || !sawDataHash || !sawAssertionDigest {
		t.Errorf("missing expected check codes: sig=%v datahash=%v digest=%v", sawSignature, sawDataHash, sawAssertionDigest)
	}
}

func TestValidateStoreDetectsTamperedAsset(t *testing.T) {
	provider := cryptoprovider.New()
	signer, cert := newTestSigner(t)

	a := &fakeAsset{data: make([]byte, 256)}
	m := buildSignedManifest(t, "c2pa.manifest.0", a, signer, provider)

	tampered := &fakeAsset{data: append([]byte(nil), a.data...)}
	tampered.data[10] ^= 0xFF
	store := &manifest.ManifestStore{Manifests: []*manifest.Manifest{m}}

	v := validator.New(provider, trustedStore(t, cert))
	report, err := v.ValidateStore(context.Background(), tampered, store)
	if err != nil {
		t.Fatalf("ValidateStore: %v", err)
	}
	if report.Success() {
		t.Fatal("expected validation to fail against a tampered asset")
	}

	var found bool
	for _, r := range report.Failures() {
		if r.Code == validator.CodeAssertionDataHashMatch {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a failing %s result, got: %+v", validator.CodeAssertionDataHashMatch, report.Failures())
	}
}

func TestValidateStoreUntrustedSigner(t *testing.T) {
	provider := cryptoprovider.New()
	signer, _ := newTestSigner(t)

	a := &fakeAsset{data: make([]byte, 64)}
	m := buildSignedManifest(t, "c2pa.manifest.0", a, signer, provider)
	store := &manifest.ManifestStore{Manifests: []*manifest.Manifest{m}}

	emptyTrust, err := trust.Open(trust.Options{Path: filepath.Join(t.TempDir(), "trust.db")})
	if err != nil {
		t.Fatalf("trust.Open: %v", err)
	}
	defer emptyTrust.Close()

	v := validator.New(provider, emptyTrust)
	report, err := v.ValidateStore(context.Background(), a, store)
	if err != nil {
		t.Fatalf("ValidateStore: %v", err)
	}

	var found bool
	for _, r := range report.Failures() {
		if r.Code == validator.CodeSigningCredentialTrusted {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a failing %s result for an untrusted signer", validator.CodeSigningCredentialTrusted)
	}
}

func TestValidateStoreRecursesIntoIngredients(t *testing.T) {
	provider := cryptoprovider.New()
	signer, cert := newTestSigner(t)

	ingredientAsset := &fakeAsset{data: make([]byte, 64)}
	ingredientManifest := buildSignedManifest(t, "c2pa.manifest.ingredient", ingredientAsset, signer, provider)

	parentAsset := &fakeAsset{data: make([]byte, 128)}
	for i := range parentAsset.data {
		parentAsset.data[i] = byte(i * 3)
	}

	da := &manifest.DataHashAssertion{Name: "jumbf manifest", Algorithm: cryptoprovider.HashSHA256}
	if err := da.ComputeHash(parentAsset, nil, provider); err != nil {
		t.Fatalf("ComputeHash: %v", err)
	}
	ing := &manifest.IngredientAssertion{
		Title:  "background.jpg",
		Format: "image/jpeg",
		ManifestRef: &jumbf.HashedURI{
			URL:  "self#jumbf=/c2pa/c2pa.manifest.ingredient",
			Alg:  "sha256",
			Hash: bytes32(0x11),
		},
	}

	builder := manifest.NewClaimBuilder("c2pa-go/0.1", manifest.DialectV1, cryptoprovider.HashSHA256, provider)
	if err := builder.AddAssertion(da); err != nil {
		t.Fatalf("AddAssertion(data hash): %v", err)
	}
	if err := builder.AddAssertion(ing); err != nil {
		t.Fatalf("AddAssertion(ingredient): %v", err)
	}
	claim, assertionBoxes := builder.Build()

	claimBytes, err := claim.Encode()
	if err != nil {
		t.Fatalf("claim.Encode: %v", err)
	}
	sign1, err := cose.CreateCoseSign1(claimBytes, signer, provider)
	if err != nil {
		t.Fatalf("CreateCoseSign1: %v", err)
	}
	sigBytes, err := cose.EncodeCoseSign1(sign1)
	if err != nil {
		t.Fatalf("EncodeCoseSign1: %v", err)
	}

	parentManifest := &manifest.Manifest{
		Label:      "c2pa.manifest.0",
		Claim:      claim,
		Assertions: []manifest.Assertion{da, ing},
		Signature:  sigBytes,
	}
	box, err := parentManifest.ToJUMBFBox(assertionBoxes)
	if err != nil {
		t.Fatalf("ToJUMBFBox: %v", err)
	}
	encoded, err := box.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reparsed, err := jumbf.Parse(encoded)
	if err != nil {
		t.Fatalf("jumbf.Parse: %v", err)
	}
	parsedStore, err := manifest.ParseManifestStore(wrapAsStore(reparsed, "c2pa.manifest.0"))
	if err != nil {
		t.Fatalf("ParseManifestStore: %v", err)
	}

	fullStore := &manifest.ManifestStore{Manifests: []*manifest.Manifest{ingredientManifest, parsedStore.Manifests[0]}}

	v := validator.New(provider, trustedStore(t, cert))
	report, err := v.ValidateStore(context.Background(), parentAsset, fullStore)
	if err != nil {
		t.Fatalf("ValidateStore: %v", err)
	}

	var sawIngredient bool
	for _, r := range report.Results {
		if r.Code == validator.CodeIngredientManifestValidated {
			sawIngredient = true
			if !r.Success {
				t.Errorf("expected ingredient resolution to succeed, got: %+v", r)
			}
		}
	}
	if !sawIngredient {
		t.Fatal("expected an ingredient validation result")
	}
}

func bytes32(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}

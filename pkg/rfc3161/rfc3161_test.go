package rfc3161

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
)

func issueSelfSignedTSA(t *testing.T) (*x509.Certificate, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test tsa"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("parse certificate: %v", err)
	}
	return cert, key
}

func TestLocalProviderTimestampAndVerify(t *testing.T) {
	cert, key := issueSelfSignedTSA(t)
	provider := NewLocalProvider(cert, key)

	imprint := make([]byte, 32)
	for i := range imprint {
		imprint[i] = byte(i)
	}

	tok, err := provider.Timestamp(imprint, cryptoprovider.HashSHA256)
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if len(tok.DER) == 0 {
		t.Fatalf("expected non-empty token")
	}

	info, reason, err := Verify(tok, imprint, cryptoprovider.HashSHA256)
	if err != nil {
		t.Fatalf("Verify: %v (reason %s)", err, reason)
	}
	if info.SerialNumber.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("unexpected serial number: %v", info.SerialNumber)
	}
}

func TestVerifyRejectsImprintMismatch(t *testing.T) {
	cert, key := issueSelfSignedTSA(t)
	provider := NewLocalProvider(cert, key)

	imprint := make([]byte, 32)
	tok, err := provider.Timestamp(imprint, cryptoprovider.HashSHA256)
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}

	wrong := make([]byte, 32)
	wrong[0] = 0xFF
	if _, reason, err := Verify(tok, wrong, cryptoprovider.HashSHA256); err == nil {
		t.Fatalf("expected imprint mismatch, got reason %s", reason)
	}
}

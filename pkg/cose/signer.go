package cose

import (
	"crypto"
	"crypto/x509"
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/rfc3161"
)

// Signer is the C6 signing collaborator (§6 "Signer interface"). The
// actual private key may live behind an HSM or remote signing service —
// this package only ever calls through the interface, the way the
// teacher's ES256Signer/ES256Verifier pair abstracted ECDSA signing
// behind Signer/Verifier so a future HSM integration would not touch
// callers.
type Signer interface {
	// Sign returns a raw signature over toBeSigned under alg.
	Sign(toBeSigned []byte, alg cryptoprovider.SignAlg) ([]byte, error)

	// CertificateChain returns the leaf certificate followed by any
	// intermediate/root certificates to embed in x5chain.
	CertificateChain() ([]*x509.Certificate, error)

	// Algorithm reports the signing algorithm this Signer uses.
	Algorithm() cryptoprovider.SignAlg

	// TimeAuthority returns the RFC3161 timestamp provider to
	// countersign with, if any (§4.5).
	TimeAuthority() (rfc3161.TimestampProvider, bool)
}

// LocalSigner implements Signer over an in-process crypto.Signer and a
// Crypto provider — the common case of a key held directly by the
// caller, as opposed to a remote/HSM-backed Signer.
type LocalSigner struct {
	key      crypto.Signer
	alg      cryptoprovider.SignAlg
	chain    []*x509.Certificate
	provider cryptoprovider.Provider
	tsa      rfc3161.TimestampProvider
	hasTSA   bool
}

// NewLocalSigner builds a Signer backed by key and chain (leaf first).
func NewLocalSigner(key crypto.Signer, alg cryptoprovider.SignAlg, chain []*x509.Certificate, provider cryptoprovider.Provider) (*LocalSigner, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("cose: signer requires at least a leaf certificate")
	}
	return &LocalSigner{key: key, alg: alg, chain: chain, provider: provider}, nil
}

// WithTimeAuthority attaches a timestamp provider and returns s for
// chaining.
func (s *LocalSigner) WithTimeAuthority(tsa rfc3161.TimestampProvider) *LocalSigner {
	s.tsa = tsa
	s.hasTSA = true
	return s
}

// Sign implements Signer.
func (s *LocalSigner) Sign(toBeSigned []byte, alg cryptoprovider.SignAlg) ([]byte, error) {
	return s.provider.Sign(toBeSigned, s.key, alg)
}

// CertificateChain implements Signer.
func (s *LocalSigner) CertificateChain() ([]*x509.Certificate, error) {
	return s.chain, nil
}

// Algorithm implements Signer.
func (s *LocalSigner) Algorithm() cryptoprovider.SignAlg { return s.alg }

// TimeAuthority implements Signer.
func (s *LocalSigner) TimeAuthority() (rfc3161.TimestampProvider, bool) {
	return s.tsa, s.hasTSA
}

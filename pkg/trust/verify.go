package trust

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// Fingerprint returns the hex-encoded SHA-256 digest of a certificate's DER
// encoding, used as the stable identifier for trust anchors and revocations.
func Fingerprint(cert *x509.Certificate) string {
	sum := sha256.Sum256(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// VerifyChain checks the leaf-to-root chain against the store's revocation
// list and confirms the chain terminates in a configured trust anchor
// (§4.4, §8). It does not itself check signature algorithm allow-listing;
// callers apply that separately against cryptoprovider.SignAlg.
func (s *Store) VerifyChain(chain []*x509.Certificate) error {
	if len(chain) == 0 {
		return fmt.Errorf("%w: empty certificate chain", c2paerrors.ErrCertificateChainInvalid)
	}

	for _, cert := range chain {
		fp := Fingerprint(cert)
		revoked, err := s.IsRevoked(fp)
		if err != nil {
			return err
		}
		if revoked {
			return fmt.Errorf("%w: certificate %s is revoked", c2paerrors.ErrCertificateChainInvalid, fp)
		}
	}

	root := chain[len(chain)-1]
	if _, trusted, err := s.Lookup(Fingerprint(root)); err != nil {
		return err
	} else if !trusted {
		return fmt.Errorf("%w: chain does not terminate in a trusted anchor", c2paerrors.ErrCertificateChainInvalid)
	}

	roots := x509.NewCertPool()
	roots.AddCert(root)

	intermediates := x509.NewCertPool()
	if len(chain) > 2 {
		for _, cert := range chain[1 : len(chain)-1] {
			intermediates.AddCert(cert)
		}
	}

	opts := x509.VerifyOptions{Roots: roots, Intermediates: intermediates}
	if _, err := chain[0].Verify(opts); err != nil {
		return fmt.Errorf("%w: %v", c2paerrors.ErrCertificateChainInvalid, err)
	}

	return nil
}

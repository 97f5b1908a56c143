package cryptoprovider

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"math/big"
)

// DigestCtx is a streaming digest context (§5 "Streaming digest"). It is
// owned by the caller that created it via Provider.StreamingDigest,
// consumed by Final, and must not be touched afterwards.
type DigestCtx struct {
	h   hash.Hash
	alg HashAlg
	fed bool
}

// Update feeds more bytes into the digest. Safe to call any number of
// times before Final.
func (c *DigestCtx) Update(p []byte) {
	c.h.Write(p)
	c.fed = true
}

// Final consumes the context and returns the digest. The context must not
// be reused afterwards; doing so is a programming error, not a runtime
// condition this package guards against (matching the spec's ownership
// rule rather than defending against misuse).
func (c *DigestCtx) Final() []byte {
	return c.h.Sum(nil)
}

func newHash(alg HashAlg) (hash.Hash, error) {
	switch alg {
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("cryptoprovider: unsupported hash algorithm %s", alg)
	}
}

// Provider is the C1 Crypto provider interface (§6). Every other
// subsystem (JUMBF hashing, asset hashing, COSE signing, RFC3161) is
// expressed against this interface so the library never touches
// crypto/* directly outside this package.
type Provider interface {
	Digest(data []byte, alg HashAlg) ([]byte, error)
	StreamingDigest(alg HashAlg) (*DigestCtx, error)
	Sign(toBeSigned []byte, key crypto.Signer, alg SignAlg) ([]byte, error)
	Verify(toBeSigned, signature []byte, pub crypto.PublicKey, alg SignAlg) (bool, error)
	GetRandomValues(n int) ([]byte, error)
}

// Default is the stdlib-backed Provider implementation. It holds no
// state; every method is a pure function of its arguments.
type Default struct{}

// New returns the default Crypto provider.
func New() *Default { return &Default{} }

// Digest hashes data in one shot.
func (d *Default) Digest(data []byte, alg HashAlg) ([]byte, error) {
	h, err := newHash(alg)
	if err != nil {
		return nil, err
	}
	h.Write(data)
	return h.Sum(nil), nil
}

// StreamingDigest begins a new streaming digest context (§5). Buffered
// and streaming paths must agree bit-for-bit (S6); both route through
// newHash so there is only one implementation to keep in sync.
func (d *Default) StreamingDigest(alg HashAlg) (*DigestCtx, error) {
	h, err := newHash(alg)
	if err != nil {
		return nil, err
	}
	return &DigestCtx{h: h, alg: alg}, nil
}

// GetRandomValues returns n cryptographically random bytes (used for the
// RFC3161 nonce and any future salting needs).
func (d *Default) GetRandomValues(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("cryptoprovider: failed to read random bytes: %w", err)
	}
	return b, nil
}

// Sign signs toBeSigned with key under alg. ECDSA signatures are returned
// in IEEE P1363 (r||s) form, matching COSE's raw-signature convention
// rather than ASN.1 DER.
func (d *Default) Sign(toBeSigned []byte, key crypto.Signer, alg SignAlg) ([]byte, error) {
	switch alg {
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		ecKey, ok := key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("cryptoprovider: %s requires an ECDSA private key", alg)
		}
		return signECDSA(ecKey, toBeSigned, alg)

	case AlgorithmPS256, AlgorithmPS384, AlgorithmPS512:
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("cryptoprovider: %s requires an RSA private key", alg)
		}
		h, err := newHash(alg.HashFor())
		if err != nil {
			return nil, err
		}
		h.Write(toBeSigned)
		digest := h.Sum(nil)
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: pssCryptoHash(alg)}
		return rsa.SignPSS(rand.Reader, rsaKey, pssCryptoHash(alg), digest, opts)

	case AlgorithmEdDSA:
		edKey, ok := key.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("cryptoprovider: EdDSA requires an Ed25519 private key")
		}
		return ed25519.Sign(edKey, toBeSigned), nil

	default:
		return nil, fmt.Errorf("cryptoprovider: unsupported signing algorithm %s", alg)
	}
}

// Verify checks signature over toBeSigned under pub and alg.
func (d *Default) Verify(toBeSigned, signature []byte, pub crypto.PublicKey, alg SignAlg) (bool, error) {
	switch alg {
	case AlgorithmES256, AlgorithmES384, AlgorithmES512:
		ecKey, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return false, fmt.Errorf("cryptoprovider: %s requires an ECDSA public key", alg)
		}
		return verifyECDSA(ecKey, toBeSigned, signature, alg)

	case AlgorithmPS256, AlgorithmPS384, AlgorithmPS512:
		rsaKey, ok := pub.(*rsa.PublicKey)
		if !ok {
			return false, fmt.Errorf("cryptoprovider: %s requires an RSA public key", alg)
		}
		h, err := newHash(alg.HashFor())
		if err != nil {
			return false, err
		}
		h.Write(toBeSigned)
		digest := h.Sum(nil)
		opts := &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: pssCryptoHash(alg)}
		err = rsa.VerifyPSS(rsaKey, pssCryptoHash(alg), digest, signature, opts)
		return err == nil, nil

	case AlgorithmEdDSA:
		edKey, ok := pub.(ed25519.PublicKey)
		if !ok {
			return false, fmt.Errorf("cryptoprovider: EdDSA requires an Ed25519 public key")
		}
		return ed25519.Verify(edKey, toBeSigned, signature), nil

	default:
		return false, fmt.Errorf("cryptoprovider: unsupported signing algorithm %s", alg)
	}
}

func pssCryptoHash(alg SignAlg) crypto.Hash {
	switch alg {
	case AlgorithmPS256:
		return crypto.SHA256
	case AlgorithmPS384:
		return crypto.SHA384
	case AlgorithmPS512:
		return crypto.SHA512
	default:
		return crypto.SHA256
	}
}

// ecdsaCoordSize returns the fixed r/s field width for an ECDSA algorithm.
func ecdsaCoordSize(alg SignAlg) int {
	switch alg {
	case AlgorithmES256:
		return 32
	case AlgorithmES384:
		return 48
	case AlgorithmES512:
		return 66
	default:
		return 32
	}
}

func signECDSA(key *ecdsa.PrivateKey, toBeSigned []byte, alg SignAlg) ([]byte, error) {
	h, err := newHash(alg.HashFor())
	if err != nil {
		return nil, err
	}
	h.Write(toBeSigned)
	digest := h.Sum(nil)

	r, s, err := ecdsa.Sign(rand.Reader, key, digest)
	if err != nil {
		return nil, fmt.Errorf("cryptoprovider: ecdsa sign failed: %w", err)
	}

	n := ecdsaCoordSize(alg)
	sig := make([]byte, 2*n)
	r.FillBytes(sig[0:n])
	s.FillBytes(sig[n : 2*n])
	return sig, nil
}

func verifyECDSA(pub *ecdsa.PublicKey, toBeSigned, signature []byte, alg SignAlg) (bool, error) {
	n := ecdsaCoordSize(alg)
	if len(signature) != 2*n {
		return false, fmt.Errorf("cryptoprovider: invalid %s signature length: expected %d, got %d", alg, 2*n, len(signature))
	}

	h, err := newHash(alg.HashFor())
	if err != nil {
		return false, err
	}
	h.Write(toBeSigned)
	digest := h.Sum(nil)

	r := new(big.Int).SetBytes(signature[:n])
	s := new(big.Int).SetBytes(signature[n:])
	return ecdsa.Verify(pub, digest, r, s), nil
}

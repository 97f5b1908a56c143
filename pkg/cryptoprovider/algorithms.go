// Package cryptoprovider implements the C1 Crypto provider: digests
// (buffered and streaming), signing/verification over ECDSA, RSA-PSS and
// Ed25519, random byte generation, and the OID <-> algorithm lookup tables
// used by COSE (§4.4) and RFC3161 (§4.5). It is the single place that
// touches raw cryptographic primitives; every other package depends on the
// Provider interface rather than on crypto/* directly.
package cryptoprovider

import "fmt"

// HashAlg identifies a digest algorithm. Values match the COSE/CBOR
// integer encoding used throughout the pack's COSE packages (RFC 9053),
// not an internal enumeration, so they can be written straight into
// protected headers without translation.
type HashAlg int

const (
	HashSHA256 HashAlg = -16
	HashSHA384 HashAlg = -43
	HashSHA512 HashAlg = -44
)

func (h HashAlg) String() string {
	switch h {
	case HashSHA256:
		return "sha256"
	case HashSHA384:
		return "sha384"
	case HashSHA512:
		return "sha512"
	default:
		return fmt.Sprintf("HashAlg(%d)", int(h))
	}
}

// Size returns the digest size in bytes for alg, or 0 if unknown.
func (h HashAlg) Size() int {
	switch h {
	case HashSHA256:
		return 32
	case HashSHA384:
		return 48
	case HashSHA512:
		return 64
	default:
		return 0
	}
}

// SignAlg identifies a COSE signing algorithm (RFC 9053 §8).
type SignAlg int

const (
	AlgorithmES256  SignAlg = -7
	AlgorithmES384  SignAlg = -35
	AlgorithmES512  SignAlg = -36
	AlgorithmPS256  SignAlg = -37
	AlgorithmPS384  SignAlg = -38
	AlgorithmPS512  SignAlg = -39
	AlgorithmEdDSA  SignAlg = -8
)

func (a SignAlg) String() string {
	switch a {
	case AlgorithmES256:
		return "ES256"
	case AlgorithmES384:
		return "ES384"
	case AlgorithmES512:
		return "ES512"
	case AlgorithmPS256:
		return "PS256"
	case AlgorithmPS384:
		return "PS384"
	case AlgorithmPS512:
		return "PS512"
	case AlgorithmEdDSA:
		return "Ed25519"
	default:
		return fmt.Sprintf("SignAlg(%d)", int(a))
	}
}

// HashFor returns the digest algorithm a signing algorithm hashes with
// before signing (Ed25519 hashes internally, so it reports HashSHA512 only
// as a nominal default — callers must not pre-hash Ed25519 payloads).
func (a SignAlg) HashFor() HashAlg {
	switch a {
	case AlgorithmES256, AlgorithmPS256:
		return HashSHA256
	case AlgorithmES384, AlgorithmPS384:
		return HashSHA384
	case AlgorithmES512, AlgorithmPS512:
		return HashSHA512
	default:
		return HashSHA512
	}
}

// Digest algorithm OIDs (RFC3161 MessageImprint, §4.5).
const (
	OIDSHA256 = "2.16.840.1.101.3.4.2.1"
	OIDSHA384 = "2.16.840.1.101.3.4.2.2"
	OIDSHA512 = "2.16.840.1.101.3.4.2.3"
)

var oidByHashAlg = map[HashAlg]string{
	HashSHA256: OIDSHA256,
	HashSHA384: OIDSHA384,
	HashSHA512: OIDSHA512,
}

var hashAlgByOID = map[string]HashAlg{
	OIDSHA256: HashSHA256,
	OIDSHA384: HashSHA384,
	OIDSHA512: HashSHA512,
}

// OIDForHashAlg returns the RFC3161 digest-algorithm OID for alg.
func OIDForHashAlg(alg HashAlg) (string, error) {
	oid, ok := oidByHashAlg[alg]
	if !ok {
		return "", fmt.Errorf("cryptoprovider: unsupported hash algorithm %s", alg)
	}
	return oid, nil
}

// HashAlgForOID is the inverse of OIDForHashAlg.
func HashAlgForOID(oid string) (HashAlg, error) {
	alg, ok := hashAlgByOID[oid]
	if !ok {
		return 0, fmt.Errorf("cryptoprovider: unknown digest OID %q", oid)
	}
	return alg, nil
}

// AllowedLeafAlgorithms is the process-wide, immutable default allow-list
// for leaf-certificate signing algorithms (chain certificates are exempt,
// per §4.4). Initialized once; callers needing a narrower policy build
// their own slice (the validator takes one as Validator.AllowedSignAlgs
// and checks it with IsAllowed) rather than mutating this one.
var AllowedLeafAlgorithms = []SignAlg{
	AlgorithmES256, AlgorithmES384, AlgorithmES512,
	AlgorithmPS256, AlgorithmPS384, AlgorithmPS512,
	AlgorithmEdDSA,
}

// IsAllowed reports whether alg is present in allowList.
func IsAllowed(alg SignAlg, allowList []SignAlg) bool {
	for _, a := range allowList {
		if a == alg {
			return true
		}
	}
	return false
}

package rfc3161

import (
	"crypto"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
)

// LocalProvider self-issues timestamp tokens using an in-process
// certificate and key. It exists for development and test environments
// where no external TSA is reachable; production signers should use
// HTTPProvider against a real authority (§4.5 "against a configured
// authority, local or remote").
type LocalProvider struct {
	cert   *x509.Certificate
	key    crypto.Signer
	serial int64
}

// NewLocalProvider builds a LocalProvider that signs TSTInfo blobs with
// key and reports cert as the TSA identity, embedded in the CMS
// SignedData's certificates field so a verifier can chain it to a trust
// anchor exactly like an external TSA's certificate (§4.6).
func NewLocalProvider(cert *x509.Certificate, key crypto.Signer) *LocalProvider {
	return &LocalProvider{cert: cert, key: key}
}

// idCTTSTInfo is the CMS content-type OID for a timestamp token's
// encapsulated content (RFC 3161 §2.4.2).
var idCTTSTInfo = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 1, 4}

// idSignedData is the CMS SignedData content-type OID (RFC 5652 §5.1).
var idSignedData = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 7, 2}

// idECDSAWithSHA256 is the signature algorithm this provider signs
// SignerInfo with (RFC 5758 §3.2).
var idECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}

type explicitOctetString struct {
	Content []byte `asn1:"tag:0,explicit"`
}

type marshalSignedData struct {
	Version          int
	DigestAlgorithms []pkixAlgorithmIdentifier `asn1:"set"`
	EncapContentInfo marshalEncapContentInfo
	Certificates     asn1.RawValue `asn1:"optional,tag:0"`
	SignerInfos       []marshalSignerInfo `asn1:"set"`
}

type marshalEncapContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     []byte `asn1:"explicit,tag:0"`
}

type marshalSignerInfo struct {
	Version            int
	Sid                marshalIssuerAndSerial
	DigestAlgorithm    pkixAlgorithmIdentifier
	SignatureAlgorithm pkixAlgorithmIdentifier
	Signature          []byte
}

type marshalIssuerAndSerial struct {
	Issuer       asn1.RawValue
	SerialNumber *big.Int
}

type explicitContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

// Timestamp implements TimestampProvider by signing a freshly built
// TSTInfo and wrapping it in a minimal CMS SignedData envelope.
func (p *LocalProvider) Timestamp(messageImprint []byte, hashAlg cryptoprovider.HashAlg) (*Token, error) {
	oid, err := cryptoprovider.OIDForHashAlg(hashAlg)
	if err != nil {
		return nil, err
	}
	algOID, err := parseOID(oid)
	if err != nil {
		return nil, err
	}

	p.serial++
	info := TSTInfo{
		Version: 1,
		Policy:  asn1.ObjectIdentifier{0, 4, 0, 2023, 1, 1},
		MessageImprint: MessageImprint{
			HashAlgorithm: pkixAlgorithmIdentifier{Algorithm: algOID},
			HashedMessage: messageImprint,
		},
		SerialNumber: big.NewInt(p.serial),
		GenTime:      time.Now().UTC(),
	}

	infoDER, err := asn1.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("rfc3161: failed to encode TSTInfo: %w", err)
	}

	digest := sha256.Sum256(infoDER)
	sig, err := p.key.Sign(rand.Reader, digest[:], crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("rfc3161: failed to sign TSTInfo: %w", err)
	}

	sha256OID := mustParseOID(cryptoprovider.OIDSHA256)
	sd := marshalSignedData{
		Version:          3,
		DigestAlgorithms: []pkixAlgorithmIdentifier{{Algorithm: sha256OID}},
		EncapContentInfo: marshalEncapContentInfo{
			ContentType: idCTTSTInfo,
			Content:     infoDER,
		},
		Certificates: asn1.RawValue{Bytes: p.cert.Raw, Class: asn1.ClassContextSpecific, Tag: 0, IsCompound: true},
		SignerInfos: []marshalSignerInfo{{
			Version:            1,
			Sid:                marshalIssuerAndSerial{Issuer: asn1.RawValue{FullBytes: p.cert.RawIssuer}, SerialNumber: p.cert.SerialNumber},
			DigestAlgorithm:    pkixAlgorithmIdentifier{Algorithm: sha256OID},
			SignatureAlgorithm: pkixAlgorithmIdentifier{Algorithm: idECDSAWithSHA256},
			Signature:          sig,
		}},
	}

	sdDER, err := asn1.Marshal(sd)
	if err != nil {
		return nil, fmt.Errorf("rfc3161: failed to encode SignedData: %w", err)
	}

	ci := explicitContentInfo{
		ContentType: idSignedData,
		Content:     asn1.RawValue{FullBytes: wrapExplicitSequence(sdDER)},
	}
	ciDER, err := asn1.Marshal(ci)
	if err != nil {
		return nil, fmt.Errorf("rfc3161: failed to encode ContentInfo: %w", err)
	}

	return &Token{DER: ciDER}, nil
}

// wrapExplicitSequence wraps an already-DER-encoded SEQUENCE in a
// context-specific [0] EXPLICIT tag, the form CMS ContentInfo.content
// requires (RFC 5652 §3).
func wrapExplicitSequence(der []byte) []byte {
	length := asn1LengthBytes(len(der))
	out := make([]byte, 0, 1+len(length)+len(der))
	out = append(out, 0xA0) // [0] EXPLICIT, constructed
	out = append(out, length...)
	out = append(out, der...)
	return out
}

func asn1LengthBytes(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{byte(n & 0xFF)}, buf...)
		n >>= 8
	}
	return append([]byte{byte(0x80 | len(buf))}, buf...)
}

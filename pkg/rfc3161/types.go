// Package rfc3161 implements the C7 timestamp client (§4.5): building an
// RFC 3161 TimeStampReq over a COSE_Sign1 signature, parsing the
// TimeStampResp, and exposing both a local (self-issued, for testing) and
// an HTTP-backed timestamp authority behind a single TimestampProvider
// interface. There is no RFC3161/CMS library in the retrieved pack, so
// this package builds the ASN.1 structures directly against
// encoding/asn1 and crypto/x509 (see the stdlib-justification ledger).
package rfc3161

import (
	"encoding/asn1"
	"math/big"
	"time"
)

// MessageImprint is the hashed message RFC 3161 §2.4.1 wraps a request
// around.
type MessageImprint struct {
	HashAlgorithm pkixAlgorithmIdentifier
	HashedMessage []byte
}

// pkixAlgorithmIdentifier mirrors x509.pkix.AlgorithmIdentifier without
// importing the unexported field layout assumptions of that package.
type pkixAlgorithmIdentifier struct {
	Algorithm  asn1.ObjectIdentifier
	Parameters asn1.RawValue `asn1:"optional"`
}

// TimeStampReq is the RFC 3161 §2.4.1 request structure.
type TimeStampReq struct {
	Version        int
	MessageImprint MessageImprint
	ReqPolicy      asn1.ObjectIdentifier `asn1:"optional"`
	Nonce          *big.Int              `asn1:"optional"`
	CertReq        bool                  `asn1:"optional,default:false"`
	Extensions     asn1.RawValue         `asn1:"optional,tag:1"`
}

// PKIStatusInfo is the RFC 3161 §2.4.2 status wrapper.
type PKIStatusInfo struct {
	Status       int
	StatusString []string `asn1:"optional"`
	FailInfo     asn1.BitString `asn1:"optional"`
}

// TimeStampResp is the RFC 3161 §2.4.2 response structure. TimeStampToken
// is the DER-encoded CMS ContentInfo carrying the TSTInfo; this package
// treats it as an opaque blob for embedding in COSE_Sign1's unprotected
// sigTst2 header and only parses it back out on the validator side.
type TimeStampResp struct {
	Status         PKIStatusInfo
	TimeStampToken asn1.RawValue `asn1:"optional"`
}

// TSTInfo is the RFC 3161 §2.4.2 signed content of the timestamp token.
type TSTInfo struct {
	Version        int
	Policy         asn1.ObjectIdentifier
	MessageImprint MessageImprint
	SerialNumber   *big.Int
	GenTime        time.Time `asn1:"generalized"`
	Accuracy       asn1.RawValue `asn1:"optional"`
	Ordering       bool          `asn1:"optional,default:false"`
	Nonce          *big.Int      `asn1:"optional"`
	Tsa            asn1.RawValue `asn1:"optional,tag:0"`
	Extensions     asn1.RawValue `asn1:"optional,tag:1"`
}

// PKIStatus values (RFC 3161 §2.4.2).
const (
	StatusGranted               = 0
	StatusGrantedWithMods       = 1
	StatusRejection             = 2
	StatusWaiting               = 3
	StatusRevocationWarning     = 4
	StatusRevocationNotified    = 5
)

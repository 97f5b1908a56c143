package cose

import (
	"crypto/x509"
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
)

// sign1Tag is the CBOR tag RFC 9052 §4.2 reserves for a tagged
// COSE_Sign1 structure.
const sign1Tag = 18

// Sign1 is a parsed/constructed COSE_Sign1 structure (§4.4): protected
// headers are kept as their already-canonical CBOR encoding so
// signature verification never has to worry about re-encoding producing
// different bytes than what was actually signed.
type Sign1 struct {
	Protected   []byte
	Unprotected map[interface{}]interface{}
	Payload     []byte
	Signature   []byte
}

// buildProtectedHeaders assembles the fixed C2PA protected header set:
// alg, content_type and x5chain (§4.4). A lone leaf certificate is
// encoded as a single bstr per RFC 9360 §2; a full chain as an array of
// bstr.
func buildProtectedHeaders(alg cryptoprovider.SignAlg, chain []*x509.Certificate) (map[int]interface{}, error) {
	if len(chain) == 0 {
		return nil, fmt.Errorf("cose: signer returned an empty certificate chain")
	}

	headers := map[int]interface{}{
		HeaderLabelAlg:         int(alg),
		HeaderLabelContentType: ContentTypeClaim,
	}

	if len(chain) == 1 {
		headers[HeaderLabelX5Chain] = chain[0].Raw
	} else {
		der := make([][]byte, len(chain))
		for i, c := range chain {
			der[i] = c.Raw
		}
		headers[HeaderLabelX5Chain] = der
	}

	return headers, nil
}

// sigStructureBytes builds the canonical Sig_structure (RFC 9052 §4.4)
// COSE_Sign1 signs over: ["Signature1", body_protected, external_aad,
// payload]. Canonicalization follows the same c2pacbor profile the
// JUMBF engine uses so both sides of a sign/verify round trip agree
// byte-for-byte.
func sigStructureBytes(protectedEncoded, payload []byte) ([]byte, error) {
	sigStructure := []interface{}{
		sigStructureContext,
		protectedEncoded,
		[]byte{},
		payload,
	}
	return c2pacbor.Marshal(sigStructure)
}

// CreateCoseSign1 signs payload (a canonical-CBOR-encoded claim, §4.3)
// under signer's algorithm and certificate chain, attaching an RFC3161
// countersignature in the unprotected headers if signer has a time
// authority configured (§4.5).
func CreateCoseSign1(payload []byte, signer Signer, provider cryptoprovider.Provider) (*Sign1, error) {
	chain, err := signer.CertificateChain()
	if err != nil {
		return nil, fmt.Errorf("cose: failed to obtain certificate chain: %w", err)
	}

	alg := signer.Algorithm()
	protectedHeaders, err := buildProtectedHeaders(alg, chain)
	if err != nil {
		return nil, err
	}

	protectedEncoded, err := c2pacbor.Marshal(protectedHeaders)
	if err != nil {
		return nil, fmt.Errorf("cose: failed to encode protected headers: %w", err)
	}

	toBeSigned, err := sigStructureBytes(protectedEncoded, payload)
	if err != nil {
		return nil, fmt.Errorf("cose: failed to encode Sig_structure: %w", err)
	}

	signature, err := signer.Sign(toBeSigned, alg)
	if err != nil {
		return nil, fmt.Errorf("cose: signing failed: %w", err)
	}

	unprotected := make(map[interface{}]interface{})
	if tsa, ok := signer.TimeAuthority(); ok {
		hashAlg := alg.HashFor()
		imprint, err := provider.Digest(signature, hashAlg)
		if err != nil {
			return nil, fmt.Errorf("cose: failed to digest signature for timestamping: %w", err)
		}
		tok, err := tsa.Timestamp(imprint, hashAlg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", c2paerrors.ErrTimestampInvalid, err)
		}
		unprotected[HeaderLabelSigTst2] = tok.DER
	}

	return &Sign1{
		Protected:   protectedEncoded,
		Unprotected: unprotected,
		Payload:     payload,
		Signature:   signature,
	}, nil
}

// DecodedProtectedHeaders is the subset of protected header fields the
// verifier needs back out after decoding (§4.4).
type DecodedProtectedHeaders struct {
	Algorithm   cryptoprovider.SignAlg
	ContentType string
	Chain       []*x509.Certificate
}

func decodeProtectedHeaders(encoded []byte) (*DecodedProtectedHeaders, error) {
	var raw map[int]interface{}
	if err := c2pacbor.Unmarshal(encoded, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed protected headers: %v", c2paerrors.ErrMalformedBox, err)
	}

	out := &DecodedProtectedHeaders{}

	algRaw, ok := raw[HeaderLabelAlg]
	if !ok {
		return nil, fmt.Errorf("%w: protected headers missing alg", c2paerrors.ErrMalformedBox)
	}
	switch v := algRaw.(type) {
	case int64:
		out.Algorithm = cryptoprovider.SignAlg(v)
	case uint64:
		out.Algorithm = cryptoprovider.SignAlg(v)
	default:
		return nil, fmt.Errorf("%w: protected headers alg has unexpected type %T", c2paerrors.ErrMalformedBox, algRaw)
	}

	if ct, ok := raw[HeaderLabelContentType]; ok {
		if s, ok := ct.(string); ok {
			out.ContentType = s
		}
	}

	x5chainRaw, ok := raw[HeaderLabelX5Chain]
	if !ok {
		return nil, fmt.Errorf("%w: protected headers missing x5chain", c2paerrors.ErrMalformedBox)
	}

	var der [][]byte
	switch v := x5chainRaw.(type) {
	case []byte:
		der = [][]byte{v}
	case []interface{}:
		for _, item := range v {
			b, ok := item.([]byte)
			if !ok {
				return nil, fmt.Errorf("%w: x5chain element has unexpected type %T", c2paerrors.ErrMalformedBox, item)
			}
			der = append(der, b)
		}
	default:
		return nil, fmt.Errorf("%w: x5chain has unexpected type %T", c2paerrors.ErrMalformedBox, x5chainRaw)
	}

	for _, b := range der {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid certificate in x5chain: %v", c2paerrors.ErrCertificateChainInvalid, err)
		}
		out.Chain = append(out.Chain, cert)
	}

	return out, nil
}

// VerifyResult carries everything the validator (C8) needs from a
// cryptographically-checked COSE_Sign1 without this package reaching
// into trust-anchor policy itself (§4.4, §4.6).
type VerifyResult struct {
	Headers   *DecodedProtectedHeaders
	Signature []byte
}

// VerifyCoseSign1 checks sign1's signature against the leaf certificate
// embedded in its own protected headers. It does not validate the
// certificate chain against a trust store; callers combine this with
// their own chain validation (§4.6, C9).
func VerifyCoseSign1(sign1 *Sign1, externalPayload []byte, provider cryptoprovider.Provider) (*VerifyResult, error) {
	headers, err := decodeProtectedHeaders(sign1.Protected)
	if err != nil {
		return nil, err
	}
	if len(headers.Chain) == 0 {
		return nil, fmt.Errorf("%w: no certificate in x5chain", c2paerrors.ErrCertificateChainInvalid)
	}

	payload := sign1.Payload
	if payload == nil {
		if externalPayload == nil {
			return nil, fmt.Errorf("cose: detached payload requires externalPayload")
		}
		payload = externalPayload
	}

	toBeSigned, err := sigStructureBytes(sign1.Protected, payload)
	if err != nil {
		return nil, fmt.Errorf("cose: failed to encode Sig_structure: %w", err)
	}

	leaf := headers.Chain[0]
	ok, err := provider.Verify(toBeSigned, sign1.Signature, leaf.PublicKey, headers.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("cose: verification failed: %w", err)
	}
	if !ok {
		return nil, c2paerrors.ErrSignatureInvalid
	}

	return &VerifyResult{Headers: headers, Signature: sign1.Signature}, nil
}

// EncodeCoseSign1 encodes sign1 as a CBOR-tagged (tag 18) COSE_Sign1
// array (RFC 9052 §4.2): [protected, unprotected, payload, signature].
func EncodeCoseSign1(sign1 *Sign1) ([]byte, error) {
	arr := []interface{}{
		sign1.Protected,
		sign1.Unprotected,
		sign1.Payload,
		sign1.Signature,
	}
	encoded, err := c2pacbor.Marshal(arr)
	if err != nil {
		return nil, fmt.Errorf("cose: failed to encode COSE_Sign1: %w", err)
	}
	return wrapTag(sign1Tag, encoded), nil
}

// wrapTag prepends the CBOR major-type-6 tag header for tagNum in front
// of an already-encoded item.
func wrapTag(tagNum uint64, encoded []byte) []byte {
	var head []byte
	switch {
	case tagNum < 24:
		head = []byte{0xC0 | byte(tagNum)}
	case tagNum < 256:
		head = []byte{0xD8, byte(tagNum)}
	default:
		head = []byte{0xD9, byte(tagNum >> 8), byte(tagNum)}
	}
	return append(head, encoded...)
}

// DecodeCoseSign1 decodes CBOR bytes (tagged or untagged) into a Sign1.
func DecodeCoseSign1(encoded []byte) (*Sign1, error) {
	var raw interface{}
	if err := c2pacbor.Unmarshal(encoded, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed COSE_Sign1: %v", c2paerrors.ErrMalformedBox, err)
	}

	if tag, ok := raw.(c2pacbor.Tag); ok {
		if tag.Number != sign1Tag {
			return nil, fmt.Errorf("%w: unexpected CBOR tag %d for COSE_Sign1", c2paerrors.ErrMalformedBox, tag.Number)
		}
		raw = tag.Content
	}

	arr, ok := raw.([]interface{})
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("%w: COSE_Sign1 must be a 4-element array", c2paerrors.ErrMalformedBox)
	}

	protected, ok := arr[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: COSE_Sign1 protected must be bstr", c2paerrors.ErrMalformedBox)
	}

	unprotected := make(map[interface{}]interface{})
	if m, ok := arr[1].(map[interface{}]interface{}); ok {
		unprotected = m
	}

	var payload []byte
	if arr[2] != nil {
		payload, ok = arr[2].([]byte)
		if !ok {
			return nil, fmt.Errorf("%w: COSE_Sign1 payload must be bstr or nil", c2paerrors.ErrMalformedBox)
		}
	}

	signature, ok := arr[3].([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: COSE_Sign1 signature must be bstr", c2paerrors.ErrMalformedBox)
	}

	return &Sign1{
		Protected:   protected,
		Unprotected: unprotected,
		Payload:     payload,
		Signature:   signature,
	}, nil
}

package rfc3161

import (
	"bytes"
	"encoding/asn1"
	"fmt"
	"io"
	"math/big"
	"net/http"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
)

// Token is a parsed RFC 3161 timestamp token, ready to embed in a
// COSE_Sign1 sigTst2 unprotected header (§4.4, §4.5).
type Token struct {
	// DER is the complete TimeStampToken (CMS ContentInfo), opaque to
	// everything except Verify.
	DER []byte
}

// TimestampProvider is the C7 collaborator a Signer optionally calls
// through to countersign a freshly produced signature (§4.5 "Timestamp
// provider interface").
type TimestampProvider interface {
	// Timestamp requests a token over messageImprint (the digest of the
	// COSE signature bytes) under hashAlg.
	Timestamp(messageImprint []byte, hashAlg cryptoprovider.HashAlg) (*Token, error)
}

// Verify parses tok and checks that its MessageImprint matches
// messageImprint under hashAlg, returning the TSTInfo on success. It does
// not itself validate the TSA's certificate chain; callers combine this
// with their own trust-anchor check (§4.6, C9).
func Verify(tok *Token, messageImprint []byte, hashAlg cryptoprovider.HashAlg) (*TSTInfo, c2paerrors.TimestampReason, error) {
	info, err := parseTSTInfo(tok.DER)
	if err != nil {
		return nil, c2paerrors.TimestampChainInvalid, fmt.Errorf("%w: %v", c2paerrors.ErrTimestampInvalid, err)
	}

	wantOID, err := cryptoprovider.OIDForHashAlg(hashAlg)
	if err != nil {
		return nil, c2paerrors.TimestampImprintMismatch, err
	}
	if info.MessageImprint.HashAlgorithm.Algorithm.String() != wantOID {
		return info, c2paerrors.TimestampImprintMismatch, fmt.Errorf("%w: digest algorithm mismatch", c2paerrors.ErrTimestampInvalid)
	}
	if !bytes.Equal(info.MessageImprint.HashedMessage, messageImprint) {
		return info, c2paerrors.TimestampImprintMismatch, fmt.Errorf("%w: message imprint mismatch", c2paerrors.ErrTimestampInvalid)
	}
	return info, "", nil
}

// cmsContentInfo is the minimal CMS SignedData envelope (RFC 5652 §3, §5.1)
// this package needs: enough to reach into the eContent that carries the
// DER-encoded TSTInfo. Certificates and SignerInfos are captured as raw
// ASN.1 and not interpreted here.
type cmsContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,tag:0"`
}

type cmsSignedData struct {
	Version          int
	DigestAlgorithms asn1.RawValue `asn1:"set"`
	EncapContentInfo cmsEncapsulatedContentInfo
	Certificates     asn1.RawValue `asn1:"optional,tag:0"`
	CRLs             asn1.RawValue `asn1:"optional,tag:1"`
	SignerInfos      asn1.RawValue `asn1:"set"`
}

type cmsEncapsulatedContentInfo struct {
	ContentType asn1.ObjectIdentifier
	Content     asn1.RawValue `asn1:"explicit,optional,tag:0"`
}

func parseTSTInfo(der []byte) (*TSTInfo, error) {
	var ci cmsContentInfo
	if _, err := asn1.Unmarshal(der, &ci); err != nil {
		return nil, fmt.Errorf("rfc3161: malformed ContentInfo: %w", err)
	}

	var sd cmsSignedData
	if _, err := asn1.Unmarshal(ci.Content.Bytes, &sd); err != nil {
		return nil, fmt.Errorf("rfc3161: malformed SignedData: %w", err)
	}

	// eContent is an OCTET STRING whose contents are the TSTInfo DER.
	var infoDER []byte
	if _, err := asn1.Unmarshal(sd.EncapContentInfo.Content.Bytes, &infoDER); err != nil {
		return nil, fmt.Errorf("rfc3161: malformed eContent: %w", err)
	}

	var info TSTInfo
	if _, err := asn1.Unmarshal(infoDER, &info); err != nil {
		return nil, fmt.Errorf("rfc3161: malformed TSTInfo: %w", err)
	}
	return &info, nil
}

// HTTPProvider requests timestamps from a remote TSA over the RFC 3161
// "application/timestamp-query" HTTP binding (RFC 3161 Appendix A).
type HTTPProvider struct {
	Endpoint string
	Client   *http.Client
	Provider cryptoprovider.Provider
}

// NewHTTPProvider builds an HTTPProvider against endpoint using the
// default HTTP client.
func NewHTTPProvider(endpoint string, provider cryptoprovider.Provider) *HTTPProvider {
	return &HTTPProvider{Endpoint: endpoint, Client: http.DefaultClient, Provider: provider}
}

// Timestamp implements TimestampProvider.
func (p *HTTPProvider) Timestamp(messageImprint []byte, hashAlg cryptoprovider.HashAlg) (*Token, error) {
	oid, err := cryptoprovider.OIDForHashAlg(hashAlg)
	if err != nil {
		return nil, err
	}
	nonce, err := p.Provider.GetRandomValues(8)
	if err != nil {
		return nil, err
	}

	req := TimeStampReq{
		Version: 1,
		MessageImprint: MessageImprint{
			HashAlgorithm: pkixAlgorithmIdentifier{Algorithm: mustParseOID(oid)},
			HashedMessage: messageImprint,
		},
		Nonce:   bigFromBytes(nonce),
		CertReq: true,
	}

	reqDER, err := asn1.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("rfc3161: failed to encode TimeStampReq: %w", err)
	}

	httpResp, err := p.Client.Post(p.Endpoint, "application/timestamp-query", bytes.NewReader(reqDER))
	if err != nil {
		return nil, fmt.Errorf("%w: rfc3161 request failed: %v", c2paerrors.ErrIO, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: rfc3161 response read failed: %v", c2paerrors.ErrIO, err)
	}

	var resp TimeStampResp
	if _, err := asn1.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: malformed TimeStampResp: %v", c2paerrors.ErrTimestampInvalid, err)
	}
	if resp.Status.Status != StatusGranted && resp.Status.Status != StatusGrantedWithMods {
		return nil, fmt.Errorf("%w: TSA declined request (status %d)", c2paerrors.ErrTimestampInvalid, resp.Status.Status)
	}

	return &Token{DER: resp.TimeStampToken.FullBytes}, nil
}

func mustParseOID(s string) asn1.ObjectIdentifier {
	oid, err := parseOID(s)
	if err != nil {
		panic(err)
	}
	return oid
}

func parseOID(s string) (asn1.ObjectIdentifier, error) {
	var oid asn1.ObjectIdentifier
	part := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '.' {
			if i == part {
				return nil, fmt.Errorf("rfc3161: invalid OID %q", s)
			}
			n := 0
			for _, c := range s[part:i] {
				if c < '0' || c > '9' {
					return nil, fmt.Errorf("rfc3161: invalid OID %q", s)
				}
				n = n*10 + int(c-'0')
			}
			oid = append(oid, n)
			part = i + 1
		}
	}
	return oid, nil
}

func bigFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

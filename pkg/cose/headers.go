// Package cose implements the C6 COSE_Sign1 signer/verifier (§4.4): a
// COSE_Sign1 structure over claim bytes with C2PA's protected header set
// (alg, content_type, x5chain) and optional RFC3161 countersignature in
// the unprotected headers. Canonicalization follows the same c2pacbor
// deterministic profile (cbor.CanonicalEncOptions) used by the JUMBF
// engine (§4.4 "the hardest sub-problem is canonicalization").
package cose

// COSE header labels (RFC 9052 §3.1, RFC 9360 §2 for x5chain).
const (
	HeaderLabelAlg         = 1
	HeaderLabelCrit        = 2
	HeaderLabelContentType = 3
	HeaderLabelKid         = 4
	HeaderLabelX5Chain     = 33
)

// C2PA unprotected countersignature headers (§4.4, §4.5).
// CreateCoseSign1 always writes the token under sigTst2, whatever the
// claim dialect; the validator reads sigTst2 and falls back to sigTst.
const (
	HeaderLabelSigTst  = "sigTst"
	HeaderLabelSigTst2 = "sigTst2"
)

// ContentTypeClaim is the COSE content_type value C2PA claims are signed
// under (§4.4).
const ContentTypeClaim = "application/c2pa-claim"

// sigStructureContext is the fixed "Signature1" context string for
// COSE_Sign1's Sig_structure (RFC 9052 §4.4).
const sigStructureContext = "Signature1"

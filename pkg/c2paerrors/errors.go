// Package c2paerrors defines the closed set of error kinds shared across
// the JUMBF engine, asset layer, manifest model, COSE signer/verifier,
// RFC3161 client, and validator (§7). Each kind is a package-level
// sentinel so callers can match it with errors.Is against a wrapped
// error, following the fmt.Errorf("...: %w", err) discipline used
// throughout the teacher codebase's pkg/database and pkg/cose packages.
package c2paerrors

import "errors"

var (
	// ErrMalformedBox signals a JUMBF length/type/structure violation.
	ErrMalformedBox = errors.New("malformed box")

	// ErrNotAValidAsset signals that an asset's magic bytes did not match
	// any supported container kind.
	ErrNotAValidAsset = errors.New("not a valid asset of this kind")

	// ErrManifestAbsent signals that an asset contains no manifest-store
	// region.
	ErrManifestAbsent = errors.New("manifest store absent")

	// ErrHashMismatch signals a data/BMFF/assertion digest check failure.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrSignatureInvalid signals a COSE signature that failed to verify.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrSignatureAlgorithmDisallowed signals a leaf certificate using an
	// algorithm outside the configured allow-list.
	ErrSignatureAlgorithmDisallowed = errors.New("signature algorithm disallowed")

	// ErrCertificateChainInvalid signals an X.509 chain that does not
	// validate against the configured trust store.
	ErrCertificateChainInvalid = errors.New("certificate chain invalid")

	// ErrTimestampInvalid signals an RFC3161 token that failed validation;
	// see TimestampReason for the specific cause.
	ErrTimestampInvalid = errors.New("timestamp invalid")

	// ErrUnsupportedAlgorithm signals an OID or algorithm identifier with
	// no registered implementation.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrIO wraps underlying read/write failures from an asset source.
	ErrIO = errors.New("io error")

	// ErrExclusionOverlap signals that two declared exclusions overlap or
	// one extends past the end of the asset (invariant 4, §8).
	ErrExclusionOverlap = errors.New("exclusions overlap or exceed asset bounds")
)

// TimestampReason enumerates the specific cause of an ErrTimestampInvalid
// failure (§7).
type TimestampReason string

const (
	TimestampStatusNotGranted TimestampReason = "status-not-granted"
	TimestampNonceMismatch    TimestampReason = "nonce-mismatch"
	TimestampImprintMismatch  TimestampReason = "imprint-mismatch"
	TimestampOutsideValidity  TimestampReason = "time-outside-validity"
	TimestampChainInvalid     TimestampReason = "chain-invalid"
)

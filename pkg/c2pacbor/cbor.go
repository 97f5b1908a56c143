// Package c2pacbor centralizes the single deterministic CBOR encoding
// mode used across the JUMBF engine, the manifest model, and COSE
// canonicalization (§4.1, §4.4). It resolves the spec's Open Question
// (ii): the committed deterministic form is fxamacker/cbor's canonical
// profile (definite-length arrays/maps, sorted map keys) — never the
// alternate/indefinite-length encodings also observed in the wild.
package c2pacbor

import "github.com/fxamacker/cbor/v2"

// EncMode is the process-wide canonical encoder. Built once at package
// init and never mutated, matching the "global OID tables" design note's
// immutable-after-init pattern.
var EncMode cbor.EncMode

// DecMode is the matching decoder: large-map/array ceilings are left at
// the library defaults, but duplicate map keys are rejected so a
// malformed claim cannot smuggle two values under one key.
var DecMode cbor.DecMode

func init() {
	encOpts := cbor.CanonicalEncOptions()
	mode, err := encOpts.EncMode()
	if err != nil {
		panic("c2pacbor: failed to build canonical encode mode: " + err.Error())
	}
	EncMode = mode

	decOpts := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}
	dmode, err := decOpts.DecMode()
	if err != nil {
		panic("c2pacbor: failed to build decode mode: " + err.Error())
	}
	DecMode = dmode
}

// Marshal encodes v using the canonical encode mode.
func Marshal(v interface{}) ([]byte, error) {
	return EncMode.Marshal(v)
}

// Unmarshal decodes data into v using the shared decode mode.
func Unmarshal(data []byte, v interface{}) error {
	return DecMode.Unmarshal(data, v)
}

// RawMessage re-exports cbor.RawMessage so callers that need to defer
// decoding (e.g. to capture an assertion's exact CBOR bytes) don't need a
// direct fxamacker/cbor import.
type RawMessage = cbor.RawMessage

// Tag re-exports cbor.Tag for callers that construct or inspect tagged
// CBOR values (JUMBF CBORBox content, §8 S5).
type Tag = cbor.Tag

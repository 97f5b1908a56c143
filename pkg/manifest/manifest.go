// Package manifest maps JUMBF trees (pkg/jumbf) to the C2PA manifest
// model and back: claims, assertion variants, and the ManifestStore that
// ties a chain of manifests together (§4.3).
//
// Every assertion type round-trips through ReadFromJUMBF/GenerateJUMBFBox
// so a store that is parsed, touched nowhere, and re-serialized reproduces
// its original bytes exactly, mirroring the byte-exact preservation
// requirement the JUMBF layer itself guarantees (§9 "Byte-exact
// preservation").
package manifest

import "github.com/google/uuid"

// jumbfUUIDSuffix is the fixed 12-byte extended-type suffix ISO/IEC
// 14496-12 UUID boxes (and, by convention, JUMBF content-type UUIDs)
// append after a 4-byte ASCII tag.
var jumbfUUIDSuffix = [12]byte{0x00, 0x11, 0x00, 0x10, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// fourCCUUID builds the 16-byte extended-type UUID for a 4-character
// ASCII content-type tag.
func fourCCUUID(fourCC string) uuid.UUID {
	var b [16]byte
	copy(b[0:4], fourCC)
	copy(b[4:16], jumbfUUIDSuffix[:])
	return b
}

// Well-known C2PA content-type UUIDs (§3 "16-byte UUID identifying
// payload semantics").
var (
	uuidManifestStore  = fourCCUUID("c2pa")
	uuidManifest       = fourCCUUID("c2ma")
	uuidClaim          = fourCCUUID("c2cl")
	uuidClaimSignature = fourCCUUID("c2cs")
	uuidAssertionStore = fourCCUUID("c2as")
	uuidAssertion      = fourCCUUID("cass")
)

// Package asset implements the C4 asset container layer: locating,
// rewriting, and hashing manifest-bearing regions inside JPEG, PNG and
// MP3 files without altering any other byte (§4.2).
package asset

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// Range is a byte span {start, length} over an asset's bytes.
type Range struct {
	Start  int64
	Length int64
}

// End returns the exclusive end offset of r.
func (r Range) End() int64 { return r.Start + r.Length }

// Exclusion is a Range excluded from a data-hash computation (Glossary).
type Exclusion = Range

// Blob is the minimal asset-source contract (§6 "Asset I/O"): either an
// in-memory byte sequence or a streaming source exposing Size/Slice.
type Blob interface {
	Size() int64
	Slice(start, end int64) ([]byte, error)
}

// ByteBlob adapts an in-memory byte slice to Blob.
type ByteBlob []byte

// Size implements Blob.
func (b ByteBlob) Size() int64 { return int64(len(b)) }

// Slice implements Blob.
func (b ByteBlob) Slice(start, end int64) ([]byte, error) {
	if start < 0 || end > int64(len(b)) || start > end {
		return nil, fmt.Errorf("%w: slice [%d:%d] out of bounds for %d-byte blob", c2paerrors.ErrIO, start, end, len(b))
	}
	return b[start:end], nil
}

// Kind identifies a supported container format.
type Kind string

const (
	KindJPEG Kind = "jpeg"
	KindPNG  Kind = "png"
	KindMP3  Kind = "mp3"
)

// Asset is the uniform per-container-kind contract (§4.2).
type Asset interface {
	Kind() Kind

	// Bytes returns the asset's full current byte image.
	Bytes() []byte

	// GetManifestStoreRange locates the embedded manifest-store region,
	// if any.
	GetManifestStoreRange() (Range, bool)

	// ReadManifestStore returns the JUMBF bytes of the embedded manifest
	// store, if any.
	ReadManifestStore() ([]byte, bool, error)

	// WriteManifestStore returns a new Asset with the manifest-store
	// region inserted or replaced; all other bytes are preserved.
	WriteManifestStore(jumbfBytes []byte) (Asset, error)

	// DataHashExclusions returns the byte ranges to exclude when
	// computing the data hash, given the placeholder range the claim's
	// signature will occupy once signed.
	DataHashExclusions(placeholderSignature Range) ([]Exclusion, error)
}

// canReader is the cheap, never-throwing magic-byte probe for one Kind.
type canReader func(prefix []byte) bool

// creator parses source into an Asset of one Kind, failing with
// ErrNotAValidAsset if the magic bytes don't actually match (defense in
// depth — callers are expected to have already checked CanRead).
type creator func(source Blob) (Asset, error)

var kinds = []struct {
	kind    Kind
	canRead canReader
	create  creator
}{
	{KindJPEG, jpegCanRead, createJPEG},
	{KindPNG, pngCanRead, createPNG},
	{KindMP3, mp3CanRead, createMP3},
}

// CanRead runs every registered kind's magic-byte test against prefix and
// returns the first match.
func CanRead(prefix []byte) (Kind, bool) {
	for _, k := range kinds {
		if k.canRead(prefix) {
			return k.kind, true
		}
	}
	return "", false
}

// Open detects source's container kind from its leading bytes and parses
// it into an Asset.
func Open(source Blob) (Asset, error) {
	probeLen := int64(16)
	if source.Size() < probeLen {
		probeLen = source.Size()
	}
	prefix, err := source.Slice(0, probeLen)
	if err != nil {
		return nil, fmt.Errorf("asset: reading magic bytes: %w", err)
	}

	kind, ok := CanRead(prefix)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized magic bytes", c2paerrors.ErrNotAValidAsset)
	}

	for _, k := range kinds {
		if k.kind == kind {
			return k.create(source)
		}
	}
	panic("asset: unreachable: CanRead matched a kind with no creator")
}

// OpenBytes is a convenience wrapper around Open for in-memory assets.
func OpenBytes(data []byte) (Asset, error) {
	return Open(ByteBlob(data))
}

// SortExclusions sorts and validates exclusions per §5 "Ordering" and
// invariant 4 (§8): ascending, non-overlapping, within [0, assetLen).
func SortExclusions(exclusions []Exclusion, assetLen int64) ([]Exclusion, error) {
	sorted := append([]Exclusion(nil), exclusions...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Start < sorted[j-1].Start; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	for i, e := range sorted {
		if e.Start < 0 || e.Length < 0 || e.End() > assetLen {
			return nil, fmt.Errorf("%w: exclusion [%d,%d) exceeds asset bounds %d", c2paerrors.ErrExclusionOverlap, e.Start, e.End(), assetLen)
		}
		if i > 0 && e.Start < sorted[i-1].End() {
			return nil, fmt.Errorf("%w: exclusion [%d,%d) overlaps preceding [%d,%d)", c2paerrors.ErrExclusionOverlap, e.Start, e.End(), sorted[i-1].Start, sorted[i-1].End())
		}
	}
	return sorted, nil
}

package asset

import (
	"encoding/binary"
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// JPEG/APP11 constants (§4.2 "JPEG uses APP11 markers (FF EB) with a
// two-byte common identifier and CI pairs to multiplex JUMBF across
// segments").
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP11 = 0xEB

	jumbfCommonIdentifier = "JP"
	jumbfBoxInstance      = uint16(1)

	// maxAPP11Fragment caps a single APP11 segment's JUMBF fragment so
	// the 2-byte segment length field (which also counts 2 bytes for
	// itself, 2 for CI, 2 for box instance, 4 for packet sequence)
	// never overflows 0xFFFF.
	maxAPP11Fragment = 65000
)

func jpegCanRead(prefix []byte) bool {
	return len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1] == markerSOI
}

type jpegSegment struct {
	marker  byte
	payload []byte // excludes the 2-byte length field; includes everything after it
}

type jpegAsset struct {
	data      []byte
	segments  []jpegSegment // header segments, in order, up to (not including) SOS
	scanTail  []byte        // SOS marker onward: scan header + entropy data + EOI, opaque
}

var _ Asset = (*jpegAsset)(nil)

func createJPEG(source Blob) (Asset, error) {
	data, err := source.Slice(0, source.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", c2paerrors.ErrIO, err)
	}
	if !jpegCanRead(data) {
		return nil, fmt.Errorf("%w: jpeg", c2paerrors.ErrNotAValidAsset)
	}
	return parseJPEG(data)
}

func parseJPEG(data []byte) (*jpegAsset, error) {
	pos := 2 // past SOI
	var segments []jpegSegment

	for {
		if pos+1 >= len(data) {
			return nil, fmt.Errorf("%w: jpeg truncated before SOS", c2paerrors.ErrMalformedBox)
		}
		if data[pos] != 0xFF {
			return nil, fmt.Errorf("%w: expected marker at offset %d", c2paerrors.ErrMalformedBox, pos)
		}
		marker := data[pos+1]
		pos += 2

		if marker == markerSOS {
			return &jpegAsset{data: data, segments: segments, scanTail: data[pos-2:]}, nil
		}
		if marker == markerEOI {
			return &jpegAsset{data: data, segments: segments, scanTail: data[pos-2:]}, nil
		}

		if pos+1 >= len(data) {
			return nil, fmt.Errorf("%w: jpeg truncated reading segment length", c2paerrors.ErrMalformedBox)
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 || pos+length > len(data) {
			return nil, fmt.Errorf("%w: jpeg segment at %d declares invalid length %d", c2paerrors.ErrMalformedBox, pos, length)
		}
		payload := data[pos+2 : pos+length]
		segments = append(segments, jpegSegment{marker: marker, payload: payload})
		pos += length
	}
}

func (a *jpegAsset) Kind() Kind { return KindJPEG }

func (a *jpegAsset) Bytes() []byte { return a.data }

type app11Fragment struct {
	boxInstance uint16
	packetSeq   uint32
	jumbf       []byte
}

func (a *jpegAsset) manifestFragments() []app11Fragment {
	var frags []app11Fragment
	for _, seg := range a.segments {
		if seg.marker != markerAPP11 {
			continue
		}
		if len(seg.payload) < 8 {
			continue
		}
		if string(seg.payload[0:2]) != jumbfCommonIdentifier {
			continue
		}
		boxInstance := binary.BigEndian.Uint16(seg.payload[2:4])
		if boxInstance != jumbfBoxInstance {
			continue
		}
		packetSeq := binary.BigEndian.Uint32(seg.payload[4:8])
		frags = append(frags, app11Fragment{boxInstance: boxInstance, packetSeq: packetSeq, jumbf: seg.payload[8:]})
	}
	for i := 1; i < len(frags); i++ {
		for j := i; j > 0 && frags[j].packetSeq < frags[j-1].packetSeq; j-- {
			frags[j], frags[j-1] = frags[j-1], frags[j]
		}
	}
	return frags
}

func (a *jpegAsset) GetManifestStoreRange() (Range, bool) {
	offset := 2 // SOI
	var first, last Range
	found := false
	for _, seg := range a.segments {
		segLen := int64(2 + 2 + len(seg.payload)) // marker + length field + payload
		if seg.marker == markerAPP11 && len(seg.payload) >= 8 &&
			string(seg.payload[0:2]) == jumbfCommonIdentifier &&
			binary.BigEndian.Uint16(seg.payload[2:4]) == jumbfBoxInstance {
			r := Range{Start: int64(offset), Length: segLen}
			if !found {
				first = r
				found = true
			}
			last = r
		}
		offset += int(segLen)
	}
	if !found {
		return Range{}, false
	}
	return Range{Start: first.Start, Length: last.End() - first.Start}, true
}

func (a *jpegAsset) ReadManifestStore() ([]byte, bool, error) {
	frags := a.manifestFragments()
	if len(frags) == 0 {
		return nil, false, nil
	}
	var out []byte
	for _, f := range frags {
		out = append(out, f.jumbf...)
	}
	return out, true, nil
}

func (a *jpegAsset) WriteManifestStore(jumbfBytes []byte) (Asset, error) {
	var newSegments []jpegSegment
	inserted := false

	for _, seg := range a.segments {
		isManifestSeg := seg.marker == markerAPP11 && len(seg.payload) >= 8 &&
			string(seg.payload[0:2]) == jumbfCommonIdentifier &&
			binary.BigEndian.Uint16(seg.payload[2:4]) == jumbfBoxInstance

		if isManifestSeg {
			if !inserted {
				newSegments = append(newSegments, chunkJUMBFToAPP11(jumbfBytes)...)
				inserted = true
			}
			continue
		}
		newSegments = append(newSegments, seg)
	}
	if !inserted {
		// No prior manifest store: insert right after SOI, before any
		// other segment (placement convention only; the spec does not
		// mandate a position).
		newSegments = append(chunkJUMBFToAPP11(jumbfBytes), newSegments...)
	}

	out := make([]byte, 0, len(a.data)+len(jumbfBytes)+64)
	out = append(out, 0xFF, markerSOI)
	for _, seg := range newSegments {
		out = append(out, 0xFF, seg.marker)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(seg.payload)+2))
		out = append(out, lenBuf[:]...)
		out = append(out, seg.payload...)
	}
	out = append(out, a.scanTail...)

	return parseJPEG(out)
}

func chunkJUMBFToAPP11(jumbf []byte) []jpegSegment {
	if len(jumbf) == 0 {
		return nil
	}
	var segs []jpegSegment
	var packetSeq uint32 = 1
	for off := 0; off < len(jumbf); off += maxAPP11Fragment {
		end := off + maxAPP11Fragment
		if end > len(jumbf) {
			end = len(jumbf)
		}
		payload := make([]byte, 0, 8+end-off)
		payload = append(payload, jumbfCommonIdentifier...)
		var instBuf [2]byte
		binary.BigEndian.PutUint16(instBuf[:], jumbfBoxInstance)
		payload = append(payload, instBuf[:]...)
		var seqBuf [4]byte
		binary.BigEndian.PutUint32(seqBuf[:], packetSeq)
		payload = append(payload, seqBuf[:]...)
		payload = append(payload, jumbf[off:end]...)

		segs = append(segs, jpegSegment{marker: markerAPP11, payload: payload})
		packetSeq++
	}
	return segs
}

func (a *jpegAsset) DataHashExclusions(placeholderSignature Range) ([]Exclusion, error) {
	if r, ok := a.GetManifestStoreRange(); ok {
		return []Exclusion{r}, nil
	}
	return []Exclusion{placeholderSignature}, nil
}

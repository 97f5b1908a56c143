package asset

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// c2paChunkType is the PNG ancillary chunk type used to carry the JUMBF
// manifest store (§4.2 "PNG stores it in a dedicated chunk").
const c2paChunkType = "caBX"

const pngChunkIEND = "IEND"

func pngCanRead(prefix []byte) bool {
	if len(prefix) < len(pngSignature) {
		return false
	}
	for i, b := range pngSignature {
		if prefix[i] != b {
			return false
		}
	}
	return true
}

type pngChunk struct {
	chunkType string
	data      []byte
}

type pngAsset struct {
	data   []byte
	chunks []pngChunk
}

var _ Asset = (*pngAsset)(nil)

func createPNG(source Blob) (Asset, error) {
	data, err := source.Slice(0, source.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", c2paerrors.ErrIO, err)
	}
	if !pngCanRead(data) {
		return nil, fmt.Errorf("%w: png", c2paerrors.ErrNotAValidAsset)
	}
	return parsePNG(data)
}

func parsePNG(data []byte) (*pngAsset, error) {
	pos := len(pngSignature)
	var chunks []pngChunk

	for pos < len(data) {
		if pos+8 > len(data) {
			return nil, fmt.Errorf("%w: png truncated reading chunk header", c2paerrors.ErrMalformedBox)
		}
		length := binary.BigEndian.Uint32(data[pos : pos+4])
		chunkType := string(data[pos+4 : pos+8])
		dataStart := pos + 8
		dataEnd := dataStart + int(length)
		if dataEnd+4 > len(data) {
			return nil, fmt.Errorf("%w: png chunk %q declares invalid length %d", c2paerrors.ErrMalformedBox, chunkType, length)
		}
		chunks = append(chunks, pngChunk{chunkType: chunkType, data: data[dataStart:dataEnd]})
		pos = dataEnd + 4 // skip CRC

		if chunkType == pngChunkIEND {
			break
		}
	}

	return &pngAsset{data: data, chunks: chunks}, nil
}

func (a *pngAsset) Kind() Kind { return KindPNG }

func (a *pngAsset) Bytes() []byte { return a.data }

func (a *pngAsset) findManifestChunk() (int, bool) {
	for i, c := range a.chunks {
		if c.chunkType == c2paChunkType {
			return i, true
		}
	}
	return -1, false
}

func (a *pngAsset) GetManifestStoreRange() (Range, bool) {
	idx, ok := a.findManifestChunk()
	if !ok {
		return Range{}, false
	}
	offset := int64(len(pngSignature))
	for i, c := range a.chunks {
		chunkLen := int64(8 + len(c.data) + 4)
		if i == idx {
			return Range{Start: offset, Length: chunkLen}, true
		}
		offset += chunkLen
	}
	return Range{}, false
}

func (a *pngAsset) ReadManifestStore() ([]byte, bool, error) {
	idx, ok := a.findManifestChunk()
	if !ok {
		return nil, false, nil
	}
	return a.chunks[idx].data, true, nil
}

func (a *pngAsset) WriteManifestStore(jumbfBytes []byte) (Asset, error) {
	newChunk := pngChunk{chunkType: c2paChunkType, data: jumbfBytes}

	var newChunks []pngChunk
	if idx, ok := a.findManifestChunk(); ok {
		newChunks = append(newChunks, a.chunks[:idx]...)
		newChunks = append(newChunks, newChunk)
		newChunks = append(newChunks, a.chunks[idx+1:]...)
	} else {
		// Insert immediately before IEND, a common convention for
		// ancillary chunks added after the fact.
		for _, c := range a.chunks {
			if c.chunkType == pngChunkIEND {
				newChunks = append(newChunks, newChunk)
			}
			newChunks = append(newChunks, c)
		}
	}

	out := make([]byte, 0, len(a.data)+len(jumbfBytes)+16)
	out = append(out, pngSignature...)
	for _, c := range newChunks {
		out = appendPNGChunk(out, c.chunkType, c.data)
	}

	return parsePNG(out)
}

func appendPNGChunk(out []byte, chunkType string, data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	out = append(out, lenBuf[:]...)
	out = append(out, chunkType...)
	out = append(out, data...)

	crc := crc32.NewIEEE()
	crc.Write([]byte(chunkType))
	crc.Write(data)
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc.Sum32())
	out = append(out, crcBuf[:]...)
	return out
}

func (a *pngAsset) DataHashExclusions(placeholderSignature Range) ([]Exclusion, error) {
	if r, ok := a.GetManifestStoreRange(); ok {
		return []Exclusion{r}, nil
	}
	return []Exclusion{placeholderSignature}, nil
}

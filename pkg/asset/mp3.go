package asset

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// id3PrivOwner identifies the manifest-store PRIV frame among any other
// private frames a tagging tool may have written (§4.2 "MP3 wraps it in
// a private ID3v2 frame").
const id3PrivOwner = "c2pa.manifestStore"

func mp3CanRead(prefix []byte) bool {
	if len(prefix) >= 3 && prefix[0] == 0x49 && prefix[1] == 0x44 && prefix[2] == 0x33 {
		return true // "ID3"
	}
	if len(prefix) >= 2 && prefix[0] == 0xFF && prefix[1]&0xE0 == 0xE0 {
		return true // MPEG frame sync (11 set high bits)
	}
	return false
}

type id3Frame struct {
	id    string // 4-char frame ID
	flags [2]byte
	data  []byte
}

type mp3Asset struct {
	data       []byte
	hasTag     bool
	tagVersion [2]byte // major, revision
	tagFlags   byte
	frames     []id3Frame
	tail       []byte // bytes after the ID3v2 tag (audio frames), opaque
}

var _ Asset = (*mp3Asset)(nil)

func createMP3(source Blob) (Asset, error) {
	data, err := source.Slice(0, source.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", c2paerrors.ErrIO, err)
	}
	if !mp3CanRead(data) {
		return nil, fmt.Errorf("%w: mp3", c2paerrors.ErrNotAValidAsset)
	}
	return parseMP3(data)
}

func synchsafeDecode(b []byte) int {
	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3])
}

func synchsafeEncode(size int) [4]byte {
	return [4]byte{
		byte((size >> 21) & 0x7F),
		byte((size >> 14) & 0x7F),
		byte((size >> 7) & 0x7F),
		byte(size & 0x7F),
	}
}

func parseMP3(data []byte) (*mp3Asset, error) {
	if len(data) >= 3 && data[0] == 0x49 && data[1] == 0x44 && data[2] == 0x33 {
		return parseMP3WithID3(data)
	}
	// No ID3v2 tag: the whole file is the opaque audio stream.
	return &mp3Asset{data: data, tail: data}, nil
}

func parseMP3WithID3(data []byte) (*mp3Asset, error) {
	if len(data) < 10 {
		return nil, fmt.Errorf("%w: mp3 truncated ID3v2 header", c2paerrors.ErrMalformedBox)
	}
	major, rev := data[3], data[4]
	flags := data[5]
	tagSize := synchsafeDecode(data[6:10])
	if 10+tagSize > len(data) {
		return nil, fmt.Errorf("%w: id3v2 tag declares invalid size %d", c2paerrors.ErrMalformedBox, tagSize)
	}

	frameData := data[10 : 10+tagSize]
	frames, err := parseID3Frames(frameData)
	if err != nil {
		return nil, err
	}

	return &mp3Asset{
		data:       data,
		hasTag:     true,
		tagVersion: [2]byte{major, rev},
		tagFlags:   flags,
		frames:     frames,
		tail:       data[10+tagSize:],
	}, nil
}

func parseID3Frames(buf []byte) ([]id3Frame, error) {
	var frames []id3Frame
	pos := 0
	for pos < len(buf) {
		if pos+10 > len(buf) {
			break // padding
		}
		if buf[pos] == 0 {
			break // start of padding
		}
		id := string(buf[pos : pos+4])
		size := int(buf[pos+4])<<24 | int(buf[pos+5])<<16 | int(buf[pos+6])<<8 | int(buf[pos+7])
		// flags at buf[pos+8:pos+10] are kept in id3Frame.flags and written back verbatim
		dataStart := pos + 10
		dataEnd := dataStart + size
		if dataEnd > len(buf) {
			return nil, fmt.Errorf("%w: id3v2 frame %q declares invalid size %d", c2paerrors.ErrMalformedBox, id, size)
		}
		frames = append(frames, id3Frame{id: id, flags: [2]byte{buf[pos+8], buf[pos+9]}, data: buf[dataStart:dataEnd]})
		pos = dataEnd
	}
	return frames, nil
}

func (a *mp3Asset) Kind() Kind { return KindMP3 }

func (a *mp3Asset) Bytes() []byte { return a.data }

func (a *mp3Asset) findManifestFrame() (int, bool) {
	for i, f := range a.frames {
		if f.id != "PRIV" {
			continue
		}
		owner, ok := privOwner(f.data)
		if ok && owner == id3PrivOwner {
			return i, true
		}
	}
	return -1, false
}

func privOwner(data []byte) (string, bool) {
	for i, b := range data {
		if b == 0 {
			return string(data[:i]), true
		}
	}
	return "", false
}

func (a *mp3Asset) GetManifestStoreRange() (Range, bool) {
	idx, ok := a.findManifestFrame()
	if !ok {
		return Range{}, false
	}
	offset := int64(10) // ID3v2 header
	for i, f := range a.frames {
		frameLen := int64(10 + len(f.data))
		if i == idx {
			return Range{Start: offset, Length: frameLen}, true
		}
		offset += frameLen
	}
	return Range{}, false
}

func (a *mp3Asset) ReadManifestStore() ([]byte, bool, error) {
	idx, ok := a.findManifestFrame()
	if !ok {
		return nil, false, nil
	}
	owner, _ := privOwner(a.frames[idx].data)
	return a.frames[idx].data[len(owner)+1:], true, nil
}

func (a *mp3Asset) WriteManifestStore(jumbfBytes []byte) (Asset, error) {
	frameData := append([]byte(id3PrivOwner+"\x00"), jumbfBytes...)
	newFrame := id3Frame{id: "PRIV", data: frameData}

	var newFrames []id3Frame
	if idx, ok := a.findManifestFrame(); ok {
		newFrames = append(newFrames, a.frames[:idx]...)
		newFrames = append(newFrames, newFrame)
		newFrames = append(newFrames, a.frames[idx+1:]...)
	} else {
		newFrames = append(append([]id3Frame{}, a.frames...), newFrame)
	}

	var frameBuf []byte
	for _, f := range newFrames {
		frameBuf = append(frameBuf, f.id...)
		frameBuf = append(frameBuf, byte(len(f.data)>>24), byte(len(f.data)>>16), byte(len(f.data)>>8), byte(len(f.data)))
		frameBuf = append(frameBuf, f.flags[:]...) // original frame flags; none set on the manifest frame
		frameBuf = append(frameBuf, f.data...)
	}

	sizeField := synchsafeEncode(len(frameBuf))
	major, rev := byte(3), byte(0)
	if a.hasTag {
		major, rev = a.tagVersion[0], a.tagVersion[1]
	}

	out := make([]byte, 0, 10+len(frameBuf)+len(a.tail))
	out = append(out, 'I', 'D', '3', major, rev, 0)
	out = append(out, sizeField[:]...)
	out = append(out, frameBuf...)
	out = append(out, a.tail...)

	return parseMP3(out)
}

func (a *mp3Asset) DataHashExclusions(placeholderSignature Range) ([]Exclusion, error) {
	if r, ok := a.GetManifestStoreRange(); ok {
		return []Exclusion{r}, nil
	}
	return []Exclusion{placeholderSignature}, nil
}

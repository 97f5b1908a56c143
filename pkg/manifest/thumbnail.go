package manifest

import (
	"fmt"
	"strings"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// thumbnailExtensions maps a thumbnail assertion's content type to the
// label suffix C2PA appends after "c2pa.thumbnail.claim." (e.g.
// "c2pa.thumbnail.claim.jpeg").
var thumbnailExtensions = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
}

var thumbnailContentTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
}

// ThumbnailAssertion carries a preview image of the asset as raw bytes
// rather than a CBOR dict (§4.3 "raw bytes" variant).
type ThumbnailAssertion struct {
	ContentType string
	Data        []byte
}

var _ Assertion = (*ThumbnailAssertion)(nil)

// Label reports the format-qualified thumbnail label, e.g.
// "c2pa.thumbnail.claim.jpeg".
func (t *ThumbnailAssertion) Label() string {
	ext, ok := thumbnailExtensions[t.ContentType]
	if !ok {
		ext = "bin"
	}
	return LabelThumbnail + "." + ext
}

func (t *ThumbnailAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	sb, ok := box.Content.(*jumbf.SuperBox)
	if !ok {
		return fmt.Errorf("%w: thumbnail assertion box is not a super-box", c2paerrors.ErrMalformedBox)
	}
	if len(sb.Children) != 1 {
		return fmt.Errorf("%w: thumbnail assertion must have exactly one content child, got %d", c2paerrors.ErrMalformedBox, len(sb.Children))
	}
	raw, ok := sb.Children[0].Content.(*jumbf.RawBox)
	if !ok {
		return fmt.Errorf("%w: thumbnail assertion content must be raw binary", c2paerrors.ErrMalformedBox)
	}
	label := sb.Label()
	ext := strings.TrimPrefix(label, LabelThumbnail+".")
	contentType, ok := thumbnailContentTypes[ext]
	if !ok {
		return fmt.Errorf("%w: unrecognized thumbnail format suffix %q", c2paerrors.ErrMalformedBox, ext)
	}
	t.ContentType = contentType
	t.Data = raw.Data
	return nil
}

func (t *ThumbnailAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	label := t.Label()
	desc := &jumbf.DescriptionBox{UUID: uuidAssertion, Label: &label}
	return jumbf.NewBox(jumbf.NewSuperBox(desc, jumbf.NewBox(jumbf.NewRawBox(t.Data)))), nil
}

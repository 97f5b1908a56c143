package manifest

import (
	"fmt"
	"strings"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// Assertion labels (§4.3).
const (
	LabelDataHash  = "c2pa.hash.data"
	LabelBMFFHash  = "c2pa.hash.bmff"
	LabelIngredient = "c2pa.ingredient"
	LabelActions    = "c2pa.actions"
	LabelThumbnail  = "c2pa.thumbnail.claim"
)

// Assertion is implemented by every assertion variant (§3 "Assertion",
// §4.3). ReadFromJUMBF/GenerateJUMBFBox form the round-tripping pair the
// spec requires: their composition must recover both the decoded fields
// and, when nothing changed, the original bytes.
type Assertion interface {
	Label() string
	ReadFromJUMBF(box *jumbf.Box, claim *Claim) error
	GenerateJUMBFBox(claim *Claim) (*jumbf.Box, error)
}

// assertionDecoder builds a zero-value Assertion of one variant so
// decodeAssertion can call ReadFromJUMBF on it.
type assertionDecoder func() Assertion

// assertionRegistry is the closed tagged-variant dispatch table for
// assertion labels, mirroring pkg/jumbf's schema registry (design note
// "Runtime polymorphism over box/assertion types": "assertion types form
// a parallel tagged variant").
var assertionRegistry = map[string]assertionDecoder{
	LabelDataHash:   func() Assertion { return &DataHashAssertion{} },
	LabelBMFFHash:   func() Assertion { return &BMFFHashAssertion{} },
	LabelIngredient: func() Assertion { return &IngredientAssertion{} },
	LabelActions:    func() Assertion { return &ActionsAssertion{} },
	LabelThumbnail:  func() Assertion { return &ThumbnailAssertion{} },
}

// UnknownAssertion preserves an assertion super-box whose label has no
// registered variant, carrying it verbatim the same way jumbf.FallbackBox
// preserves unrecognized box types.
type UnknownAssertion struct {
	label string
	box   *jumbf.Box
}

var _ Assertion = (*UnknownAssertion)(nil)

func (u *UnknownAssertion) Label() string { return u.label }

func (u *UnknownAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	u.box = box
	return nil
}

func (u *UnknownAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	return u.box, nil
}

// decodeAssertion dispatches box (an assertion super-box) to its
// registered variant by label, falling back to UnknownAssertion.
func decodeAssertion(box *jumbf.Box, claim *Claim) (Assertion, error) {
	sb, ok := box.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: assertion box is not a super-box", c2paerrors.ErrMalformedBox)
	}
	label := sb.Label()
	if label == "" {
		return nil, fmt.Errorf("%w: assertion super-box has no label", c2paerrors.ErrMalformedBox)
	}

	newAssertion, ok := assertionRegistry[label]
	if !ok && strings.HasPrefix(label, LabelThumbnail+".") {
		newAssertion, ok = func() Assertion { return &ThumbnailAssertion{} }, true
	}
	if !ok {
		return &UnknownAssertion{label: label, box: box}, nil
	}
	a := newAssertion()
	if err := a.ReadFromJUMBF(box, claim); err != nil {
		return nil, fmt.Errorf("manifest: decoding %q assertion: %w", label, err)
	}
	return a, nil
}

// assertionSuperBox wraps a single content box in the standard assertion
// super-box shape: a description carrying uuidAssertion and label, plus
// content.
func assertionSuperBox(label string, content jumbf.Content) *jumbf.Box {
	desc := &jumbf.DescriptionBox{UUID: uuidAssertion, Label: &label}
	return jumbf.NewBox(jumbf.NewSuperBox(desc, jumbf.NewBox(content)))
}

// singleContentChild extracts the sole content child of an assertion
// super-box, the shape every variant in this package uses.
func singleContentChild(box *jumbf.Box) (*jumbf.Box, error) {
	sb, ok := box.Content.(*jumbf.SuperBox)
	if !ok {
		return nil, fmt.Errorf("%w: assertion box is not a super-box", c2paerrors.ErrMalformedBox)
	}
	if len(sb.Children) != 1 {
		return nil, fmt.Errorf("%w: assertion %q must have exactly one content child, got %d", c2paerrors.ErrMalformedBox, sb.Label(), len(sb.Children))
	}
	return sb.Children[0], nil
}

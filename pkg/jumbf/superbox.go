package jumbf

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/binutil"
	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
)

// SuperBox is a recursive container: a mandatory DescriptionBox followed
// by zero or more typed content boxes (§3). Its EncodePayload/decode pair
// enforces invariant (i): sum(child_lengths) + header == parent.length.
type SuperBox struct {
	Description *Box   // always TypeDescription
	Children    []*Box // zero or more, in order
}

var _ Content = (*SuperBox)(nil)

// TypeTag implements Content.
func (s *SuperBox) TypeTag() string { return TypeSuperBox }

// Label returns the super-box's label, or "" if its description carries
// none.
func (s *SuperBox) Label() string {
	desc, ok := s.Description.Content.(*DescriptionBox)
	if !ok || desc.Label == nil {
		return ""
	}
	return *desc.Label
}

// ChildByLabel returns the first direct child whose own description
// label matches, per invariant (iii): a label uniquely identifies a
// super-box within its parent.
func (s *SuperBox) ChildByLabel(label string) (*Box, bool) {
	for _, c := range s.Children {
		if sb, ok := c.Content.(*SuperBox); ok && sb.Label() == label {
			return c, true
		}
	}
	return nil, false
}

// EncodePayload implements Content: [description][child]...[child],
// each as a fully-framed Box.
func (s *SuperBox) EncodePayload() ([]byte, error) {
	descBytes, err := s.Description.Marshal()
	if err != nil {
		return nil, fmt.Errorf("superbox description: %w", err)
	}

	w := binutil.NewWriter(len(descBytes))
	w.WriteBytes(descBytes)

	for i, child := range s.Children {
		childBytes, err := child.Marshal()
		if err != nil {
			return nil, fmt.Errorf("superbox child %d (%s): %w", i, child.Type, err)
		}
		w.WriteBytes(childBytes)
	}

	return w.Bytes(), nil
}

// decodeSuperBox reads the description box followed by children until
// payload is exhausted. A short trailing remainder or an oversized child
// declaration is a fatal parse error (invariant (i)).
func decodeSuperBox(payload []byte) (Content, error) {
	r := binutil.NewReader(payload)

	if r.Len() == 0 {
		return nil, fmt.Errorf("%w: super-box has no description box", c2paerrors.ErrMalformedBox)
	}

	desc, err := ReadBox(r, r.Len())
	if err != nil {
		return nil, fmt.Errorf("superbox description: %w", err)
	}
	if desc.Type != TypeDescription {
		return nil, fmt.Errorf("%w: super-box's first child must be %q, got %q", c2paerrors.ErrMalformedBox, TypeDescription, desc.Type)
	}

	var children []*Box
	for r.Len() > 0 {
		child, err := ReadBox(r, r.Len())
		if err != nil {
			return nil, fmt.Errorf("superbox child: %w", err)
		}
		children = append(children, child)
	}

	return &SuperBox{Description: desc, Children: children}, nil
}

func init() {
	register(TypeSuperBox, decodeSuperBox)
}

// NewSuperBox builds a fresh, synthesized SuperBox from a description and
// children, ready to be wrapped in NewBox and Marshal-ed.
func NewSuperBox(description *DescriptionBox, children ...*Box) *SuperBox {
	return &SuperBox{
		Description: NewBox(description),
		Children:    children,
	}
}

package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// Action is one entry in an ActionsAssertion: a named editing or
// capture operation plus when it happened and the software agent that
// performed it.
type Action struct {
	Action     string `cbor:"action"`
	When       string `cbor:"when,omitempty"`
	SoftwareAgent string `cbor:"softwareAgent,omitempty"`
}

// ActionsAssertion records the sequence of edits/operations applied to
// produce the asset (§4.3 "assertion variants").
type ActionsAssertion struct {
	Actions []Action
}

var _ Assertion = (*ActionsAssertion)(nil)

func (a *ActionsAssertion) Label() string { return LabelActions }

type actionsWire struct {
	Actions []Action `cbor:"actions"`
}

func (a *ActionsAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	child, err := singleContentChild(box)
	if err != nil {
		return err
	}
	cborBox, ok := child.Content.(*jumbf.CBORBox)
	if !ok {
		return fmt.Errorf("%w: actions assertion content must be CBOR", c2paerrors.ErrMalformedBox)
	}
	encoded, err := c2pacbor.Marshal(cborBox.Content)
	if err != nil {
		return fmt.Errorf("manifest: re-encoding actions content: %w", err)
	}
	var wire actionsWire
	if err := c2pacbor.Unmarshal(encoded, &wire); err != nil {
		return fmt.Errorf("%w: malformed actions assertion: %v", c2paerrors.ErrMalformedBox, err)
	}
	a.Actions = wire.Actions
	return nil
}

func (a *ActionsAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	wire := actionsWire{Actions: a.Actions}
	encoded, err := c2pacbor.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding actions content: %w", err)
	}
	var v interface{}
	if err := c2pacbor.Unmarshal(encoded, &v); err != nil {
		return nil, fmt.Errorf("manifest: re-decoding actions content: %w", err)
	}
	return assertionSuperBox(LabelActions, jumbf.NewCBORBox(v)), nil
}

package manifest

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/c2paerrors"
	"github.com/trustnxt/c2pa-go/pkg/c2pacbor"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

// IngredientAssertion carries a hashed-URI to another manifest plus that
// manifest's claim-signature reference (§3 "Cyclic references", §4.3
// "IngredientAssertion"). The manifest store resolves ManifestRef against
// its own index-addressed table rather than holding an owning pointer,
// so a chain of ingredients never forms an actual reference cycle.
type IngredientAssertion struct {
	Title              string
	Format             string
	InstanceID         string
	ManifestRef        *jumbf.HashedURI
	ClaimSignatureRef  *jumbf.HashedURI
}

var _ Assertion = (*IngredientAssertion)(nil)

func (i *IngredientAssertion) Label() string { return LabelIngredient }

type ingredientWire struct {
	Title             string           `cbor:"title,omitempty"`
	Format            string           `cbor:"format,omitempty"`
	InstanceID        string           `cbor:"instanceID,omitempty"`
	C2PAManifest      *jumbf.HashedURI `cbor:"c2pa_manifest,omitempty"`
	ClaimSignature    *jumbf.HashedURI `cbor:"c2pa.claim_signature,omitempty"`
}

func (i *IngredientAssertion) ReadFromJUMBF(box *jumbf.Box, _ *Claim) error {
	child, err := singleContentChild(box)
	if err != nil {
		return err
	}
	cborBox, ok := child.Content.(*jumbf.CBORBox)
	if !ok {
		return fmt.Errorf("%w: ingredient assertion content must be CBOR", c2paerrors.ErrMalformedBox)
	}
	encoded, err := c2pacbor.Marshal(cborBox.Content)
	if err != nil {
		return fmt.Errorf("manifest: re-encoding ingredient content: %w", err)
	}
	var wire ingredientWire
	if err := c2pacbor.Unmarshal(encoded, &wire); err != nil {
		return fmt.Errorf("%w: malformed ingredient assertion: %v", c2paerrors.ErrMalformedBox, err)
	}
	i.Title = wire.Title
	i.Format = wire.Format
	i.InstanceID = wire.InstanceID
	i.ManifestRef = wire.C2PAManifest
	i.ClaimSignatureRef = wire.ClaimSignature
	return nil
}

func (i *IngredientAssertion) GenerateJUMBFBox(_ *Claim) (*jumbf.Box, error) {
	wire := ingredientWire{
		Title:          i.Title,
		Format:         i.Format,
		InstanceID:     i.InstanceID,
		C2PAManifest:   i.ManifestRef,
		ClaimSignature: i.ClaimSignatureRef,
	}
	encoded, err := c2pacbor.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("manifest: encoding ingredient content: %w", err)
	}
	var v interface{}
	if err := c2pacbor.Unmarshal(encoded, &v); err != nil {
		return nil, fmt.Errorf("manifest: re-decoding ingredient content: %w", err)
	}
	return assertionSuperBox(LabelIngredient, jumbf.NewCBORBox(v)), nil
}

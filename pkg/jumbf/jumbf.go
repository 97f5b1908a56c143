package jumbf

import (
	"fmt"

	"github.com/trustnxt/c2pa-go/pkg/binutil"
)

// Parse reads a single top-level box (typically a SuperBox holding the
// entire manifest store) from buf.
func Parse(buf []byte) (*Box, error) {
	r := binutil.NewReader(buf)
	box, err := ReadBox(r, r.Len())
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("jumbf: %d trailing bytes after top-level box", r.Len())
	}
	return box, nil
}

// Serialize returns the full byte image of box, replaying its original
// bytes when unmodified (invariant (ii), §8 property 1).
func Serialize(box *Box) ([]byte, error) {
	return box.Marshal()
}

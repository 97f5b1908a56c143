package jumbf

import "github.com/trustnxt/c2pa-go/pkg/c2pacbor"

// HashedURI is a reference to another JUMBF box plus a digest over its
// bytes (Glossary: "Hashed-URI"). Claims reference their assertions this
// way; ingredient assertions reference other manifests this way.
type HashedURI struct {
	URL  string `cbor:"url"`
	Alg  string `cbor:"alg,omitempty"`
	Hash []byte `cbor:"hash"`
}

// HashedURIBox is the "c2sh" content box: an ordered table of hashed-URI
// references, used where an ingredient needs to carry more than one
// (e.g. a manifest plus its claim signature) in a single box.
type HashedURIBox struct {
	Entries []HashedURI
}

var _ Content = (*HashedURIBox)(nil)

// TypeTag implements Content.
func (b *HashedURIBox) TypeTag() string { return TypeHashedURI }

// EncodePayload implements Content.
func (b *HashedURIBox) EncodePayload() ([]byte, error) {
	return c2pacbor.Marshal(b.Entries)
}

func decodeHashedURITable(payload []byte) (Content, error) {
	var entries []HashedURI
	if err := c2pacbor.Unmarshal(payload, &entries); err != nil {
		return nil, err
	}
	return &HashedURIBox{Entries: entries}, nil
}

func init() {
	register(TypeHashedURI, decodeHashedURITable)
}

// NewHashedURIBox wraps a hashed-URI table for serialization.
func NewHashedURIBox(entries ...HashedURI) *HashedURIBox {
	return &HashedURIBox{Entries: entries}
}

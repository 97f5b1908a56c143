package jumbf

import "fmt"

// decoder parses a box's raw payload bytes into a Content value. Every
// known box type registers one in init(); decodePayload falls back to
// FallbackBox for anything unregistered (§4.1, "a fallback schema is
// used for unknown types and preserves the full payload as opaque
// bytes").
type decoder func(payload []byte) (Content, error)

// registry is the compile-time schema dispatch table (design note
// "Runtime polymorphism over box/assertion types" — a closed map rather
// than a class hierarchy with virtual dispatch). It is populated once by
// package init functions and never mutated afterwards.
var registry = map[string]decoder{}

func register(boxType string, d decoder) {
	if _, exists := registry[boxType]; exists {
		panic(fmt.Sprintf("jumbf: duplicate schema registration for %q", boxType))
	}
	registry[boxType] = d
}

func decodePayload(boxType string, payload []byte) (Content, error) {
	if d, ok := registry[boxType]; ok {
		return d(payload)
	}
	return decodeFallback(boxType, payload)
}

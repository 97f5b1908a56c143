package cryptoprovider

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
)

// S6 — streaming vs. buffered digest equivalence.
func TestStreamingVsBufferedDigest(t *testing.T) {
	buf := make([]byte, 1048576+500)
	for i := range buf {
		buf[i] = byte(i % 256)
	}

	p := New()

	want, err := p.Digest(buf, HashSHA256)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}

	chunkSizes := []int{1, 7, 4096, 65536, len(buf)}
	for _, chunk := range chunkSizes {
		ctx, err := p.StreamingDigest(HashSHA256)
		if err != nil {
			t.Fatalf("StreamingDigest: %v", err)
		}
		for off := 0; off < len(buf); off += chunk {
			end := off + chunk
			if end > len(buf) {
				end = len(buf)
			}
			ctx.Update(buf[off:end])
		}
		got := ctx.Final()
		if !bytes.Equal(got, want) {
			t.Fatalf("chunk size %d: streaming digest mismatch: got %x want %x", chunk, got, want)
		}
	}
}

func TestECDSASignVerifyRoundTrip(t *testing.T) {
	for alg, curve := range map[SignAlg]elliptic.Curve{
		AlgorithmES256: elliptic.P256(),
		AlgorithmES384: elliptic.P384(),
		AlgorithmES512: elliptic.P521(),
	} {
		key, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			t.Fatalf("%s: GenerateKey: %v", alg, err)
		}
		p := New()
		msg := []byte("c2pa claim bytes")

		sig, err := p.Sign(msg, key, alg)
		if err != nil {
			t.Fatalf("%s: Sign: %v", alg, err)
		}

		ok, err := p.Verify(msg, sig, &key.PublicKey, alg)
		if err != nil {
			t.Fatalf("%s: Verify: %v", alg, err)
		}
		if !ok {
			t.Fatalf("%s: signature did not verify", alg)
		}

		// Tampering must be detected.
		tampered := append([]byte(nil), msg...)
		tampered[0] ^= 0xFF
		ok, err = p.Verify(tampered, sig, &key.PublicKey, alg)
		if err != nil {
			t.Fatalf("%s: Verify(tampered): %v", alg, err)
		}
		if ok {
			t.Fatalf("%s: tampered message unexpectedly verified", alg)
		}
	}
}

func TestOIDRoundTrip(t *testing.T) {
	for _, alg := range []HashAlg{HashSHA256, HashSHA384, HashSHA512} {
		oid, err := OIDForHashAlg(alg)
		if err != nil {
			t.Fatalf("OIDForHashAlg(%s): %v", alg, err)
		}
		back, err := HashAlgForOID(oid)
		if err != nil {
			t.Fatalf("HashAlgForOID(%s): %v", oid, err)
		}
		if back != alg {
			t.Fatalf("round trip mismatch: %s -> %s -> %s", alg, oid, back)
		}
	}
}

package manifest

import (
	"bytes"
	"testing"

	"github.com/trustnxt/c2pa-go/pkg/cryptoprovider"
	"github.com/trustnxt/c2pa-go/pkg/jumbf"
)

func TestClaimEncodeDecodeRoundTrip(t *testing.T) {
	claim := &Claim{
		Dialect:        DialectV1,
		ClaimGenerator: "c2pa-go/0.1",
		SignatureRef:   "self#jumbf=c2pa.signature",
		Assertions: []jumbf.HashedURI{
			{URL: "self#jumbf=c2pa.assertions/c2pa.hash.data", Alg: "sha256", Hash: bytes.Repeat([]byte{0xAB}, 32)},
		},
		HashAlgorithm: cryptoprovider.HashSHA256,
		InstanceID:    "xmp:iid:11111111-1111-1111-1111-111111111111",
		Format:        "image/jpeg",
	}

	box, err := claim.ToJUMBFSuperBox()
	if err != nil {
		t.Fatalf("ToJUMBFSuperBox: %v", err)
	}

	decoded, err := claimFromSuperBox(box)
	if err != nil {
		t.Fatalf("claimFromSuperBox: %v", err)
	}

	if decoded.ClaimGenerator != claim.ClaimGenerator {
		t.Errorf("claim generator mismatch: got %q", decoded.ClaimGenerator)
	}
	if decoded.Dialect != claim.Dialect {
		t.Errorf("dialect mismatch: got %q", decoded.Dialect)
	}
	if decoded.HashAlgorithm != claim.HashAlgorithm {
		t.Errorf("hash algorithm mismatch: got %v", decoded.HashAlgorithm)
	}
	if len(decoded.Assertions) != 1 || decoded.Assertions[0].URL != claim.Assertions[0].URL {
		t.Errorf("assertions mismatch: got %+v", decoded.Assertions)
	}
	if !bytes.Equal(decoded.Assertions[0].Hash, claim.Assertions[0].Hash) {
		t.Error("assertion hash mismatch")
	}
}

func TestClaimRoundTripIsByteExactWhenUntouched(t *testing.T) {
	claim := &Claim{
		Dialect:        DialectV2,
		ClaimGenerator: "c2pa-go/0.1",
		HashAlgorithm:  cryptoprovider.HashSHA256,
		InstanceID:     "xmp:iid:22222222-2222-2222-2222-222222222222",
	}

	box, err := claim.ToJUMBFSuperBox()
	if err != nil {
		t.Fatalf("ToJUMBFSuperBox: %v", err)
	}
	encoded, err := box.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reparsed, err := jumbf.Parse(encoded)
	if err != nil {
		t.Fatalf("jumbf.Parse: %v", err)
	}
	reencoded, err := reparsed.Marshal()
	if err != nil {
		t.Fatalf("re-Marshal: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Error("claim box did not round-trip byte-exactly")
	}
}

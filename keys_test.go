package sigv4

import "testing"

func TestDeriveScope(t *testing.T) {
	signing := Derive("20190901", "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY", "us-east-1", "s3")
	const want = "20190901/us-east-1/s3/aws4_request"
	if signing.Scope != want {
		t.Fatalf("Scope = %q, want %q", signing.Scope, want)
	}
	if len(signing.Key) != 32 {
		t.Fatalf("Key length = %d, want 32", len(signing.Key))
	}
}

func TestDeriveDateStampTruncation(t *testing.T) {
	byDate := Derive("20190901", "secret", "us-east-1", "s3")
	byTimestamp := Derive("20190901T084743Z", "secret", "us-east-1", "s3")
	if byDate.Scope != byTimestamp.Scope {
		t.Fatalf("Scope differs: %q vs %q", byDate.Scope, byTimestamp.Scope)
	}
}

// TestSignChunkDeterministic checks invariant 5 from spec.md §8: a chunk
// signature is a pure function of (lastSigHex, headersDigestHex,
// payloadDigestHex, timestamp, signing), and changing any one of those
// inputs changes the output.
func TestSignChunkDeterministic(t *testing.T) {
	signing := Derive("20130524", "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY", "us-east-1", "s3")
	base := SignChunkDefault("a", EmptyStringSHA256, EmptyStringSHA256, "20130524T000000Z", signing)

	again := SignChunkDefault("a", EmptyStringSHA256, EmptyStringSHA256, "20130524T000000Z", signing)
	if base != again {
		t.Fatalf("SignChunkDefault is not deterministic: %q vs %q", base, again)
	}

	if other := SignChunkDefault("b", EmptyStringSHA256, EmptyStringSHA256, "20130524T000000Z", signing); other == base {
		t.Fatalf("changing lastSigHex did not change the signature")
	}
	if other := SignChunkDefault("a", HashHex([]byte("x")), EmptyStringSHA256, "20130524T000000Z", signing); other == base {
		t.Fatalf("changing headersDigestHex did not change the signature")
	}
	if other := SignChunkDefault("a", EmptyStringSHA256, HashHex([]byte("x")), "20130524T000000Z", signing); other == base {
		t.Fatalf("changing payloadDigestHex did not change the signature")
	}
}

func TestHashHexEmptyString(t *testing.T) {
	if got := HashHex(nil); got != EmptyStringSHA256 {
		t.Fatalf("HashHex(nil) = %q, want %q", got, EmptyStringSHA256)
	}
	if got := HashHex([]byte{}); got != EmptyStringSHA256 {
		t.Fatalf("HashHex([]byte{}) = %q, want %q", got, EmptyStringSHA256)
	}
}

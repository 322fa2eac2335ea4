package canon

import "testing"

const emptyStringSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestBodyHashEmptyBody(t *testing.T) {
	if got := BodyHash(nil, ""); got != emptyStringSHA256 {
		t.Fatalf("BodyHash(nil, \"\") = %q, want %q", got, emptyStringSHA256)
	}
}

func TestBodyHashPrecomputedTakesPrecedence(t *testing.T) {
	const precomputed = "deadbeef"
	if got := BodyHash([]byte("ignored"), precomputed); got != precomputed {
		t.Fatalf("BodyHash = %q, want the precomputed hash %q", got, precomputed)
	}
}

func TestBodyHashComputesSHA256(t *testing.T) {
	got := BodyHash([]byte("abc"), "")
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("BodyHash(\"abc\") = %q, want %q", got, want)
	}
}

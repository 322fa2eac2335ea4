package sigv4

import (
	"strings"
	"testing"
	"time"
)

var genericTimestamp = time.Date(2019, 9, 1, 8, 47, 43, 0, time.UTC)

func TestSignRequestHeaderModeInfersServiceAndRegionFromHost(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}

	params, err := SignRequest(creds, req, SignOptions{Set: true, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	auth := params["authorization"]
	if !strings.Contains(auth, "/20190901/us-west-2/dynamodb/aws4_request") {
		t.Fatalf("authorization scope wrong: %q", auth)
	}
	if _, _, ok := req.Headers.Get("authorization"); !ok {
		t.Fatalf("expected Set=true to write the Authorization header")
	}
}

func TestSignRequestRejectsMissingHostAndService(t *testing.T) {
	req := NewSignedRequest("GET", ParsedURL("", "/", ""))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}
	if _, err := SignRequest(creds, req, SignOptions{Timestamp: genericTimestamp}); err == nil {
		t.Fatalf("expected an error when the request has no host and credentials have no service")
	}
}

func TestSignRequestSetFalseDoesNotMutateRequest(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}

	_, err := SignRequest(creds, req, SignOptions{Set: false, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	if _, _, ok := req.Headers.Get("authorization"); ok {
		t.Fatalf("Set=false must leave req.Headers untouched")
	}
}

func TestSignRequestGeneratesXAmzDateWhenAbsent(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}

	params, err := SignRequest(creds, req, SignOptions{Set: true, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	if params["x-amz-date"] != FormatTimestamp(genericTimestamp) {
		t.Fatalf("x-amz-date = %q", params["x-amz-date"])
	}
	if _, v, ok := req.Headers.Get("x-amz-date"); !ok || v != FormatTimestamp(genericTimestamp) {
		t.Fatalf("req.Headers[x-amz-date] = (%q, %v)", v, ok)
	}
}

func TestSignRequestHonorsExistingXAmzDateHeader(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	mustSet(t, req.Headers, "X-Amz-Date", "20190101T000000Z")
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}

	params, err := SignRequest(creds, req, SignOptions{Set: true, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	if _, generated := params["x-amz-date"]; generated {
		t.Fatalf("an explicit X-Amz-Date header should not be reported as generated")
	}
	if !strings.Contains(params["authorization"], "/20190101/") {
		t.Fatalf("authorization should use the explicit header's date: %q", params["authorization"])
	}
}

func TestSignRequestRejectsMalformedXAmzDateHeader(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	mustSet(t, req.Headers, "X-Amz-Date", "not-a-timestamp")
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}
	if _, err := SignRequest(creds, req, SignOptions{Timestamp: genericTimestamp}); err == nil {
		t.Fatalf("expected an error for a malformed X-Amz-Date header")
	}
}

func TestSignRequestQueryModeProducesPresignedParameters(t *testing.T) {
	req := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/"))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}

	params, err := SignRequest(creds, req, SignOptions{Query: true, Set: true, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	if params["x-amz-algorithm"] != Algorithm {
		t.Fatalf("x-amz-algorithm = %q", params["x-amz-algorithm"])
	}
	if params["x-amz-date"] != FormatTimestamp(genericTimestamp) {
		t.Fatalf("x-amz-date = %q", params["x-amz-date"])
	}
	if params["x-amz-signature"] == "" {
		t.Fatalf("expected a non-empty x-amz-signature")
	}
	_, _, rawQuery, err := req.URL.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(rawQuery, "X-Amz-Signature=") {
		t.Fatalf("query string should carry the signature when Set=true: %q", rawQuery)
	}
}

func TestSignRequestUsesDerivationCache(t *testing.T) {
	req1 := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/a"))
	req2 := NewSignedRequest("GET", RawURL("https://dynamodb.us-west-2.amazonaws.com/b"))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret"}
	cache := NewDerivationCache()

	if _, err := SignRequest(creds, req1, SignOptions{Cache: cache, Timestamp: genericTimestamp}); err != nil {
		t.Fatalf("SignRequest(req1): %v", err)
	}
	if _, err := SignRequest(creds, req2, SignOptions{Cache: cache, Timestamp: genericTimestamp}); err != nil {
		t.Fatalf("SignRequest(req2): %v", err)
	}
	if !cache.valid {
		t.Fatalf("expected the cache to hold a valid derivation after two same-scope signs")
	}
}

func TestSignRequestExplicitCredentialsSkipHostInference(t *testing.T) {
	req := NewSignedRequest("GET", ParsedURL("", "/", ""))
	creds := Credentials{AccessKey: "AK", SecretKey: "secret", Service: "s3", Region: "us-east-1"}
	params, err := SignRequest(creds, req, SignOptions{Set: true, Timestamp: genericTimestamp})
	if err != nil {
		t.Fatalf("SignRequest: %v", err)
	}
	if !strings.Contains(params["authorization"], "/us-east-1/s3/aws4_request") {
		t.Fatalf("authorization scope wrong: %q", params["authorization"])
	}
	if _, _, ok := req.Headers.Get("host"); !ok {
		t.Fatalf("expected a synthesized Host header")
	}
}

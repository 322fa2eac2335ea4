package sigv4

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// Algorithm is the SigV4 algorithm literal used in header and query
	// signing and in the string to sign.
	Algorithm = "AWS4-HMAC-SHA256"
	// ChunkAlgorithm is the algorithm literal used for S3 chunked payload
	// and event-stream chained signatures.
	ChunkAlgorithm = "AWS4-HMAC-SHA256-PAYLOAD"
	// Termination is the fixed final component of the credential scope.
	Termination = "aws4_request"
	// EmptyStringSHA256 is the hex SHA-256 digest of the empty string,
	// used as the body hash of requests with no payload and as the
	// chunk hash for the terminal S3 chunk.
	EmptyStringSHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// Credentials identifies the signer. Region and Service are optional: many
// signing paths infer them from the request's host or from service
// defaults when absent.
type Credentials struct {
	AccessKey string
	SecretKey string
	Region    string
	Service   string
}

// SigningData is the pair of derived signing key and credential scope
// produced by Derive. Two SigningData values with equal Scope always have
// equal Key.
type SigningData struct {
	Key   []byte
	Scope string
}

// Derive computes the SigV4 signing key chain:
//
//	K0 = "AWS4" || secretKey
//	K1 = HMAC(K0, date8)
//	K2 = HMAC(K1, region)
//	K3 = HMAC(K2, service)
//	K  = HMAC(K3, "aws4_request")
//
// dateStamp is truncated to its first 8 characters, so a full
// YYYYMMDDTHHMMSSZ timestamp is also an acceptable argument.
func Derive(dateStamp, secretKey, region, service string) SigningData {
	date8 := DateStamp(dateStamp)
	kDate := hmacSHA256([]byte("AWS4"+secretKey), []byte(date8))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	kSigning := hmacSHA256(kService, []byte(Termination))

	scope := strings.Join([]string{date8, region, service, Termination}, "/")
	return SigningData{Key: kSigning, Scope: scope}
}

// SignString returns the raw HMAC-SHA256 MAC of data under key.
func SignString(key, data []byte) []byte {
	return hmacSHA256(key, data)
}

// SignDigest signs a precomputed hex payload digest using the given
// algorithm literal (typically Algorithm). It returns the hex-encoded
// signature over:
//
//	algorithm \n timestamp \n scope \n payloadDigestHex
func SignDigest(payloadDigestHex, timestamp string, signing SigningData, algorithm string) string {
	stringToSign := strings.Join([]string{
		algorithm,
		timestamp,
		signing.Scope,
		payloadDigestHex,
	}, "\n")
	return hex.EncodeToString(hmacSHA256(signing.Key, []byte(stringToSign)))
}

// SignDigestDefault is SignDigest with algorithm defaulted to Algorithm.
func SignDigestDefault(payloadDigestHex, timestamp string, signing SigningData) string {
	return SignDigest(payloadDigestHex, timestamp, signing, Algorithm)
}

// SignChunk produces a chained chunk/event signature. It is SignDigest
// over lastSigHex \n headersDigestHex \n payloadDigestHex, using the given
// algorithm literal (typically ChunkAlgorithm).
func SignChunk(lastSigHex, headersDigestHex, payloadDigestHex, timestamp string, signing SigningData, algorithm string) string {
	payload := strings.Join([]string{lastSigHex, headersDigestHex, payloadDigestHex}, "\n")
	return SignDigest(payload, timestamp, signing, algorithm)
}

// SignChunkDefault is SignChunk with algorithm defaulted to ChunkAlgorithm.
func SignChunkDefault(lastSigHex, headersDigestHex, payloadDigestHex, timestamp string, signing SigningData) string {
	return SignChunk(lastSigHex, headersDigestHex, payloadDigestHex, timestamp, signing, ChunkAlgorithm)
}

// HashHex returns the hex SHA-256 digest of data.
func HashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

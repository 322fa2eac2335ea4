package sigv4

import (
	"fmt"
	"strings"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

// BuildAuthorizationHeader renders the Authorization header value per
// spec.md §4.4 step 6.
func BuildAuthorizationHeader(accessKey, scope, signedHeaders, signature string) string {
	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		Algorithm, accessKey, scope, signedHeaders, signature)
}

// AuthParams is the result of parsing an Authorization header.
type AuthParams struct {
	Algorithm     string
	AccessKey     string
	Scope         string
	SignedHeaders string
	Signature     string
}

// ParseAuthorization leniently parses an Authorization header per
// spec.md §4.4: splits on the first space, then comma-separated
// Key=Value fields (tolerating surrounding whitespace, last write wins on
// duplicates). All of Signature/SignedHeaders/Credential are required,
// and Signature must be even-length lowercase hex.
func ParseAuthorization(header string) (AuthParams, error) {
	algorithm, rest, ok := strings.Cut(header, " ")
	if !ok {
		return AuthParams{}, sigerr.New(sigerr.InvalidInput, "authorization header has no algorithm/parameters split")
	}

	values := make(map[string]string)
	for _, field := range strings.Split(rest, ",") {
		field = strings.TrimSpace(field)
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}

	credential, ok := values["Credential"]
	if !ok {
		return AuthParams{}, sigerr.New(sigerr.InvalidInput, "authorization header missing Credential")
	}
	signedHeaders, ok := values["SignedHeaders"]
	if !ok {
		return AuthParams{}, sigerr.New(sigerr.InvalidInput, "authorization header missing SignedHeaders")
	}
	signature, ok := values["Signature"]
	if !ok {
		return AuthParams{}, sigerr.New(sigerr.InvalidInput, "authorization header missing Signature")
	}
	if err := validateHexSignature(signature); err != nil {
		return AuthParams{}, err
	}

	accessKey, scope, ok := strings.Cut(credential, "/")
	if !ok {
		return AuthParams{}, sigerr.New(sigerr.InvalidInput, "malformed credential %q", credential)
	}

	return AuthParams{
		Algorithm:     algorithm,
		AccessKey:     accessKey,
		Scope:         scope,
		SignedHeaders: signedHeaders,
		Signature:     signature,
	}, nil
}

func validateHexSignature(sig string) error {
	if sig == "" || len(sig)%2 != 0 {
		return sigerr.New(sigerr.InvalidInput, "signature %q must be non-empty, even-length hex", sig)
	}
	for _, c := range sig {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return sigerr.New(sigerr.InvalidInput, "signature %q is not lowercase hex", sig)
		}
	}
	return nil
}

package s3sign

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/ethanadams/sigv4"
)

// SignPolicy implements the S3 POST-policy signer (C7): a pure function of
// credentials, an arbitrary policy document, and an optional timestamp. It
// augments policy's "conditions" array with the three SigV4 fields,
// JSON-serializes the result, base64-encodes that JSON, and HMACs the
// base64 string with the derived signing key.
//
// policy is expected to already contain at least an "expiration" field and
// a "conditions" array ([]any); both survive untouched apart from the
// appended conditions. ts zero means now.
func SignPolicy(creds sigv4.Credentials, policy map[string]any, ts time.Time) (map[string]string, error) {
	if ts.IsZero() {
		ts = time.Now()
	}
	timestamp := sigv4.FormatTimestamp(ts)
	signing := sigv4.Derive(sigv4.DateStamp(timestamp), creds.SecretKey, creds.Region, creds.Service)
	credential := creds.AccessKey + "/" + signing.Scope

	conditions, _ := policy["conditions"].([]any)
	augmented := make(map[string]any, len(policy))
	for k, v := range policy {
		augmented[k] = v
	}
	augmented["conditions"] = append(append([]any{}, conditions...),
		map[string]string{"x-amz-date": timestamp},
		map[string]string{"x-amz-algorithm": sigv4.Algorithm},
		map[string]string{"x-amz-credential": credential},
	)

	encoded, err := json.Marshal(augmented)
	if err != nil {
		return nil, err
	}
	policyB64 := base64.StdEncoding.EncodeToString(encoded)
	signature := hex.EncodeToString(sigv4.SignString(signing.Key, []byte(policyB64)))

	return map[string]string{
		"policy":           policyB64,
		"x-amz-date":       timestamp,
		"x-amz-algorithm":  sigv4.Algorithm,
		"x-amz-credential": credential,
		"x-amz-signature":  signature,
	}, nil
}

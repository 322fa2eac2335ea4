package sigv4

import (
	"time"

	"github.com/ethanadams/sigv4/internal/canon"
	"github.com/ethanadams/sigv4/internal/endpoint"
	"github.com/ethanadams/sigv4/internal/sigerr"
	"github.com/ethanadams/sigv4/internal/slog4"
)

const defaultRegion = "us-east-1"

// UnsignedPayload is the sentinel body hash used for query-form
// presigning and for S3's unsigned-payload mode.
const UnsignedPayload = "UNSIGNED-PAYLOAD"

// SignOptions configures a single SignRequest call.
type SignOptions struct {
	// Query selects presigned-URL (query-string) signing instead of
	// header signing.
	Query bool
	// Set mutates req in place with the computed authentication
	// parameters. When false, req is left untouched and the parameters
	// are only returned to the caller.
	Set bool
	// SetContentHash emits an x-amz-content-sha256 header in header
	// mode (always implied for S3 by sigv4/s3sign).
	SetContentHash bool
	// Timestamp pins the signing time; the zero value means "now".
	Timestamp time.Time
	// Cache, if non-nil, is used for key derivation instead of deriving
	// fresh each call. Not internally synchronized; see DerivationCache.
	Cache *DerivationCache
	// EndpointResolver resolves host<->(service,region); defaults to
	// endpoint.Default().
	EndpointResolver endpoint.Resolver
	// URIOptions controls URI canonicalization quirks; the zero value
	// is the generic (non-S3) default: normalize and double-encode.
	URIOptions canon.URIOptions
	// Logger receives optional diagnostic tracing; nil discards it.
	Logger *slog4.Logger
}

func (o SignOptions) resolver() endpoint.Resolver {
	if o.EndpointResolver != nil {
		return o.EndpointResolver
	}
	return endpoint.Default()
}

func (o SignOptions) derive(dateStamp, secretKey, region, service string) SigningData {
	if o.Cache != nil {
		return o.Cache.Derive(dateStamp, secretKey, region, service)
	}
	return Derive(dateStamp, secretKey, region, service)
}

// SignRequest is the C4 entry point: it signs req for creds under opts and
// returns the authentication parameters produced (e.g. "authorization",
// or the X-Amz-* query parameters, plus "x-amz-date" when generated).
// req is mutated only when opts.Set is true.
func SignRequest(creds Credentials, req *SignedRequest, opts SignOptions) (map[string]string, error) {
	host, pathname, rawQuery, err := req.URL.Resolve()
	if err != nil {
		return nil, err
	}

	resolver := opts.resolver()
	if host == "" {
		if creds.Service == "" {
			return nil, sigerr.New(sigerr.MissingConfig, "request has no host and credentials have no service")
		}
		if creds.Region == "" {
			creds.Region = defaultRegion
		}
		host = resolver.FormatHost(creds.Service, creds.Region)
	} else if creds.Service == "" || creds.Region == "" {
		svc, reg, ok := resolver.ParseHost(host)
		if !ok {
			return nil, sigerr.New(sigerr.MissingConfig, "cannot infer service/region from host %q", host)
		}
		if creds.Service == "" {
			creds.Service = svc
		}
		if creds.Region == "" {
			creds.Region = reg
		}
	}

	headers := req.Headers
	if headers == nil {
		headers = NewHeaders()
	}
	headers = headers.Clone()
	if _, _, ok := headers.Get("host"); !ok {
		if _, err := headers.Set("Host", host); err != nil {
			return nil, err
		}
	}

	params := make(map[string]string)
	method := req.EffectiveMethod()

	if opts.Query {
		timestamp, generated, err := resolveTimestamp(queryTimestamp(rawQuery), opts.Timestamp)
		if err != nil {
			return nil, err
		}
		signing := opts.derive(DateStamp(timestamp), creds.SecretKey, creds.Region, creds.Service)

		block, signedHeaders, herr := canon.Headers(headerEntries(headers))
		if herr != nil {
			return nil, herr
		}

		queryPairs := canon.ParseQueryPairs(rawQuery)
		queryPairs = append(queryPairs,
			canon.QueryPair{Name: "X-Amz-Algorithm", Value: Algorithm},
			canon.QueryPair{Name: "X-Amz-Credential", Value: creds.AccessKey + "/" + signing.Scope},
			canon.QueryPair{Name: "X-Amz-SignedHeaders", Value: signedHeaders},
		)
		if generated {
			queryPairs = append(queryPairs, canon.QueryPair{Name: "X-Amz-Date", Value: timestamp})
		}

		canonicalQuery := canon.CanonicalizeQueryPairs(queryPairs)
		canonicalURI := canon.URI(pathname, opts.URIOptions)
		canonicalRequest := joinCanonical(method, canonicalURI, canonicalQuery, block, signedHeaders, UnsignedPayload)

		signature := SignDigestDefault(HashHex([]byte(canonicalRequest)), timestamp, signing)

		opts.Logger.Debug("sigv4: query-signed %s %s scope=%s", method, host, signing.Scope)

		params["x-amz-algorithm"] = Algorithm
		params["x-amz-credential"] = creds.AccessKey + "/" + signing.Scope
		params["x-amz-signedheaders"] = signedHeaders
		if generated {
			params["x-amz-date"] = timestamp
		}
		params["x-amz-signature"] = signature

		if opts.Set {
			// The signature is lowercase hex and needs no percent-encoding.
			req.URL = req.URL.WithQuery(canonicalQuery + "&X-Amz-Signature=" + signature)
		}
		return params, nil
	}

	// Header mode.
	timestamp, generated, err := resolveHeaderTimestamp(headers, opts.Timestamp)
	if err != nil {
		return nil, err
	}
	signing := opts.derive(DateStamp(timestamp), creds.SecretKey, creds.Region, creds.Service)

	if !headers.Has("x-amz-date") {
		if _, err := headers.Set("X-Amz-Date", timestamp); err != nil {
			return nil, err
		}
	}

	bodyHashHex := canon.BodyHash(req.Body, req.BodyHashHex)
	if opts.SetContentHash {
		if _, err := headers.Set("x-amz-content-sha256", bodyHashHex); err != nil {
			return nil, err
		}
	}

	canonicalRequest, signedHeaders, err := BuildCanonicalRequest(method, pathname, rawQuery, headers, bodyHashHex, opts.URIOptions)
	if err != nil {
		return nil, err
	}

	signature := SignDigestDefault(HashHex([]byte(canonicalRequest)), timestamp, signing)
	authHeader := BuildAuthorizationHeader(creds.AccessKey, signing.Scope, signedHeaders, signature)

	opts.Logger.Debug("sigv4: header-signed %s %s scope=%s", method, host, signing.Scope)

	if generated {
		params["x-amz-date"] = timestamp
	}
	params["authorization"] = authHeader

	if opts.Set {
		req.Headers = headers
		if _, err := req.Headers.Set("Authorization", authHeader); err != nil {
			return nil, err
		}
	}

	return params, nil
}

func joinCanonical(parts ...string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += "\n" + p
	}
	return out
}

// resolveHeaderTimestamp reads and validates X-Amz-Date from headers, or
// generates one if absent; it does not modify headers.
func resolveHeaderTimestamp(headers *Headers, pinned time.Time) (timestamp string, generated bool, err error) {
	if _, v, ok := headers.Get("x-amz-date"); ok {
		if err := ValidateTimestamp(v); err != nil {
			return "", false, err
		}
		return v, false, nil
	}
	t := pinned
	if t.IsZero() {
		t = time.Now()
	}
	return FormatTimestamp(t), true, nil
}

// resolveTimestamp validates an externally-supplied timestamp (e.g. from
// a query string already containing X-Amz-Date) or generates one.
func resolveTimestamp(existing string, pinned time.Time) (timestamp string, generated bool, err error) {
	if existing != "" {
		if err := ValidateTimestamp(existing); err != nil {
			return "", false, err
		}
		return existing, false, nil
	}
	t := pinned
	if t.IsZero() {
		t = time.Now()
	}
	return FormatTimestamp(t), true, nil
}

func queryTimestamp(rawQuery string) string {
	for _, p := range canon.ParseQueryPairs(rawQuery) {
		if p.Name == "X-Amz-Date" {
			return p.Value
		}
	}
	return ""
}

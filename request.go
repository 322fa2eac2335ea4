package sigv4

// SignedRequest is the structured request description signers operate on:
// method, URL (raw or parsed), headers, and body (raw bytes or a
// precomputed hash). The Unsigned flag is S3-specific (forces
// UNSIGNED-PAYLOAD) but lives here so s3sign can read/write it without an
// import cycle back into this package.
type SignedRequest struct {
	Method      string
	URL         URL
	Headers     *Headers
	Body        []byte
	BodyHashHex string // precomputed hex SHA-256; takes precedence over Body
	Unsigned    bool   // S3: force the UNSIGNED-PAYLOAD sentinel
}

// NewSignedRequest returns a SignedRequest with an initialized header set.
func NewSignedRequest(method string, u URL) *SignedRequest {
	return &SignedRequest{Method: method, URL: u, Headers: NewHeaders()}
}

// EffectiveMethod returns Method, defaulting to GET when empty.
func (r *SignedRequest) EffectiveMethod() string {
	if r.Method == "" {
		return "GET"
	}
	return r.Method
}

// FromHeaderValues populates r.Headers from a map of case-insensitive
// names to string, []string, int, or int64 values, applying the coercion
// rule from spec.md §4.3 (array/numeric values join to their comma-joined
// or decimal string form). Useful for callers building a request from
// deserialized, loosely-typed input, where two distinct map keys (e.g.
// "Content-Type" and "content-type") can collide case-insensitively; per
// spec.md §3 that collision is a fatal error, not a silent overwrite.
func (r *SignedRequest) FromHeaderValues(values map[string]any) error {
	if r.Headers == nil {
		r.Headers = NewHeaders()
	}
	for name, v := range values {
		if _, err := r.Headers.Set(name, numericOrJoined(v)); err != nil {
			return err
		}
	}
	return nil
}

// RequestOptions is the flat projection of a SignedRequest an HTTP client
// expects (spec.md §4.3's to_request_options).
type RequestOptions struct {
	Method  string
	Host    string
	Path    string
	Headers *Headers
}

// ToRequestOptions projects r into the flat client-facing form.
func (r *SignedRequest) ToRequestOptions() (RequestOptions, error) {
	host, pathname, rawQuery, err := r.URL.Resolve()
	if err != nil {
		return RequestOptions{}, err
	}
	path := pathname
	if rawQuery != "" {
		path += "?" + rawQuery
	}
	return RequestOptions{
		Method:  r.EffectiveMethod(),
		Host:    host,
		Path:    path,
		Headers: r.Headers,
	}, nil
}

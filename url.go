package sigv4

import (
	"net/url"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

// URL models a request URL as the sum type from spec.md §9: either an
// opaque Raw string parsed on demand, or structured Host/Pathname/
// RawQuery fields. Raw takes precedence when non-empty.
type URL struct {
	Raw      string
	Host     string
	Pathname string
	RawQuery string
}

// RawURL builds a URL from an opaque string.
func RawURL(s string) URL { return URL{Raw: s} }

// ParsedURL builds a URL from structured fields.
func ParsedURL(host, pathname, rawQuery string) URL {
	return URL{Host: host, Pathname: pathname, RawQuery: rawQuery}
}

// Resolve returns host, pathname, and raw query string, parsing Raw on
// demand when present.
func (u URL) Resolve() (host, pathname, rawQuery string, err error) {
	if u.Raw != "" {
		parsed, perr := url.Parse(u.Raw)
		if perr != nil {
			return "", "", "", sigerr.Wrap(sigerr.InvalidInput, perr)
		}
		pathname = parsed.EscapedPath()
		if pathname == "" {
			pathname = "/"
		}
		return parsed.Host, pathname, parsed.RawQuery, nil
	}
	pathname = u.Pathname
	if pathname == "" {
		pathname = "/"
	}
	return u.Host, pathname, u.RawQuery, nil
}

// String renders the URL back to "scheme://host/pathname?query" (scheme
// defaults to https, pathname defaults to "/"). A missing host paired
// with a non-root pathname is a fatal input error per spec.md §4.3.
func (u URL) String() (string, error) {
	host, pathname, rawQuery, err := u.Resolve()
	if err != nil {
		return "", err
	}
	if host == "" && pathname != "/" {
		return "", sigerr.New(sigerr.InvalidInput, "URL has pathname %q but no host", pathname)
	}
	s := "https://" + host + pathname
	if rawQuery != "" {
		s += "?" + rawQuery
	}
	return s, nil
}

// WithQuery returns a copy of u with rawQuery substituted. Used by query
// signing to insert SigV4 parameters before canonicalization.
func (u URL) WithQuery(rawQuery string) URL {
	if u.Raw != "" {
		host, pathname, _, _ := u.Resolve()
		return ParsedURL(host, pathname, rawQuery)
	}
	cp := u
	cp.RawQuery = rawQuery
	return cp
}

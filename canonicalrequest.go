package sigv4

import (
	"strings"

	"github.com/ethanadams/sigv4/internal/canon"
)

// BuildCanonicalRequest assembles the newline-joined canonical request
// string from spec.md §3: METHOD \n canonicalURI \n canonicalQuery \n
// canonicalHeaders \n signedHeaders \n bodyHash.
func BuildCanonicalRequest(method, pathname, rawQuery string, headers *Headers, bodyHashHex string, uriOpts canon.URIOptions) (canonicalRequest, signedHeaders string, err error) {
	canonicalURI := canon.URI(pathname, uriOpts)
	canonicalQuery := canon.Query(rawQuery)

	block, signedHeaders, err := canon.Headers(headerEntries(headers))
	if err != nil {
		return "", "", err
	}

	canonicalRequest = strings.Join([]string{
		method,
		canonicalURI,
		canonicalQuery,
		block,
		signedHeaders,
		bodyHashHex,
	}, "\n")
	return canonicalRequest, signedHeaders, nil
}

func headerEntries(h *Headers) []canon.HeaderEntry {
	if h == nil {
		return nil
	}
	entries := make([]canon.HeaderEntry, 0, len(h.order))
	h.Range(func(name, value string) {
		entries = append(entries, canon.HeaderEntry{Name: name, Values: []string{value}})
	})
	return entries
}

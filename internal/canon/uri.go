// Package canon implements the SigV4 canonicalization rules shared by all
// four signing flavors: URI path, query string, and header block
// canonicalization, plus body hashing (spec.md §4.2).
package canon

import (
	"net/url"
	"strings"
)

// URIOptions controls the two S3-specific quirks from spec.md §4.2/§4.5.
type URIOptions struct {
	// DontNormalize skips dot-segment folding and empty-segment removal.
	// S3 sets this to true: its object keys may legitimately contain
	// "..", ".", or empty path segments.
	DontNormalize bool
	// OnlyEncodeOnce skips the second percent-encoding pass. S3 sets
	// this to true because object keys are already percent-encoded once
	// by the time they reach the canonical URI.
	OnlyEncodeOnce bool
}

const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

var isUnreserved [256]bool

func init() {
	for i := 0; i < len(unreserved); i++ {
		isUnreserved[unreserved[i]] = true
	}
}

// encodeSegment percent-encodes every byte outside the unreserved set as
// %HH with uppercase hex, per spec.md §4.2 step 3.
func encodeSegment(s string) string {
	var needsEncoding bool
	for i := 0; i < len(s); i++ {
		if !isUnreserved[s[i]] {
			needsEncoding = true
			break
		}
	}
	if !needsEncoding {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved[c] {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperHex(c >> 4))
			b.WriteByte(upperHex(c & 0xf))
		}
	}
	return b.String()
}

func upperHex(nibble byte) byte {
	if nibble < 10 {
		return '0' + nibble
	}
	return 'A' + (nibble - 10)
}

func isDotSegment(s string) bool {
	return s == "" || s == "." || s == ".."
}

// URI canonicalizes a URL path per spec.md §4.2. Empty input returns "/".
func URI(pathname string, opts URIOptions) string {
	if pathname == "" {
		return "/"
	}

	rawSegments := strings.Split(pathname, "/")
	decoded := make([]string, len(rawSegments))
	for i, seg := range rawSegments {
		if d, err := url.PathUnescape(seg); err == nil {
			decoded[i] = d
		} else {
			decoded[i] = seg
		}
	}

	var segments []string
	trailingSlash := false

	if opts.DontNormalize {
		segments = decoded
	} else {
		stack := make([]string, 0, len(decoded))
		for _, seg := range decoded {
			switch seg {
			case "", ".":
				// dropped
			case "..":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			default:
				stack = append(stack, seg)
			}
		}
		segments = stack
		if len(decoded) > 0 && isDotSegment(decoded[len(decoded)-1]) {
			trailingSlash = true
		}
	}

	encoded := make([]string, len(segments))
	for i, seg := range segments {
		enc := encodeSegment(seg)
		if !opts.OnlyEncodeOnce {
			enc = encodeSegment(enc)
		}
		encoded[i] = enc
	}

	if opts.DontNormalize {
		return strings.Join(encoded, "/")
	}

	path := "/" + strings.Join(encoded, "/")
	if trailingSlash && path != "/" {
		path += "/"
	}
	return path
}

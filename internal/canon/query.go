package canon

import (
	"net/url"
	"sort"
	"strings"
)

// QueryPair is a decoded query parameter name/value pair.
type QueryPair struct {
	Name, Value string
}

// ParseQueryPairs splits a raw query string into decoded (name, value)
// pairs, preserving duplicates and order. Entries with an empty name are
// kept here (CanonicalizeQueryPairs drops them) so callers can append
// synthetic parameters before canonicalizing.
func ParseQueryPairs(raw string) []QueryPair {
	if raw == "" {
		return nil
	}
	var pairs []QueryPair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		var name, value string
		if idx := strings.IndexByte(part, '='); idx >= 0 {
			name, value = part[:idx], part[idx+1:]
		} else {
			name = part
		}
		pairs = append(pairs, QueryPair{queryUnescape(name), queryUnescape(value)})
	}
	return pairs
}

// CanonicalizeQueryPairs encodes and sorts decoded pairs per spec.md §4.2:
// drop entries with an empty name, percent-encode name/value with the URI
// unreserved set, sort ascending by encoded name then encoded value
// (plain byte order suffices since the encoded output is pure ASCII, the
// same order as UTF-16 code units), and join as "name=value" with "&".
func CanonicalizeQueryPairs(pairs []QueryPair) string {
	encoded := make([]QueryPair, 0, len(pairs))
	for _, p := range pairs {
		if p.Name == "" {
			continue
		}
		encoded = append(encoded, QueryPair{encodeSegment(p.Name), encodeSegment(p.Value)})
	}

	sort.SliceStable(encoded, func(i, j int) bool {
		if encoded[i].Name != encoded[j].Name {
			return encoded[i].Name < encoded[j].Name
		}
		return encoded[i].Value < encoded[j].Value
	})

	var b strings.Builder
	for i, p := range encoded {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}

// Query canonicalizes a raw query string directly. Empty input
// canonicalizes to the empty string.
func Query(raw string) string {
	return CanonicalizeQueryPairs(ParseQueryPairs(raw))
}

func queryUnescape(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}

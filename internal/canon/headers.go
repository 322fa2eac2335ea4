package canon

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

// HeaderEntry is one header's original-cased name and its value(s), as
// canon.Headers expects them. Multiple values are joined with "," before
// whitespace collapsing, matching an array-valued header.
type HeaderEntry struct {
	Name   string
	Values []string
}

var whitespaceRun = regexp.MustCompile(`[ \t]+`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Headers canonicalizes a header set per spec.md §4.2: names are
// lower-cased, array values are comma-joined, values are trimmed with
// internal whitespace runs collapsed to a single space, and a duplicate
// lower-cased name across two entries is a fatal error. It returns the
// "name:value\n"-concatenated canonical block (ascending by name) and the
// ";"-joined sorted list of signed header names.
func Headers(entries []HeaderEntry) (block, signedHeaders string, err error) {
	type canonEntry struct {
		name  string
		value string
	}
	seen := make(map[string]bool, len(entries))
	canonical := make([]canonEntry, 0, len(entries))

	for _, e := range entries {
		lower := strings.ToLower(e.Name)
		if seen[lower] {
			return "", "", sigerr.New(sigerr.InvalidInput, "duplicate header name %q after lower-casing", lower)
		}
		seen[lower] = true

		value := collapseWhitespace(strings.Join(e.Values, ","))
		canonical = append(canonical, canonEntry{name: lower, value: value})
	}

	sort.Slice(canonical, func(i, j int) bool { return canonical[i].name < canonical[j].name })

	var blockBuilder strings.Builder
	names := make([]string, len(canonical))
	for i, e := range canonical {
		names[i] = e.name
		blockBuilder.WriteString(e.name)
		blockBuilder.WriteByte(':')
		blockBuilder.WriteString(e.value)
		blockBuilder.WriteByte('\n')
	}

	return blockBuilder.String(), strings.Join(names, ";"), nil
}

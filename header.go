package sigv4

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

// entry holds one header's original-cased name alongside its values.
type entry struct {
	name   string
	values []string
}

// Headers is a case-insensitive header container that preserves original
// casing for emission while using the lower-cased name for lookup and
// duplicate detection, per the "Header & URL model" design note in
// spec.md §9. It replaces the ambient http.Header (which silently
// collapses distinct casings under net/textproto's own canonicalization)
// anywhere sigv4 needs to detect a genuine case collision.
type Headers struct {
	byLower map[string]*entry
	order   []string // lower-cased names, first-seen order
}

// NewHeaders returns an empty header set.
func NewHeaders() *Headers {
	return &Headers{byLower: make(map[string]*entry)}
}

// Set replaces any existing values for name (case-insensitively) with a
// single value. A name that collides case-insensitively with a
// previously-set, differently-cased name (e.g. "Foo" after "foo") is the
// fatal error spec.md §3 requires, not a silent overwrite.
func (h *Headers) Set(name, value string) (*Headers, error) {
	lower := strings.ToLower(name)
	if e, ok := h.byLower[lower]; ok {
		if e.name != name {
			return nil, sigerr.New(sigerr.InvalidInput, "duplicate header %q collides with %q", name, e.name)
		}
		e.values = []string{value}
		return h, nil
	}
	h.byLower[lower] = &entry{name: name, values: []string{value}}
	h.order = append(h.order, lower)
	return h, nil
}

// Add appends value to any existing values for name (case-insensitively),
// or creates the header if absent.
func (h *Headers) Add(name, value string) *Headers {
	lower := strings.ToLower(name)
	if e, ok := h.byLower[lower]; ok {
		e.values = append(e.values, value)
		return h
	}
	h.byLower[lower] = &entry{name: name, values: []string{value}}
	h.order = append(h.order, lower)
	return h
}

// Has reports whether name is present, case-insensitively.
func (h *Headers) Has(name string) bool {
	_, ok := h.byLower[strings.ToLower(name)]
	return ok
}

// Get implements the get_header contract from spec.md §4.3: it returns
// the originally-cased key and the comma-joined value for name
// (case-insensitive), or ok=false if absent.
func (h *Headers) Get(name string) (key, value string, ok bool) {
	e, present := h.byLower[strings.ToLower(name)]
	if !present {
		return name, "", false
	}
	return e.name, strings.Join(e.values, ","), true
}

// GetOrNotFound is Get with the literal "not found" sentinel from spec.md
// §4.3 in place of the ok boolean.
func (h *Headers) GetOrNotFound(name string) (key, value string) {
	key, value, ok := h.Get(name)
	if !ok {
		return name, "not found"
	}
	return key, value
}

// Delete removes name, case-insensitively.
func (h *Headers) Delete(name string) {
	lower := strings.ToLower(name)
	if _, ok := h.byLower[lower]; !ok {
		return
	}
	delete(h.byLower, lower)
	for i, l := range h.order {
		if l == lower {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	out := NewHeaders()
	for _, lower := range h.order {
		e := h.byLower[lower]
		values := make([]string, len(e.values))
		copy(values, e.values)
		out.byLower[lower] = &entry{name: e.name, values: values}
		out.order = append(out.order, lower)
	}
	return out
}

// Range calls fn for every header in first-seen order, with the original
// casing and comma-joined value.
func (h *Headers) Range(fn func(name, value string)) {
	for _, lower := range h.order {
		e := h.byLower[lower]
		fn(e.name, strings.Join(e.values, ","))
	}
}

// ToHTTPHeader renders this set as a stdlib http.Header, using
// http.Header's own canonical MIME casing (the emission form an HTTP
// client expects), and coalescing array values with ",".
func (h *Headers) ToHTTPHeader() http.Header {
	out := make(http.Header, len(h.order))
	for _, lower := range h.order {
		e := h.byLower[lower]
		out.Set(e.name, strings.Join(e.values, ","))
	}
	return out
}

// FromHTTPHeaderPairs builds a Headers from an ordered list of (name,
// value) pairs, detecting a case collision between two distinct input
// names that share a lower-cased form — e.g. "Foo" and "foo" — and
// reporting it as the fatal InvalidInput error required by spec.md §3's
// invariant list, rather than silently merging or overwriting.
func FromHTTPHeaderPairs(pairs [][2]string) (*Headers, error) {
	h := NewHeaders()
	for _, p := range pairs {
		name, value := p[0], p[1]
		lower := strings.ToLower(name)
		if e, ok := h.byLower[lower]; ok && e.name != name {
			return nil, sigerr.New(sigerr.InvalidInput, "duplicate header %q collides with %q", name, e.name)
		}
		h.Add(name, value)
	}
	return h, nil
}

// numericOrJoined coerces a non-string header value (as accepted by some
// callers building a SignedRequest programmatically) to its comma-joined
// or decimal string form, per the coercion rule in spec.md §4.3.
func numericOrJoined(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

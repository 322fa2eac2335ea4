package eventstream

import (
	"bytes"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/ethanadams/sigv4/internal/sigerr"
)

// Event is the ordered-and-keyed dual view of a message from spec.md §3/§8:
// HeaderOrder preserves the caller's or wire's insertion order while
// Headers allows keyed lookup. Both are kept in sync by SetHeader.
type Event struct {
	Headers     map[string]HeaderValue
	HeaderOrder []string
	Payload     []byte
}

// NewEvent returns an empty Event ready for SetHeader calls.
func NewEvent() *Event {
	return &Event{Headers: make(map[string]HeaderValue)}
}

// SetHeader sets name to v, appending name to HeaderOrder the first time
// it is seen so re-setting an existing header does not reorder it.
func (e *Event) SetHeader(name string, v HeaderValue) {
	if e.Headers == nil {
		e.Headers = make(map[string]HeaderValue)
	}
	if _, exists := e.Headers[name]; !exists {
		e.HeaderOrder = append(e.HeaderOrder, name)
	}
	e.Headers[name] = v
}

// orderedNames returns e's header names in wire order: HeaderOrder first,
// then any keys present only in the map (keyed-mapping input form),
// sorted ascending so the result is deterministic.
func (e *Event) orderedNames() []string {
	seen := make(map[string]bool, len(e.Headers))
	names := make([]string, 0, len(e.Headers))
	for _, n := range e.HeaderOrder {
		if _, ok := e.Headers[n]; ok && !seen[n] {
			names = append(names, n)
			seen[n] = true
		}
	}
	var rest []string
	for n := range e.Headers {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Encode renders e as a complete event-stream frame: total length,
// headers length, dual CRC32 checksums, headers, and payload, via the
// aws-sdk-go-v2 eventstream codec.
func Encode(e Event) ([]byte, error) {
	var headers eventstream.Headers
	for _, name := range e.orderedNames() {
		if len(name) > 255 {
			return nil, sigerr.New(sigerr.InvalidInput, "header name %q exceeds 255 bytes", name)
		}
		lv, err := toLibraryValue(e.Headers[name])
		if err != nil {
			return nil, err
		}
		headers = append(headers, eventstream.Header{Name: name, Value: lv})
	}

	msg := eventstream.Message{Headers: headers, Payload: e.Payload}

	var buf bytes.Buffer
	enc := eventstream.NewEncoder()
	if err := enc.Encode(&buf, msg); err != nil {
		return nil, sigerr.Wrap(sigerr.InvalidInput, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a complete event-stream frame, validating both CRCs and
// the length prelude, and rejecting duplicate (case-sensitive) header
// names or unknown type codes. The result carries both the ordered-array
// and keyed-mapping views.
func Decode(b []byte) (Event, error) {
	dec := eventstream.NewDecoder()
	msg, err := dec.Decode(bytes.NewReader(b), nil)
	if err != nil {
		return Event{}, sigerr.Wrap(sigerr.InvalidFormat, err)
	}

	e := Event{Headers: make(map[string]HeaderValue, len(msg.Headers)), Payload: msg.Payload}
	for _, h := range msg.Headers {
		if _, dup := e.Headers[h.Name]; dup {
			return Event{}, sigerr.New(sigerr.InvalidFormat, "duplicate event-stream header %q", h.Name)
		}
		hv, err := fromLibraryValue(h.Value)
		if err != nil {
			return Event{}, err
		}
		e.Headers[h.Name] = hv
		e.HeaderOrder = append(e.HeaderOrder, h.Name)
	}
	return e, nil
}

package eventstream

import (
	"strings"
	"testing"
)

func TestEventEncodeDecodeRoundTrip(t *testing.T) {
	e := NewEvent()
	e.SetHeader(":message-type", StringHeader("event"))
	e.SetHeader(":event-type", StringHeader("AudioEvent"))
	e.SetHeader(":content-type", StringHeader("application/octet-stream"))
	e.Payload = []byte("some audio bytes")

	encoded, err := Encode(*e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded.Payload) != string(e.Payload) {
		t.Fatalf("Payload = %q, want %q", decoded.Payload, e.Payload)
	}
	for name, want := range e.Headers {
		got, ok := decoded.Headers[name]
		if !ok {
			t.Fatalf("decoded event missing header %q", name)
		}
		if got.Type != want.Type || got.StringVal != want.StringVal {
			t.Fatalf("header %q = %+v, want %+v", name, got, want)
		}
	}
}

// TestEventEncodeDecodeRoundTripReservedAndUserContentType reproduces the
// header shape from scenario S6 of spec.md §8: four headers, including both
// the reserved ":content-type" wire header and a distinct user-supplied
// "Content-Type" header. Header names are case-sensitive map keys here, so
// the two coexist rather than colliding; this checks that Encode/Decode
// keep them distinct through the round trip rather than one clobbering the
// other. (The literal 15734-byte payload fixture from spec.md §8 S6 isn't
// reproduced; see DESIGN.md for why.)
func TestEventEncodeDecodeRoundTripReservedAndUserContentType(t *testing.T) {
	e := NewEvent()
	e.SetHeader(":message-type", StringHeader("event"))
	e.SetHeader(":event-type", StringHeader("TranscriptEvent"))
	e.SetHeader(":content-type", StringHeader("application/vnd.amazon.eventstream"))
	e.SetHeader("Content-Type", StringHeader("application/json"))
	e.Payload = []byte(`{"Transcript":{"Results":[]}}`)

	encoded, err := Encode(*e)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded.Payload) != string(e.Payload) {
		t.Fatalf("Payload = %q, want %q", decoded.Payload, e.Payload)
	}
	if len(decoded.Headers) != 4 {
		t.Fatalf("decoded %d headers, want 4", len(decoded.Headers))
	}
	reserved, ok := decoded.Headers[":content-type"]
	if !ok || reserved.StringVal != "application/vnd.amazon.eventstream" {
		t.Fatalf(":content-type = %+v, ok=%v, want application/vnd.amazon.eventstream", reserved, ok)
	}
	user, ok := decoded.Headers["Content-Type"]
	if !ok || user.StringVal != "application/json" {
		t.Fatalf("Content-Type = %+v, ok=%v, want application/json", user, ok)
	}
	if reserved.StringVal == user.StringVal {
		t.Fatalf(":content-type and Content-Type decoded identically; the reserved and user headers should stay distinct")
	}
}

func TestEventSetHeaderPreservesFirstSeenOrder(t *testing.T) {
	e := NewEvent()
	e.SetHeader("b", Int8Header(1))
	e.SetHeader("a", Int8Header(2))
	e.SetHeader("b", Int8Header(3)) // re-set, should not move to the end

	order := e.orderedNames()
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Fatalf("orderedNames = %v, want [b a]", order)
	}
	if e.Headers["b"].Int8Val != 3 {
		t.Fatalf("re-setting a header should update its value")
	}
}

func TestOrderedNamesSortsMapOnlyKeys(t *testing.T) {
	e := &Event{Headers: map[string]HeaderValue{
		"z": Int8Header(1),
		"a": Int8Header(2),
	}}
	order := e.orderedNames()
	if len(order) != 2 || order[0] != "a" || order[1] != "z" {
		t.Fatalf("orderedNames = %v, want [a z] for a keyed-only event", order)
	}
}

func TestEncodeRejectsOverlongHeaderName(t *testing.T) {
	e := NewEvent()
	e.SetHeader(strings.Repeat("n", 255), Int8Header(1))
	if _, err := Encode(*e); err != nil {
		t.Fatalf("a 255-byte header name should be accepted: %v", err)
	}

	e2 := NewEvent()
	e2.SetHeader(strings.Repeat("n", 256), Int8Header(1))
	if _, err := Encode(*e2); err == nil {
		t.Fatalf("a 256-byte header name should be rejected")
	}
}

func TestDecodeRejectsMalformedFrame(t *testing.T) {
	if _, err := Decode([]byte("not a valid event-stream frame")); err == nil {
		t.Fatalf("expected an error decoding a malformed frame")
	}
}

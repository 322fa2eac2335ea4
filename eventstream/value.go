// Package eventstream implements the binary event-stream codec (C8) and
// its chained-signature signer (C9). Framing (length prefixes, dual IEEE
// CRC32 checksums) is delegated to
// github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream, the same wire
// format the AWS SDK uses for Transcribe/S3 Select streaming; this
// package adapts that library's Message/Header/Value model to the
// ordered-and-keyed Event view spec.md §3/§8 requires, and layers the
// SigV4 chained-signature scheme on top.
package eventstream

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/protocol/eventstream"
	"github.com/ethanadams/sigv4/internal/sigerr"
)

// Header value type tags, per spec.md §3.
const (
	TypeBoolTrue  byte = 0
	TypeBoolFalse byte = 1
	TypeInt8      byte = 2
	TypeInt16     byte = 3
	TypeInt32     byte = 4
	TypeInt64     byte = 5
	TypeBytes     byte = 6
	TypeString    byte = 7
	TypeTimestamp byte = 8
	TypeUUID      byte = 9
)

// HeaderValue is the tagged union of event-stream header value types from
// spec.md §3. Exactly one of the typed fields is meaningful, selected by
// Type.
type HeaderValue struct {
	Type byte

	BoolVal   bool
	Int8Val   int8
	Int16Val  int16
	Int32Val  int32
	Int64Val  int64
	BytesVal  []byte
	StringVal string
	TimeVal   time.Time
	UUIDVal   [16]byte
}

func BoolHeader(b bool) HeaderValue {
	if b {
		return HeaderValue{Type: TypeBoolTrue, BoolVal: true}
	}
	return HeaderValue{Type: TypeBoolFalse}
}

func Int8Header(v int8) HeaderValue     { return HeaderValue{Type: TypeInt8, Int8Val: v} }
func Int16Header(v int16) HeaderValue   { return HeaderValue{Type: TypeInt16, Int16Val: v} }
func Int32Header(v int32) HeaderValue   { return HeaderValue{Type: TypeInt32, Int32Val: v} }
func Int64Header(v int64) HeaderValue   { return HeaderValue{Type: TypeInt64, Int64Val: v} }
func BytesHeader(v []byte) HeaderValue  { return HeaderValue{Type: TypeBytes, BytesVal: v} }
func StringHeader(v string) HeaderValue { return HeaderValue{Type: TypeString, StringVal: v} }
func TimestampHeader(v time.Time) HeaderValue {
	return HeaderValue{Type: TypeTimestamp, TimeVal: v}
}
func UUIDHeader(v [16]byte) HeaderValue { return HeaderValue{Type: TypeUUID, UUIDVal: v} }

// validate enforces the size limits from spec.md §4.8.
func (hv HeaderValue) validate() error {
	switch hv.Type {
	case TypeBytes:
		if len(hv.BytesVal) > 65535 {
			return sigerr.New(sigerr.InvalidInput, "binary header value of %d bytes exceeds 65535", len(hv.BytesVal))
		}
	case TypeString:
		if len(hv.StringVal) > 65535 {
			return sigerr.New(sigerr.InvalidInput, "string header value of %d bytes exceeds 65535", len(hv.StringVal))
		}
	case TypeBoolTrue, TypeBoolFalse, TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeTimestamp, TypeUUID:
		// Fixed-width; nothing to check.
	default:
		return sigerr.New(sigerr.InvalidInput, "unknown header value type %d", hv.Type)
	}
	return nil
}

// toLibraryValue converts hv to the library's Value union.
func toLibraryValue(hv HeaderValue) (eventstream.Value, error) {
	if err := hv.validate(); err != nil {
		return nil, err
	}
	switch hv.Type {
	case TypeBoolTrue:
		return eventstream.BoolValue(true), nil
	case TypeBoolFalse:
		return eventstream.BoolValue(false), nil
	case TypeInt8:
		return eventstream.Int8Value(hv.Int8Val), nil
	case TypeInt16:
		return eventstream.Int16Value(hv.Int16Val), nil
	case TypeInt32:
		return eventstream.Int32Value(hv.Int32Val), nil
	case TypeInt64:
		return eventstream.Int64Value(hv.Int64Val), nil
	case TypeBytes:
		return eventstream.BytesValue(hv.BytesVal), nil
	case TypeString:
		return eventstream.StringValue(hv.StringVal), nil
	case TypeTimestamp:
		return eventstream.TimestampValue(hv.TimeVal), nil
	case TypeUUID:
		return eventstream.UUIDValue(hv.UUIDVal), nil
	default:
		return nil, sigerr.New(sigerr.InvalidInput, "unknown header value type %d", hv.Type)
	}
}

// fromLibraryValue converts a decoded library Value back to HeaderValue.
func fromLibraryValue(v eventstream.Value) (HeaderValue, error) {
	switch val := v.(type) {
	case eventstream.BoolValue:
		return BoolHeader(bool(val)), nil
	case eventstream.Int8Value:
		return Int8Header(int8(val)), nil
	case eventstream.Int16Value:
		return Int16Header(int16(val)), nil
	case eventstream.Int32Value:
		return Int32Header(int32(val)), nil
	case eventstream.Int64Value:
		return Int64Header(int64(val)), nil
	case eventstream.BytesValue:
		return BytesHeader([]byte(val)), nil
	case eventstream.StringValue:
		return StringHeader(string(val)), nil
	case eventstream.TimestampValue:
		return TimestampHeader(time.Time(val)), nil
	case eventstream.UUIDValue:
		return UUIDHeader([16]byte(val)), nil
	default:
		return HeaderValue{}, sigerr.New(sigerr.InvalidFormat, "unsupported event-stream header value type %T", v)
	}
}

package eventstream

import (
	"encoding/binary"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

// encodeHeaderBlock serializes headers in the given name order as the raw
// "headers" byte region from spec.md §4.8 — name_len:u8 || name_utf8 ||
// type:u8 || value — without the surrounding frame (length prefixes or
// CRCs). It exists alongside the library-backed Encode/Decode in event.go
// because C9's signature digest is computed over this region alone, and
// the wire codec library doesn't expose an isolated "encode headers"
// entry point; the format is small and fixed enough to serialize directly
// rather than parse it back out of a full encoded frame.
func encodeHeaderBlock(headers map[string]HeaderValue, order []string) ([]byte, error) {
	var buf []byte
	for _, name := range order {
		hv, ok := headers[name]
		if !ok {
			continue
		}
		if len(name) > 255 {
			return nil, sigerr.New(sigerr.InvalidInput, "header name %q exceeds 255 bytes", name)
		}
		if err := hv.validate(); err != nil {
			return nil, err
		}
		buf = append(buf, byte(len(name)))
		buf = append(buf, name...)
		buf = append(buf, hv.Type)
		buf = append(buf, encodeHeaderValue(hv)...)
	}
	return buf, nil
}

func encodeHeaderValue(hv HeaderValue) []byte {
	switch hv.Type {
	case TypeBoolTrue, TypeBoolFalse:
		return nil
	case TypeInt8:
		return []byte{byte(hv.Int8Val)}
	case TypeInt16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(hv.Int16Val))
		return b
	case TypeInt32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, uint32(hv.Int32Val))
		return b
	case TypeInt64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(hv.Int64Val))
		return b
	case TypeBytes:
		b := make([]byte, 2, 2+len(hv.BytesVal))
		binary.BigEndian.PutUint16(b, uint16(len(hv.BytesVal)))
		return append(b, hv.BytesVal...)
	case TypeString:
		b := make([]byte, 2, 2+len(hv.StringVal))
		binary.BigEndian.PutUint16(b, uint16(len(hv.StringVal)))
		return append(b, hv.StringVal...)
	case TypeTimestamp:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, uint64(hv.TimeVal.UnixMilli()))
		return b
	case TypeUUID:
		return hv.UUIDVal[:]
	default:
		return nil
	}
}

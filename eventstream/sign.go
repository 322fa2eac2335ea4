package eventstream

import (
	"encoding/hex"
	"sort"
	"time"

	"github.com/ethanadams/sigv4"
	"github.com/ethanadams/sigv4/internal/sigerr"
)

// DateHeaderName is the reserved header carrying the event's signing
// instant.
const DateHeaderName = ":date"

// ChunkSignatureHeaderName is the reserved header carrying a chained
// chunk/event signature, encoded as a binary (type 6) value.
const ChunkSignatureHeaderName = ":chunk-signature"

// SignEventOptions configures a single SignEvent call.
type SignEventOptions struct {
	// Timestamp pins the signing instant used when headers carries no
	// :date header; the zero value means "now".
	Timestamp time.Time
}

// SignedEvent is the result of SignEvent: the chained signature plus the
// signing material used to produce it, and any parameters (a generated
// :date, and always :chunk-signature) the caller should merge into the
// outgoing event's headers.
type SignedEvent struct {
	Params    map[string]HeaderValue
	Timestamp string
	Signing   sigv4.SigningData
	Signature string
}

// SignEvent implements the event-stream chained signer (C9, spec.md
// §4.9). headers is the caller's event headers (not including
// :chunk-signature, which this call produces); payload may be nil for a
// headers-only event.
func SignEvent(lastSigHex string, creds sigv4.Credentials, headers map[string]HeaderValue, payload []byte, opts SignEventOptions) (SignedEvent, error) {
	params := make(map[string]HeaderValue)

	dateHeader, hasDate := headers[DateHeaderName]
	var instant time.Time
	switch {
	case hasDate && dateHeader.Type == TypeTimestamp:
		instant = dateHeader.TimeVal
	default:
		instant = opts.Timestamp
		if instant.IsZero() {
			instant = time.Now()
		}
		dateHeader = TimestampHeader(instant)
		params[DateHeaderName] = dateHeader
	}
	timestamp := sigv4.FormatTimestamp(instant)

	signing := sigv4.Derive(sigv4.DateStamp(timestamp), creds.SecretKey, creds.Region, creds.Service)

	digestHeaders := make(map[string]HeaderValue, len(headers)+1)
	for k, v := range headers {
		digestHeaders[k] = v
	}
	digestHeaders[DateHeaderName] = dateHeader

	names := make([]string, 0, len(digestHeaders))
	for k := range digestHeaders {
		names = append(names, k)
	}
	sort.Strings(names)

	headerBlock, err := encodeHeaderBlock(digestHeaders, names)
	if err != nil {
		return SignedEvent{}, err
	}
	headersDigestHex := sigv4.HashHex(headerBlock)

	payloadDigestHex := sigv4.EmptyStringSHA256
	if len(payload) > 0 {
		payloadDigestHex = sigv4.HashHex(payload)
	}

	if lastSigHex == "" {
		return SignedEvent{}, sigerr.New(sigerr.InvalidInput, "lastSigHex must not be empty")
	}

	signature := sigv4.SignChunkDefault(lastSigHex, headersDigestHex, payloadDigestHex, timestamp, signing)

	sigBytes, err := hex.DecodeString(signature)
	if err != nil {
		return SignedEvent{}, sigerr.Wrap(sigerr.InvalidFormat, err)
	}
	params[ChunkSignatureHeaderName] = BytesHeader(sigBytes)

	return SignedEvent{
		Params:    params,
		Timestamp: timestamp,
		Signing:   signing,
		Signature: signature,
	}, nil
}

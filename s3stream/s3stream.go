// Package s3stream implements S3's chunked-upload streaming signer (C6):
// an outer request signed with the STREAMING-AWS4-HMAC-SHA256-PAYLOAD
// sentinel, followed by a sequence of fixed-size chunks each carrying a
// signature chained to the previous one.
package s3stream

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ethanadams/sigv4"
	"github.com/ethanadams/sigv4/internal/sigerr"
	"github.com/ethanadams/sigv4/s3sign"
)

// StreamingPayloadSentinel is the x-amz-content-sha256 value for a
// chunked-upload request.
const StreamingPayloadSentinel = "STREAMING-AWS4-HMAC-SHA256-PAYLOAD"

// Params describes the shape of the chunked body.
type Params struct {
	// BodyLength is the total number of unframed payload bytes.
	BodyLength int64
	// ChunkLength is the size of every full chunk; the last chunk may be
	// shorter. Must be at least 8192.
	ChunkLength int64
}

// validate checks the invariants from spec.md §4.6.
func (p Params) validate() error {
	if p.BodyLength < 0 {
		return sigerr.New(sigerr.InvalidInput, "bodyLength %d must be >= 0", p.BodyLength)
	}
	if p.ChunkLength < 8192 {
		return sigerr.New(sigerr.InvalidInput, "chunkLength %d must be >= 8192", p.ChunkLength)
	}
	return nil
}

// fullChunks is the number of complete ChunkLength-sized chunks.
func (p Params) fullChunks() int64 {
	return p.BodyLength / p.ChunkLength
}

// partialLength is the size of the trailing short chunk, 0 if BodyLength
// divides evenly by ChunkLength.
func (p Params) partialLength() int64 {
	return p.BodyLength % p.ChunkLength
}

// frameOverhead returns the number of extra bytes the chunk framing adds
// on top of BodyLength: (headerLen + 64 + 4) per full chunk, the analogous
// term for the partial chunk if any, plus the terminal chunk's framing,
// per spec.md §4.6.
func (p Params) frameOverhead() int64 {
	var total int64
	if full := p.fullChunks(); full > 0 {
		total += full * perChunkOverhead(p.ChunkLength)
	}
	if partial := p.partialLength(); partial > 0 {
		total += perChunkOverhead(partial)
	}
	total += perChunkOverhead(0) // terminal chunk
	return total
}

// perChunkOverhead is the byte count of "<hex_len>;chunk-signature="
// (headerLen) plus the 64-hex-char SHA-256 signature plus the two CRLF
// pairs that bracket a chunk's data, per spec.md §4.6.
func perChunkOverhead(dataLen int64) int64 {
	const sigHexLen = 64
	headerLen := len(strconv.FormatInt(dataLen, 16)) + len(";chunk-signature=")
	return int64(headerLen) + sigHexLen + 4
}

// PrepareRequest signs req as the outer S3 request for a chunked upload:
// it sets x-amz-content-sha256, x-amz-decoded-content-length,
// content-length, and content-encoding, then signs via s3sign.Sign. The
// returned seedSigHex seeds the first ChunkSigner.
func PrepareRequest(creds sigv4.Credentials, req *sigv4.SignedRequest, p Params, opts s3sign.Options) (seedSigHex string, outParams map[string]string, err error) {
	if err := p.validate(); err != nil {
		return "", nil, err
	}

	headers := req.Headers
	if headers == nil {
		headers = sigv4.NewHeaders()
	}
	headers = headers.Clone()
	if _, err = headers.Set("x-amz-content-sha256", StreamingPayloadSentinel); err != nil {
		return "", nil, err
	}
	if _, err = headers.Set("x-amz-decoded-content-length", strconv.FormatInt(p.BodyLength, 10)); err != nil {
		return "", nil, err
	}
	if _, err = headers.Set("content-length", strconv.FormatInt(p.BodyLength+p.frameOverhead(), 10)); err != nil {
		return "", nil, err
	}

	if key, existing, ok := headers.Get("content-encoding"); ok {
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(existing)), "aws-chunked") {
			if _, err = headers.Set(key, "aws-chunked,"+existing); err != nil {
				return "", nil, err
			}
		}
	} else {
		if _, err = headers.Set("content-encoding", "aws-chunked"); err != nil {
			return "", nil, err
		}
	}

	working := *req
	working.Headers = headers
	working.BodyHashHex = StreamingPayloadSentinel

	setOpts := opts
	setOpts.Set = true
	params, err := s3sign.Sign(creds, &working, setOpts)
	if err != nil {
		return "", nil, err
	}

	if opts.Set {
		req.Headers = working.Headers
		req.URL = working.URL
		req.BodyHashHex = working.BodyHashHex
	}

	auth := params["authorization"]
	idx := strings.LastIndex(auth, "Signature=")
	if idx < 0 {
		return "", nil, sigerr.New(sigerr.StateViolation, "outer request signature missing from authorization header")
	}
	seedSigHex = auth[idx+len("Signature="):]
	return seedSigHex, params, nil
}

// chunkState is the ChunkSigner's single-use finite state per spec.md
// §4.6's state table.
type chunkState int

const (
	stateInitial chunkState = iota
	stateFull
	stateLastData
	stateTerminal
	stateDone
)

// ChunkSigner is a single-use pull-style state machine: each call to Sign
// validates the supplied chunk length against the state machine's expected
// length and returns the wire framing string for that chunk. Not safe for
// concurrent use; a partially-consumed signer may simply be dropped.
type ChunkSigner struct {
	timestamp string
	signing   sigv4.SigningData
	p         Params

	lastSigHex string
	remaining  int64 // full chunks not yet produced
	partial    int64 // partial chunk length, 0 if none
	state      chunkState
}

// NewChunkSigner creates a ChunkSigner seeded with the outer request's
// final signature.
func NewChunkSigner(seedSigHex, timestamp string, signing sigv4.SigningData, p Params) *ChunkSigner {
	cs := &ChunkSigner{
		timestamp:  timestamp,
		signing:    signing,
		p:          p,
		lastSigHex: seedSigHex,
		remaining:  p.fullChunks(),
		partial:    p.partialLength(),
	}
	switch {
	case cs.remaining > 0:
		cs.state = stateFull
	case cs.partial > 0:
		cs.state = stateLastData
	default:
		cs.state = stateTerminal
	}
	return cs
}

// expectedLength returns the chunk length state demands next, or -1 for
// the terminal (empty) chunk.
func (s *ChunkSigner) expectedLength() int64 {
	switch s.state {
	case stateFull:
		return s.p.ChunkLength
	case stateLastData:
		return s.partial
	case stateTerminal:
		return 0
	default:
		return -1
	}
}

// Sign validates chunk against the expected next-state length, signs it,
// and returns the wire framing string ("<hex_len>;chunk-signature=<hex>
// \r\n", with a trailing "\r\n" already appended for the terminal chunk,
// since it carries no data bytes to follow). The caller concatenates the
// chunk bytes and a final "\r\n" for non-terminal chunks.
func (s *ChunkSigner) Sign(chunk []byte) (frame string, err error) {
	if s.state == stateDone {
		return "", sigerr.New(sigerr.StateViolation, "chunk signer already produced its terminal chunk")
	}

	want := s.expectedLength()
	if want >= 0 && int64(len(chunk)) != want {
		return "", sigerr.New(sigerr.InvalidInput, "expected chunk of length %d, got %d", want, len(chunk))
	}

	payloadHashHex := sigv4.HashHex(chunk)
	signature := sigv4.SignChunkDefault(s.lastSigHex, sigv4.EmptyStringSHA256, payloadHashHex, s.timestamp, s.signing)
	s.lastSigHex = signature

	switch s.state {
	case stateFull:
		s.remaining--
		if s.remaining > 0 {
			s.state = stateFull
		} else if s.partial > 0 {
			s.state = stateLastData
		} else {
			s.state = stateTerminal
		}
		return fmt.Sprintf("%x;chunk-signature=%s\r\n", len(chunk), signature), nil
	case stateLastData:
		s.state = stateTerminal
		return fmt.Sprintf("%x;chunk-signature=%s\r\n", len(chunk), signature), nil
	case stateTerminal:
		s.state = stateDone
		return fmt.Sprintf("0;chunk-signature=%s\r\n\r\n", signature), nil
	default:
		return "", sigerr.New(sigerr.StateViolation, "chunk signer in unexpected state")
	}
}

// Done reports whether the terminal chunk has been produced.
func (s *ChunkSigner) Done() bool { return s.state == stateDone }

// NewStreamAdapter wraps a ChunkSigner around r, reading arbitrary-sized
// input, buffering into exact ChunkLength-sized chunks, and emitting
// signed framed output (framing + chunk bytes + "\r\n"), finally flushing
// the partial and terminal chunks at end of input. It returns an error
// from Read if the total bytes consumed from r does not equal
// p.BodyLength.
func NewStreamAdapter(cs *ChunkSigner, r io.Reader) io.Reader {
	return &streamAdapter{cs: cs, src: r, chunkLen: cs.p.ChunkLength, bodyLength: cs.p.BodyLength}
}

type streamAdapter struct {
	cs         *ChunkSigner
	src        io.Reader
	chunkLen   int64
	bodyLength int64

	consumed int64
	buf      []byte // bytes read from src, not yet framed
	out      []byte // framed bytes ready to hand to Read's caller
	srcEOF   bool
	finished bool
}

func (a *streamAdapter) Read(p []byte) (int, error) {
	for len(a.out) == 0 {
		if a.finished {
			return 0, io.EOF
		}
		if err := a.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, a.out)
	a.out = a.out[n:]
	return n, nil
}

// fill reads and frames the next chunk (or the terminal chunk) into
// a.out.
func (a *streamAdapter) fill() error {
	for !a.srcEOF && int64(len(a.buf)) < a.chunkLen {
		tmp := make([]byte, a.chunkLen-int64(len(a.buf)))
		n, err := a.src.Read(tmp)
		if n > 0 {
			a.buf = append(a.buf, tmp[:n]...)
			a.consumed += int64(n)
		}
		if err == io.EOF {
			a.srcEOF = true
			break
		}
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}

	switch {
	case int64(len(a.buf)) >= a.chunkLen && a.chunkLen > 0:
		chunk := a.buf[:a.chunkLen]
		a.buf = a.buf[a.chunkLen:]
		return a.frame(chunk)
	case a.srcEOF:
		if a.consumed != a.bodyLength {
			return sigerr.New(sigerr.StateViolation, "stream adapter consumed %d bytes, expected %d", a.consumed, a.bodyLength)
		}
		if len(a.buf) > 0 {
			chunk := a.buf
			a.buf = nil
			return a.frame(chunk)
		}
		return a.frameTerminal()
	default:
		return nil
	}
}

func (a *streamAdapter) frame(chunk []byte) error {
	header, err := a.cs.Sign(chunk)
	if err != nil {
		return err
	}
	a.out = append(a.out, []byte(header)...)
	a.out = append(a.out, chunk...)
	a.out = append(a.out, '\r', '\n')
	if a.cs.Done() {
		a.finished = true
	}
	return nil
}

func (a *streamAdapter) frameTerminal() error {
	header, err := a.cs.Sign(nil)
	if err != nil {
		return err
	}
	a.out = append(a.out, []byte(header)...)
	a.finished = true
	return nil
}

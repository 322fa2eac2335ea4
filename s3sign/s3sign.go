// Package s3sign layers S3's signing quirks over the generic sigv4 request
// signer (C5): path canonicalization that skips normalization and double
// percent-encoding, a defaulted "s3" service, mandatory
// x-amz-content-sha256, and presigned-URL expiry defaulting.
package s3sign

import (
	"strconv"
	"time"

	"github.com/ethanadams/sigv4"
	"github.com/ethanadams/sigv4/internal/canon"
	"github.com/ethanadams/sigv4/internal/endpoint"
	"github.com/ethanadams/sigv4/internal/sigerr"
	"github.com/ethanadams/sigv4/internal/slog4"
)

const defaultService = "s3"

// DefaultExpiresSeconds is the value inserted for X-Amz-Expires when a
// caller omits it from a presigned URL.
const DefaultExpiresSeconds = 604800

// MaxExpiresSeconds is the largest X-Amz-Expires value the AWS signature
// specification permits. A caller-supplied value beyond it is not rejected
// here; it is carried through to the signed URL unchanged.
const MaxExpiresSeconds = 604800

// uriOptions is S3's fixed canonicalization mode: no dot-segment/empty-
// segment normalization, and the path is percent-encoded only once (S3
// canonicalizes an already-encoded key).
var uriOptions = canon.URIOptions{DontNormalize: true, OnlyEncodeOnce: true}

// Options configures a single s3sign.Sign call. It mirrors
// sigv4.SignOptions minus SetContentHash and URIOptions, which S3 always
// governs itself.
type Options struct {
	Query            bool
	Set              bool
	Timestamp        time.Time
	Cache            *sigv4.DerivationCache
	EndpointResolver endpoint.Resolver
	Logger           *slog4.Logger
}

func (o Options) core(setContentHash bool) sigv4.SignOptions {
	return sigv4.SignOptions{
		Query:            o.Query,
		Set:              o.Set,
		SetContentHash:   setContentHash,
		Timestamp:        o.Timestamp,
		Cache:            o.Cache,
		EndpointResolver: o.EndpointResolver,
		URIOptions:       uriOptions,
		Logger:           o.Logger,
	}
}

// Sign signs req as an S3 request. It mutates req only when opts.Set is
// true, matching sigv4.SignRequest.
func Sign(creds sigv4.Credentials, req *sigv4.SignedRequest, opts Options) (map[string]string, error) {
	host, _, rawQuery, err := req.URL.Resolve()
	if err != nil {
		return nil, err
	}
	if host == "" && creds.Service == "" {
		creds.Service = defaultService
	}

	working := *req

	var setContentHash bool
	if opts.Query {
		// Query mode always signs the UNSIGNED-PAYLOAD sentinel; S3 never
		// includes a real body hash in a presigned URL.
		working.BodyHashHex = sigv4.UnsignedPayload
		expiredQuery, err := withDefaultExpires(rawQuery)
		if err != nil {
			return nil, err
		}
		working.URL = req.URL.WithQuery(expiredQuery)
	} else {
		hasHash := false
		if req.Headers != nil {
			_, _, hasHash = req.Headers.Get("x-amz-content-sha256")
		}
		setContentHash = !hasHash
		if req.Unsigned {
			working.BodyHashHex = sigv4.UnsignedPayload
		} else {
			working.BodyHashHex = canon.BodyHash(req.Body, req.BodyHashHex)
		}
	}

	params, err := sigv4.SignRequest(creds, &working, opts.core(setContentHash))
	if err != nil {
		return nil, err
	}

	if opts.Set {
		req.URL = working.URL
		req.Headers = working.Headers
		req.BodyHashHex = working.BodyHashHex
	}
	return params, nil
}

// withDefaultExpires inserts X-Amz-Expires=604800 into rawQuery if absent.
// A caller-supplied value is passed through unchanged, even one exceeding
// MaxExpiresSeconds: the AWS specification forbids that, but accepting it
// unchanged is the documented, resolved behavior here.
func withDefaultExpires(rawQuery string) (string, error) {
	pairs := canon.ParseQueryPairs(rawQuery)
	for _, p := range pairs {
		if p.Name != "X-Amz-Expires" {
			continue
		}
		if seconds, err := strconv.Atoi(p.Value); err != nil || seconds < 0 {
			return "", sigerr.New(sigerr.InvalidInput, "X-Amz-Expires %q is not a non-negative integer", p.Value)
		}
		return rawQuery, nil
	}
	if rawQuery == "" {
		return "X-Amz-Expires=" + strconv.Itoa(DefaultExpiresSeconds), nil
	}
	return rawQuery + "&X-Amz-Expires=" + strconv.Itoa(DefaultExpiresSeconds), nil
}

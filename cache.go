package sigv4

// DerivationCache memoizes the most recently derived SigningData, keyed on
// the (dateStamp, region, service, secretKey) tuple that produced it. It
// generalizes the teacher's date-only signing-key cache
// (internal/executor/awsv4.Signer, which refreshed only on date change) to
// the full key used by all four signing flavors.
//
// A DerivationCache is not internally synchronized: it is owned by a
// single goroutine, or by a caller supplying its own mutual exclusion, per
// spec. For every call sequence its output is element-wise equal to
// calling Derive directly.
type DerivationCache struct {
	dateStamp string
	region    string
	service   string
	secretKey string
	data      SigningData
	valid     bool
}

// NewDerivationCache returns an empty one-slot cache.
func NewDerivationCache() *DerivationCache {
	return &DerivationCache{}
}

// Derive returns the SigningData for the given inputs, reusing the cached
// value when the key tuple is unchanged from the previous call.
func (c *DerivationCache) Derive(dateStamp, secretKey, region, service string) SigningData {
	date8 := DateStamp(dateStamp)
	if c.valid && c.dateStamp == date8 && c.region == region && c.service == service && c.secretKey == secretKey {
		return c.data
	}

	c.data = Derive(date8, secretKey, region, service)
	c.dateStamp = date8
	c.region = region
	c.service = service
	c.secretKey = secretKey
	c.valid = true
	return c.data
}

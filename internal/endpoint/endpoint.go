// Package endpoint provides the default AWS host<->(service,region)
// resolver referenced as an external collaborator contract in spec.md §6.
// It is deliberately swappable: sigv4.SignOptions.EndpointResolver accepts
// any implementation of Resolver.
package endpoint

import (
	_ "embed"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed aliases.yaml
var aliasYAML []byte

type aliasEntry struct {
	Service string `yaml:"service"`
	Host    string `yaml:"host"`
}

type aliasTable struct {
	Aliases []aliasEntry `yaml:"aliases"`
}

var (
	serviceToHost map[string]string
	hostToService map[string]string
)

func init() {
	var table aliasTable
	// A malformed embedded table is a build-time bug in this module, not
	// a caller error, so it is fine to panic at package init.
	if err := yaml.Unmarshal(aliasYAML, &table); err != nil {
		panic("endpoint: invalid embedded alias table: " + err.Error())
	}
	serviceToHost = make(map[string]string, len(table.Aliases))
	hostToService = make(map[string]string, len(table.Aliases))
	for _, a := range table.Aliases {
		serviceToHost[a.Service] = a.Host
		hostToService[a.Host] = a.Service
	}
}

// Resolver is the external collaborator contract from spec.md §6.
type Resolver interface {
	// ParseHost recognizes an AWS endpoint hostname and returns its
	// signing service name and region. ok is false when host doesn't
	// match a recognized AWS endpoint shape.
	ParseHost(host string) (service, region string, ok bool)
	// FormatHost builds a default endpoint hostname for service and an
	// optional region (defaulting to us-east-1).
	FormatHost(service, region string) string
}

type defaultResolver struct{}

// Default returns the yaml-table-backed Resolver used when a caller
// doesn't supply one.
func Default() Resolver { return defaultResolver{} }

const defaultRegion = "us-east-1"

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]*)?-[a-z]+-\d$`)

func looksLikeRegion(s string) bool {
	return regionPattern.MatchString(s)
}

func stripFIPS(s string) string {
	s = strings.TrimSuffix(s, "-fips")
	s = strings.TrimPrefix(s, "fips-")
	return s
}

// ParseHost implements Resolver.
func (defaultResolver) ParseHost(host string) (service, region string, ok bool) {
	host = strings.ToLower(host)
	if idx := strings.IndexByte(host, ':'); idx >= 0 {
		host = host[:idx]
	}

	labels := strings.Split(host, ".")
	awsIdx := -1
	for i, l := range labels {
		if l == "amazonaws" {
			awsIdx = i
			break
		}
	}
	if awsIdx < 0 || awsIdx == 0 {
		return "", "", false
	}

	prefix := labels[:awsIdx]
	last := prefix[len(prefix)-1]

	switch {
	case len(prefix) == 1:
		// Either a bare global service ("s3.amazonaws.com") or the
		// legacy combined form "s3-<region>.amazonaws.com".
		if i := strings.IndexByte(last, '-'); i > 0 && looksLikeRegion(stripFIPS(last[i+1:])) {
			service, region = last[:i], stripFIPS(last[i+1:])
		} else {
			service, region = last, defaultRegion
		}
	default:
		a, b := prefix[len(prefix)-2], last
		switch {
		case looksLikeRegion(stripFIPS(b)):
			service, region = a, stripFIPS(b)
		case looksLikeRegion(stripFIPS(a)):
			service, region = b, stripFIPS(a)
		default:
			service, region = b, defaultRegion
		}
	}

	service = stripFIPS(service)
	if canonical, found := hostToService[service]; found {
		service = canonical
	}
	return service, region, true
}

// FormatHost implements Resolver.
func (defaultResolver) FormatHost(service, region string) string {
	if region == "" {
		region = defaultRegion
	}
	label := service
	if aliased, found := serviceToHost[service]; found {
		label = aliased
	}
	suffix := "amazonaws.com"
	if strings.HasPrefix(region, "cn-") {
		suffix = "amazonaws.com.cn"
	}
	return label + "." + region + "." + suffix
}

package sigv4

import "testing"

func TestURLResolveRaw(t *testing.T) {
	u := RawURL("https://examplebucket.s3.amazonaws.com/root//folder%20A?list-type=2")
	host, pathname, rawQuery, err := u.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if host != "examplebucket.s3.amazonaws.com" {
		t.Fatalf("host = %q", host)
	}
	if pathname != "/root//folder%20A" {
		t.Fatalf("pathname = %q", pathname)
	}
	if rawQuery != "list-type=2" {
		t.Fatalf("rawQuery = %q", rawQuery)
	}
}

func TestURLResolveParsedDefaultsPathnameToRoot(t *testing.T) {
	u := ParsedURL("example.com", "", "")
	_, pathname, _, err := u.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pathname != "/" {
		t.Fatalf("pathname = %q, want /", pathname)
	}
}

func TestURLStringMissingHostWithNonRootPathIsFatal(t *testing.T) {
	u := ParsedURL("", "/foo", "")
	if _, err := u.String(); err == nil {
		t.Fatalf("expected an error for a non-root path with no host")
	}
}

func TestURLStringMissingHostWithRootPathIsFine(t *testing.T) {
	u := ParsedURL("", "", "")
	s, err := u.String()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != "https:///" {
		t.Fatalf("String() = %q", s)
	}
}

func TestURLWithQuery(t *testing.T) {
	u := ParsedURL("example.com", "/a", "x=1")
	u2 := u.WithQuery("y=2")
	if u.RawQuery != "x=1" {
		t.Fatalf("original URL was mutated")
	}
	_, _, rawQuery, _ := u2.Resolve()
	if rawQuery != "y=2" {
		t.Fatalf("rawQuery = %q, want y=2", rawQuery)
	}
}

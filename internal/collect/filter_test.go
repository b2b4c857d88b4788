package collect

import (
	"reflect"
	"testing"
)

func TestExternalOnly(t *testing.T) {
	links := []string{
		"https://kept.example.org/page",
		"https://data.europa.eu/en/dataset",
		"https://ec.europa.eu/info",
		"http://europa.eu/anything",
		"mailto:someone@example.org",
		"javascript:void(0)",
		"/relative/path",
		"http://kept-too.example.org",
		"https://twitter.com/eu_opendata",
	}
	got := ExternalOnly(links, DefaultExcludePrefixes)
	want := []string{
		"https://kept.example.org/page",
		"http://kept-too.example.org",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExternalOnly() = %v, want %v", got, want)
	}
}

func TestExternalOnlyPrefixBoundary(t *testing.T) {
	// The exclusion list works on prefixes: subpaths of an excluded site
	// are excluded, lookalike hosts are not.
	links := []string{
		"https://data.europa.eu/deep/path?x=1",
		"https://data.europa.example.org/not-the-portal",
	}
	got := ExternalOnly(links, DefaultExcludePrefixes)
	want := []string{"https://data.europa.example.org/not-the-portal"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExternalOnly() = %v, want %v", got, want)
	}
}

func TestExternalOnlyEmptyExcludeList(t *testing.T) {
	links := []string{"https://any.example.org", "ftp://not-http.example.org"}
	got := ExternalOnly(links, nil)
	want := []string{"https://any.example.org"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExternalOnly() = %v, want %v", got, want)
	}
}

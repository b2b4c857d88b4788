package reconcile

import (
	"errors"
	"reflect"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/edp-audit/odm-linkaudit/internal/manifest"
)

func testIndex(t *testing.T) *manifest.Index {
	t.Helper()
	return manifest.BuildIndex(manifest.Manifest{
		manifest.TabRecommendations: {
			{URL: "https://a.com"},
			{URL: "https://b.com"},
		},
		manifest.TabDimensions: {
			{Level: manifest.LevelPolicy, URL: "https://dim.test/policy"},
			{Level: manifest.LevelPortal, URL: "https://dim.test/portal"},
		},
		manifest.TabCountryProfiles: {},
	})
}

func TestFilterForTab(t *testing.T) {
	ix := testIndex(t)

	raw := []string{"https://a.com", "", "https://a.com", "https://b.com"}
	got, err := FilterForTab(raw, manifest.TabRecommendations, ix)
	if err != nil {
		t.Fatalf("FilterForTab() error = %v", err)
	}
	want := []string{"https://a.com", "https://b.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterForTab() = %v, want %v", got, want)
	}
}

func TestFilterForTabKeepsFirstOriginal(t *testing.T) {
	ix := testIndex(t)

	// All three normalize to https://a.com; the unlisted link is dropped.
	raw := []string{"https://A.com", "https://a.com", "https://a.com ", "https://elsewhere.com"}
	got, err := FilterForTab(raw, manifest.TabRecommendations, ix)
	if err != nil {
		t.Fatalf("FilterForTab() error = %v", err)
	}
	want := []string{"https://A.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterForTab() = %v, want %v", got, want)
	}
}

func TestFilterForTabInvalidTab(t *testing.T) {
	ix := testIndex(t)

	got, err := FilterForTab([]string{"https://a.com"}, "Quality", ix)
	var invalidTab *InvalidTabError
	if !errors.As(err, &invalidTab) {
		t.Fatalf("FilterForTab() error = %v, want *InvalidTabError", err)
	}
	if invalidTab.Tab != "Quality" {
		t.Errorf("error tab = %q, want Quality", invalidTab.Tab)
	}
	if got != nil {
		t.Errorf("no partial output on error, got %v", got)
	}
}

func TestFilterForLevel(t *testing.T) {
	ix := testIndex(t)

	raw := []string{"https://dim.test/policy", "https://dim.test/portal", "https://dim.test/policy/"}
	got := FilterForLevel(raw, manifest.LevelPolicy, ix)
	want := []string{"https://dim.test/policy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterForLevel() = %v, want %v", got, want)
	}

	if got := FilterForLevel(raw, "Atlantis", ix); len(got) != 0 {
		t.Errorf("unknown level should admit nothing, got %v", got)
	}
}

func TestCompare(t *testing.T) {
	expected := mapset.NewThreadUnsafeSet("https://a.com", "https://b.com", "https://c.com")
	retrieved := mapset.NewThreadUnsafeSet("https://b.com", "https://c.com", "https://d.com")

	diff := Compare(expected, retrieved)
	if !reflect.DeepEqual(diff.Missing, []string{"https://a.com"}) {
		t.Errorf("Missing = %v, want [https://a.com]", diff.Missing)
	}
	if !reflect.DeepEqual(diff.Unexpected, []string{"https://d.com"}) {
		t.Errorf("Unexpected = %v, want [https://d.com]", diff.Unexpected)
	}
}

func TestCompareSortsOutput(t *testing.T) {
	expected := mapset.NewThreadUnsafeSet("https://z.com", "https://m.com", "https://a.com")
	retrieved := mapset.NewThreadUnsafeSet[string]()

	diff := Compare(expected, retrieved)
	want := []string{"https://a.com", "https://m.com", "https://z.com"}
	if !reflect.DeepEqual(diff.Missing, want) {
		t.Errorf("Missing = %v, want sorted %v", diff.Missing, want)
	}
	if len(diff.Unexpected) != 0 {
		t.Errorf("Unexpected = %v, want empty", diff.Unexpected)
	}
}

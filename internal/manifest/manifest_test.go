package manifest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `{
		"Recommendations": [{"level": "", "url": "https://a.test/one"}],
		"Dimensions": [{"level": "Policy", "url": "https://b.test/two"}],
		"Country profiles": []
	}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(m[TabRecommendations]) != 1 || len(m[TabDimensions]) != 1 {
		t.Errorf("unexpected entry counts: %v", m)
	}
	if m[TabDimensions][0].Level != "Policy" {
		t.Errorf("level = %q, want Policy", m[TabDimensions][0].Level)
	}
}

func TestLoadFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not an object", `["https://a.test"]`},
		{"missing tab key", `{"Recommendations": [], "Dimensions": []}`},
		{"wrong value type", `{"Recommendations": "nope", "Dimensions": [], "Country profiles": []}`},
		{"null document", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)
			_, err := Load(path)
			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Errorf("Load() error = %v, want *FormatError", err)
			}
		})
	}
}

func TestLoadMissingFileIsNotFormatError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		t.Error("a missing file must not be reported as a format error")
	}
}

func TestKeyAndFromKey(t *testing.T) {
	tests := []struct {
		tab string
		key string
	}{
		{TabRecommendations, "recommendations"},
		{TabDimensions, "dimensions"},
		{TabCountryProfiles, "country_profiles"},
	}
	for _, tt := range tests {
		if got := Key(tt.tab); got != tt.key {
			t.Errorf("Key(%q) = %q, want %q", tt.tab, got, tt.key)
		}
		if got := Key(tt.key); got != tt.key {
			t.Errorf("Key(%q) should be a no-op, got %q", tt.key, got)
		}
		tab, ok := FromKey(tt.key)
		if !ok || tab != tt.tab {
			t.Errorf("FromKey(%q) = (%q, %t), want (%q, true)", tt.key, tab, ok, tt.tab)
		}
	}
	if _, ok := FromKey("downloads"); ok {
		t.Error("FromKey should reject unknown keys")
	}
}

func TestBuildIndex(t *testing.T) {
	m := Manifest{
		TabRecommendations: {
			{URL: "https://A.test/One/"},
			{URL: ""},
		},
		TabDimensions: {
			{Level: LevelPolicy, URL: "https://b.test/policy"},
			{Level: LevelPortal, URL: "https://b.test/portal"},
			{Level: "", URL: "https://b.test/unleveled"},
		},
		TabCountryProfiles: {},
	}
	ix := BuildIndex(m)

	recs, ok := ix.TabSet(TabRecommendations)
	if !ok {
		t.Fatal("TabSet(Recommendations) missing")
	}
	if !recs.Contains("https://a.test/One") {
		t.Errorf("normalized membership missing, set = %v", recs.ToSlice())
	}
	if recs.Cardinality() != 1 {
		t.Errorf("empty url should be skipped, cardinality = %d", recs.Cardinality())
	}

	dims, _ := ix.TabSet(TabDimensions)
	if dims.Cardinality() != 3 {
		t.Errorf("dimensions cardinality = %d, want 3", dims.Cardinality())
	}

	if _, ok := ix.TabSet("Quality"); ok {
		t.Error("TabSet should reject unknown tabs")
	}

	if !ix.LevelSet(LevelPolicy).Contains("https://b.test/policy") {
		t.Error("policy level set missing its url")
	}
	if !ix.LevelSet("Atlantis").IsEmpty() {
		t.Error("unknown level should yield an empty set")
	}

	if got := ix.LevelOf(TabDimensions, "https://b.test/portal"); got != LevelPortal {
		t.Errorf("LevelOf = %q, want %q", got, LevelPortal)
	}
	if got := ix.LevelOf(TabDimensions, "https://b.test/unleveled"); got != "Unknown" {
		t.Errorf("LevelOf unleveled = %q, want Unknown", got)
	}
	if got := ix.LevelOf(TabRecommendations, "https://a.test/One"); got != "Unknown" {
		t.Errorf("LevelOf without level = %q, want Unknown", got)
	}
}

func TestBuildIndexLevelsOnlyFromDimensions(t *testing.T) {
	m := Manifest{
		TabRecommendations: {{Level: LevelPolicy, URL: "https://rec.test/x"}},
		TabDimensions:      {},
		TabCountryProfiles: {},
	}
	ix := BuildIndex(m)
	if !ix.LevelSet(LevelPolicy).IsEmpty() {
		t.Error("level sets must be populated from the Dimensions tab only")
	}
}

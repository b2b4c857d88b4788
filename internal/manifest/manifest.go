package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

// Tab names as they appear in the portal and in the manifest document.
const (
	TabRecommendations = "Recommendations"
	TabDimensions      = "Dimensions"
	TabCountryProfiles = "Country profiles"
)

// Levels of the Dimensions tab that carry their own link tables. The
// Quality dimension has no table and therefore no level entries.
const (
	LevelPolicy = "Policy"
	LevelPortal = "Portal"
	LevelImpact = "Impact"
)

// Tabs returns the three portal tabs in display order.
func Tabs() []string {
	return []string{TabRecommendations, TabDimensions, TabCountryProfiles}
}

// Levels returns the Dimensions levels in display order.
func Levels() []string {
	return []string{LevelPolicy, LevelPortal, LevelImpact}
}

// Key derives the artifact key for a tab name, e.g. "Country profiles"
// becomes "country_profiles". Applying Key to a key is a no-op, so both
// spellings are safe to pass around.
func Key(tab string) string {
	return strings.ReplaceAll(strings.ToLower(tab), " ", "_")
}

// FromKey maps an intake key back to its tab name, reporting whether the
// key names one of the three known tabs.
func FromKey(key string) (string, bool) {
	for _, tab := range Tabs() {
		if Key(tab) == key {
			return tab, true
		}
	}
	return "", false
}

// Entry is one expected link in the manifest.
type Entry struct {
	Level string `json:"level"`
	URL   string `json:"url"`
}

// Manifest maps each tab name to its expected link entries. It is loaded
// once per run and treated as read-only ground truth.
type Manifest map[string][]Entry

// FormatError reports a manifest document that does not have the expected
// shape.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
}

// Load reads and validates the manifest document at path. The document
// must be a JSON object carrying all three tab keys, each holding an
// array of entries. A missing file surfaces as the underlying read error
// so callers can tell absent ground truth apart from malformed ground
// truth.
func Load(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("not a tab-to-entries object: %v", err)}
	}
	for _, tab := range Tabs() {
		if _, ok := m[tab]; !ok {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("missing required tab %q", tab)}
		}
	}
	return m, nil
}

// Index holds the derived membership sets used during reconciliation and
// reporting. Building it is pure and deterministic, so callers may hold
// onto one per run or rebuild at will.
type Index struct {
	tabs    map[string]mapset.Set[string]
	levels  map[string]mapset.Set[string]
	levelOf map[string]map[string]string
}

// BuildIndex derives the tab and level membership sets over normalized
// URLs. Entries with an empty url are skipped. Level sets are populated
// from the Dimensions tab only, for entries carrying a non-empty level.
func BuildIndex(m Manifest) *Index {
	ix := &Index{
		tabs:    make(map[string]mapset.Set[string]),
		levels:  make(map[string]mapset.Set[string]),
		levelOf: make(map[string]map[string]string),
	}
	for _, tab := range Tabs() {
		set := mapset.NewThreadUnsafeSet[string]()
		levelByURL := make(map[string]string)
		for _, entry := range m[tab] {
			if entry.URL == "" {
				continue
			}
			norm := urlnorm.Normalize(entry.URL)
			set.Add(norm)
			if entry.Level == "" {
				continue
			}
			if _, ok := levelByURL[norm]; !ok {
				levelByURL[norm] = entry.Level
			}
			if tab == TabDimensions {
				lvl, ok := ix.levels[entry.Level]
				if !ok {
					lvl = mapset.NewThreadUnsafeSet[string]()
					ix.levels[entry.Level] = lvl
				}
				lvl.Add(norm)
			}
		}
		ix.tabs[tab] = set
		ix.levelOf[tab] = levelByURL
	}
	return ix
}

// TabSet returns the normalized expected set for a tab, reporting whether
// the tab is one of the three known tabs.
func (ix *Index) TabSet(tab string) (mapset.Set[string], bool) {
	set, ok := ix.tabs[tab]
	return set, ok
}

// LevelSet returns the normalized expected set for a Dimensions level. An
// unknown level yields an empty set, not an error.
func (ix *Index) LevelSet(level string) mapset.Set[string] {
	if set, ok := ix.levels[level]; ok {
		return set
	}
	return mapset.NewThreadUnsafeSet[string]()
}

// LevelOf reports the level recorded for a normalized URL under a tab, or
// "Unknown" when the manifest carries none.
func (ix *Index) LevelOf(tab, normURL string) string {
	if lvl, ok := ix.levelOf[tab][normURL]; ok {
		return lvl
	}
	return "Unknown"
}

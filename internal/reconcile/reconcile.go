package reconcile

import (
	"fmt"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/edp-audit/odm-linkaudit/internal/manifest"
	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

// InvalidTabError reports a reconciliation request for a tab name outside
// the portal's taxonomy. Always a bug at the call site rather than a
// runtime condition to recover from.
type InvalidTabError struct {
	Tab string
}

func (e *InvalidTabError) Error() string {
	return fmt.Sprintf("invalid tab %q, want one of %v", e.Tab, manifest.Tabs())
}

// FilterForTab keeps the raw links the manifest allows for tab. Null and
// empty entries are dropped, input order is preserved, and links that
// normalize to the same target collapse onto the first-seen original
// string.
func FilterForTab(raw []string, tab string, ix *manifest.Index) ([]string, error) {
	allowed, ok := ix.TabSet(tab)
	if !ok {
		return nil, &InvalidTabError{Tab: tab}
	}
	return filter(raw, allowed), nil
}

// FilterForLevel applies FilterForTab's semantics against a Dimensions
// level set. An unknown level admits nothing rather than failing.
func FilterForLevel(raw []string, level string, ix *manifest.Index) []string {
	return filter(raw, ix.LevelSet(level))
}

func filter(raw []string, allowed mapset.Set[string]) []string {
	kept := make([]string, 0, len(raw))
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, link := range raw {
		norm := urlnorm.Normalize(link)
		if norm == "" || !allowed.Contains(norm) || seen.Contains(norm) {
			continue
		}
		seen.Add(norm)
		kept = append(kept, link)
	}
	return kept
}

// Diff holds the two reconciliation differences, each sorted
// lexicographically by normalized URL for stable report output.
type Diff struct {
	Missing    []string
	Unexpected []string
}

// Compare computes expected-minus-retrieved and retrieved-minus-expected
// over normalized URL sets.
func Compare(expected, retrieved mapset.Set[string]) Diff {
	return Diff{
		Missing:    sortedSlice(expected.Difference(retrieved)),
		Unexpected: sortedSlice(retrieved.Difference(expected)),
	}
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

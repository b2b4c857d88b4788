package report

import (
	"net/http"
	"slices"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/edp-audit/odm-linkaudit/internal/manifest"
	"github.com/edp-audit/odm-linkaudit/internal/reconcile"
	"github.com/edp-audit/odm-linkaudit/internal/status"
	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

// TabStats aggregates one tab's reconciliation and probe outcomes.
type TabStats struct {
	Tab        string
	Expected   int
	Retrieved  int
	Missing    []string
	Unexpected []string
	OK200      int
	Non200     int
	PctOK      float64
	Records    []status.Record
}

// Problem is one non-200 link, deduplicated across tabs by normalized
// URL. The first-seen status, method and error win; later occurrences of
// the same link only fill fields that are still empty and add their tab.
type Problem struct {
	URL        string
	Norm       string
	StatusCode *int
	Method     string
	Error      *string
	Tabs       []string
}

// Report is recomputed in full from the manifest and the persisted status
// artifacts on every invocation; it holds no state of its own.
type Report struct {
	GeneratedAt time.Time
	Stats       []TabStats
	Problems    []Problem

	levels *manifest.Index
}

// Build aggregates the report from ground truth and the artifact store.
// The caller loads the manifest first; without ground truth no report can
// be produced at all.
func Build(m manifest.Manifest, store *status.Store) (*Report, error) {
	ix := manifest.BuildIndex(m)
	rep := &Report{
		GeneratedAt: time.Now().UTC(),
		levels:      ix,
	}
	problems := newProblemCollector()

	for _, tab := range manifest.Tabs() {
		records, err := store.Load(manifest.Key(tab))
		if err != nil {
			return nil, err
		}
		expected, _ := ix.TabSet(tab)
		retrieved := mapset.NewThreadUnsafeSet[string]()
		okCount := 0
		for _, record := range records {
			retrieved.Add(urlnorm.Normalize(record.URL))
			if code, ok := record.Code(); ok && code == http.StatusOK {
				okCount++
			} else {
				problems.add(tab, record)
			}
		}
		diff := reconcile.Compare(expected, retrieved)
		rep.Stats = append(rep.Stats, TabStats{
			Tab:        tab,
			Expected:   expected.Cardinality(),
			Retrieved:  retrieved.Cardinality(),
			Missing:    diff.Missing,
			Unexpected: diff.Unexpected,
			OK200:      okCount,
			Non200:     len(records) - okCount,
			PctOK:      pct(okCount, len(records)),
			Records:    records,
		})
	}

	rep.Problems = problems.sorted()
	return rep, nil
}

type problemCollector struct {
	byNorm map[string]*Problem
}

func newProblemCollector() *problemCollector {
	return &problemCollector{byNorm: make(map[string]*Problem)}
}

func (c *problemCollector) add(tab string, record status.Record) {
	norm := urlnorm.Normalize(record.URL)
	existing, ok := c.byNorm[norm]
	if !ok {
		c.byNorm[norm] = &Problem{
			URL:        record.URL,
			Norm:       norm,
			StatusCode: record.StatusCode,
			Method:     record.MethodUsed,
			Error:      record.Error,
			Tabs:       []string{tab},
		}
		return
	}
	if existing.StatusCode == nil {
		existing.StatusCode = record.StatusCode
	}
	if existing.Method == "" {
		existing.Method = record.MethodUsed
	}
	if existing.Error == nil {
		existing.Error = record.Error
	}
	if !slices.Contains(existing.Tabs, tab) {
		existing.Tabs = append(existing.Tabs, tab)
	}
}

func (c *problemCollector) sorted() []Problem {
	out := make([]Problem, 0, len(c.byNorm))
	for _, problem := range c.byNorm {
		out = append(out, *problem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Norm < out[j].Norm })
	return out
}

func pct(ok, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(ok) * 100 / float64(total)
}

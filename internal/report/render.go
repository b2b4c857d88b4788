package report

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/rodaine/table"

	"github.com/edp-audit/odm-linkaudit/internal/status"
	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

const unreachableLabel = "n/a (unreachable)"

type non200Entry struct {
	tab    string
	record status.Record
}

// Render writes the human-readable audit report. Output order is fixed so
// two runs over the same artifacts produce identical text.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintf(w, "Link audit report (generated %s)\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	r.renderSummary(w)
	r.renderDiffs(w)
	r.renderNon200(w)
	r.renderProblems(w)
}

func (r *Report) renderSummary(w io.Writer) {
	tbl := table.New("Tab", "Expected", "Retrieved", "Missing", "Unexpected", "OK (200)", "Not 200", "% OK").WithWriter(w)
	for _, stats := range r.Stats {
		tbl.AddRow(stats.Tab, stats.Expected, stats.Retrieved,
			len(stats.Missing), len(stats.Unexpected),
			stats.OK200, stats.Non200, fmt.Sprintf("%.1f%%", stats.PctOK))
	}
	tbl.Print()
	fmt.Fprintln(w)
}

func (r *Report) renderDiffs(w io.Writer) {
	for _, stats := range r.Stats {
		if len(stats.Missing) == 0 {
			continue
		}
		fmt.Fprintf(w, "Missing on %q (in manifest, not retrieved):\n", stats.Tab)
		for _, link := range stats.Missing {
			fmt.Fprintf(w, "  %s\n", link)
		}
		fmt.Fprintln(w)
	}
	for _, stats := range r.Stats {
		if len(stats.Unexpected) == 0 {
			continue
		}
		fmt.Fprintf(w, "Unexpected on %q (retrieved, not in manifest):\n", stats.Tab)
		for _, link := range stats.Unexpected {
			fmt.Fprintf(w, "  %s\n", link)
		}
		fmt.Fprintln(w)
	}
}

func (r *Report) renderNon200(w io.Writer) {
	byCode := make(map[int][]non200Entry)
	var unreachable []non200Entry
	for _, stats := range r.Stats {
		for _, record := range stats.Records {
			code, ok := record.Code()
			if ok && code == http.StatusOK {
				continue
			}
			if !ok {
				unreachable = append(unreachable, non200Entry{tab: stats.Tab, record: record})
			} else {
				byCode[code] = append(byCode[code], non200Entry{tab: stats.Tab, record: record})
			}
		}
	}
	if len(byCode) == 0 && len(unreachable) == 0 {
		fmt.Fprintln(w, "All probed links returned 200.")
		fmt.Fprintln(w)
		return
	}

	codes := make([]int, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	fmt.Fprintln(w, "Links not returning 200, grouped by status:")
	for _, code := range codes {
		fmt.Fprintf(w, "\n%d %s:\n", code, StatusLabel(code))
		r.renderGroup(w, byCode[code])
	}
	if len(unreachable) > 0 {
		fmt.Fprintf(w, "\n%s:\n", unreachableLabel)
		r.renderGroup(w, unreachable)
	}
	fmt.Fprintln(w)
}

func (r *Report) renderGroup(w io.Writer, entries []non200Entry) {
	for _, e := range entries {
		level := r.levels.LevelOf(e.tab, urlnorm.Normalize(e.record.URL))
		errText := "-"
		if e.record.Error != nil {
			errText = *e.record.Error
		}
		fmt.Fprintf(w, "  [%s] %s (level: %s, method: %s, error: %s)\n",
			e.tab, e.record.URL, level, e.record.MethodUsed, errText)
	}
}

func (r *Report) renderProblems(w io.Writer) {
	if len(r.Problems) == 0 {
		return
	}
	fmt.Fprintln(w, "Problem links across all tabs:")
	tbl := table.New("URL", "Status", "Method", "Error", "Tabs").WithWriter(w)
	for _, problem := range r.Problems {
		statusText := "n/a"
		if problem.StatusCode != nil {
			statusText = fmt.Sprintf("%d", *problem.StatusCode)
		}
		errText := "-"
		if problem.Error != nil {
			errText = *problem.Error
		}
		tbl.AddRow(problem.URL, statusText, problem.Method, errText, strings.Join(problem.Tabs, ", "))
	}
	tbl.Print()
}

// StatusLabel names an HTTP status code, falling back to "Unknown" for
// codes the standard library has no text for.
func StatusLabel(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown"
}

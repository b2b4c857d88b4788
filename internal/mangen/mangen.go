package mangen

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/edp-audit/odm-linkaudit/internal/manifest"
)

// Column header spellings accepted in worksheet exports. Matching is
// case-insensitive, exact spellings first, substrings second.
var (
	tabHeaders   = []string{"tab", "section", "category"}
	levelHeaders = []string{"level", "tier", "depth"}
	linkHeaders  = []string{"external link", "link", "url", "href"}
)

var linkSplitter = regexp.MustCompile(`[\s,;]+`)

// Build reads a CSV export of the maturity tracking worksheet and derives
// the manifest from it. Merged tab and level cells arrive as empty
// strings and inherit the value above them. Cells may hold several links
// separated by whitespace, commas or semicolons; tokens that are not
// http(s) URLs are discarded.
func Build(inputPath string) (manifest.Manifest, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inputPath, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("worksheet %s is empty", inputPath)
	}

	header := rows[0]
	tabCol := findColumn(header, tabHeaders)
	levelCol := findColumn(header, levelHeaders)
	linkCol := findColumn(header, linkHeaders)
	if linkCol < 0 {
		return nil, fmt.Errorf("worksheet %s has no link column (accepted headers: %s)",
			inputPath, strings.Join(linkHeaders, ", "))
	}

	m := manifest.Manifest{}
	for _, tab := range manifest.Tabs() {
		m[tab] = []manifest.Entry{}
	}

	currentTab := ""
	currentLevel := ""
	for _, row := range rows[1:] {
		if tab := cell(row, tabCol); tab != "" {
			currentTab = canonicalTab(tab)
			currentLevel = ""
		}
		if level := cell(row, levelCol); level != "" {
			currentLevel = canonicalLevel(level)
		}
		if currentTab == "" {
			continue
		}
		for _, link := range splitLinks(cell(row, linkCol)) {
			m[currentTab] = append(m[currentTab], manifest.Entry{Level: currentLevel, URL: link})
		}
	}
	return m, nil
}

// Generate builds the manifest from a worksheet export and writes it as
// the JSON document the audit loads as ground truth.
func Generate(inputPath, outputPath string) error {
	m, err := Build(inputPath)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(outputPath, raw, 0o644)
}

func findColumn(header []string, names []string) int {
	for i, raw := range header {
		h := strings.TrimSpace(strings.ToLower(raw))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	for i, raw := range header {
		h := strings.TrimSpace(strings.ToLower(raw))
		for _, name := range names {
			if strings.Contains(h, name) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func canonicalTab(raw string) string {
	for _, tab := range manifest.Tabs() {
		if strings.EqualFold(raw, tab) {
			return tab
		}
	}
	return raw
}

func canonicalLevel(raw string) string {
	for _, level := range manifest.Levels() {
		if strings.EqualFold(raw, level) {
			return level
		}
	}
	return raw
}

func splitLinks(cellText string) []string {
	if cellText == "" {
		return nil
	}
	var links []string
	for _, token := range linkSplitter.Split(cellText, -1) {
		if strings.HasPrefix(token, "http://") || strings.HasPrefix(token, "https://") {
			links = append(links, token)
		}
	}
	return links
}

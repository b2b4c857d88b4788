package export

import (
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/report"
)

type summaryRecord struct {
	Tab        string   `json:"tab"`
	Expected   int      `json:"expected"`
	Retrieved  int      `json:"retrieved"`
	Missing    []string `json:"missing"`
	Unexpected []string `json:"unexpected"`
	OK200      int      `json:"ok_200"`
	Not200     int      `json:"not_200"`
	PctOK      float64  `json:"pct_ok"`
}

type problemRecord struct {
	URL        string   `json:"url"`
	StatusCode *int     `json:"status_code"`
	Method     string   `json:"method"`
	Error      *string  `json:"error"`
	Tabs       []string `json:"tabs"`
}

type jsonDocument struct {
	GeneratedAt string          `json:"generated_at"`
	Tabs        []summaryRecord `json:"tabs"`
	Problems    []problemRecord `json:"problems"`
}

type JsonExporter struct{}

func NewJsonExporter() Exporter {
	return &JsonExporter{}
}

func (e *JsonExporter) Export(rep *report.Report, filename string) error {
	file, err := os.Create(filename + ".json")
	if err != nil {
		logger.L().Error("creating export file failed", zap.String("file", filename+".json"), zap.Error(err))
		return err
	}
	defer file.Close()

	var doc jsonDocument
	e.transformData(rep, &doc)

	raw, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		logger.L().Error("marshalling report failed", zap.Error(err))
		return err
	}

	if _, err := file.Write(raw); err != nil {
		logger.L().Error("writing JSON export failed", zap.Error(err))
		return err
	}
	return nil
}

func (e *JsonExporter) transformData(rep *report.Report, doc *jsonDocument) {
	doc.GeneratedAt = rep.GeneratedAt.Format(time.RFC3339)
	doc.Tabs = make([]summaryRecord, 0, len(rep.Stats))
	for _, stats := range rep.Stats {
		doc.Tabs = append(doc.Tabs, summaryRecord{
			Tab:        stats.Tab,
			Expected:   stats.Expected,
			Retrieved:  stats.Retrieved,
			Missing:    emptyIfNil(stats.Missing),
			Unexpected: emptyIfNil(stats.Unexpected),
			OK200:      stats.OK200,
			Not200:     stats.Non200,
			PctOK:      stats.PctOK,
		})
	}
	doc.Problems = make([]problemRecord, 0, len(rep.Problems))
	for _, problem := range rep.Problems {
		doc.Problems = append(doc.Problems, problemRecord{
			URL:        problem.URL,
			StatusCode: problem.StatusCode,
			Method:     problem.Method,
			Error:      problem.Error,
			Tabs:       emptyIfNil(problem.Tabs),
		})
	}
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

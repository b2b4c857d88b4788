package export

import (
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/report"
)

type problemRow struct {
	URL        string `csv:"url"`
	StatusCode string `csv:"status_code"`
	Method     string `csv:"method"`
	Error      string `csv:"error"`
	Tabs       string `csv:"tabs"`
}

type CSVExporter struct{}

func NewCSVExporter() Exporter {
	return &CSVExporter{}
}

// Export writes the problem links as one flat CSV table. Per-tab summary
// numbers stay in the JSON export, which can carry the nesting.
func (e *CSVExporter) Export(rep *report.Report, filename string) error {
	file, err := os.Create(filename + ".csv")
	if err != nil {
		logger.L().Error("creating export file failed", zap.String("file", filename+".csv"), zap.Error(err))
		return err
	}
	defer file.Close()

	var rows []problemRow
	e.transformData(rep, &rows)

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		logger.L().Error("writing CSV export failed", zap.Error(err))
		return err
	}
	return nil
}

func (e *CSVExporter) transformData(rep *report.Report, rows *[]problemRow) {
	for _, problem := range rep.Problems {
		statusText := "n/a"
		if problem.StatusCode != nil {
			statusText = strconv.Itoa(*problem.StatusCode)
		}
		errText := ""
		if problem.Error != nil {
			errText = *problem.Error
		}
		*rows = append(*rows, problemRow{
			URL:        problem.URL,
			StatusCode: statusText,
			Method:     problem.Method,
			Error:      errText,
			Tabs:       strings.Join(problem.Tabs, ";"),
		})
	}
}

package export

import "github.com/edp-audit/odm-linkaudit/internal/report"

type Exporter interface {
	// Export writes the report to the specified file
	Export(rep *report.Report, filename string) error
}

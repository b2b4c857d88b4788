package status

import "time"

// Record is the outcome of one liveness probe. Records are persisted
// as-is to per-tab JSON artifacts, so the field names are a wire
// contract; StatusCode and Error stay null in JSON when the probe never
// got a response.
type Record struct {
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url"`
	StatusCode *int      `json:"status_code"`
	OK         bool      `json:"ok"`
	MethodUsed string    `json:"method_used"`
	Error      *string   `json:"error"`
	ElapsedMS  float64   `json:"elapsed_ms"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Code returns the HTTP status code, with ok reporting whether the probe
// ever produced one.
func (r Record) Code() (int, bool) {
	if r.StatusCode == nil {
		return 0, false
	}
	return *r.StatusCode, true
}

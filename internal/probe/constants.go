package probe

import "time"

const (
	DefaultWorkers   = 12               // width of the probe worker pool
	DefaultTimeout   = 10 * time.Second // per-request timeout
	DefaultUserAgent = "Mozilla/5.0 (compatible; ODM-LinkChecker/1.0)"

	maxDrainBytes = 1 << 20 // GET bodies are drained up to this much for connection reuse
)

// headFallbackCodes are the HEAD responses that trigger a single GET
// retry. Servers that reject or mishandle HEAD tend to answer with one of
// these even when the resource itself is fine.
var headFallbackCodes = map[int]bool{
	0:   true,
	400: true,
	401: true,
	402: true,
	403: true,
	404: true,
	405: true,
}

package probe

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/status"
	"github.com/edp-audit/odm-linkaudit/internal/worker"
)

// Options configures a Prober. Zero values fall back to the package
// defaults; the zero InsecureTLS means certificates are verified.
type Options struct {
	Timeout     time.Duration
	InsecureTLS bool
	Workers     int
	UserAgent   string
}

// Prober checks link liveness over a shared HTTP client and worker pool.
// Redirects are followed by the client and the landing URL is recorded on
// each Record.
type Prober struct {
	client    *http.Client
	pool      *worker.Pool
	userAgent string
}

func New(opts Options) (*Prober, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	pool, err := worker.NewPool(opts.Workers)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: opts.InsecureTLS}

	return &Prober{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		pool:      pool,
		userAgent: opts.UserAgent,
	}, nil
}

// Close releases the worker pool, waiting briefly for in-flight probes.
func (p *Prober) Close() {
	_ = p.pool.Release(5 * time.Second)
}

// Check probes one URL. HEAD goes first; a transport failure or a status
// hinting that HEAD itself was rejected triggers exactly one GET retry.
// Check never fails: a link that cannot be reached at all terminates in a
// Record with a null status code and the fallback error string.
func (p *Prober) Check(ctx context.Context, rawURL string) status.Record {
	started := time.Now()
	record := status.Record{
		URL:        rawURL,
		FinalURL:   rawURL,
		MethodUsed: http.MethodHead,
		CheckedAt:  started.UTC(),
	}

	code, finalURL, err := p.attempt(ctx, http.MethodHead, rawURL)
	if err == nil && !headFallbackCodes[code] {
		conclude(&record, code, finalURL, started)
		return record
	}

	code, finalURL, err = p.attempt(ctx, http.MethodGet, rawURL)
	if err == nil {
		record.MethodUsed = http.MethodGet
		conclude(&record, code, finalURL, started)
		return record
	}

	msg := err.Error()
	record.Error = &msg
	record.ElapsedMS = elapsedMS(started)
	logger.L().Warn("link unreachable", zap.String("url", rawURL), zap.String("error", msg))
	return record
}

func (p *Prober) attempt(ctx context.Context, method, rawURL string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if method == http.MethodGet {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return resp.StatusCode, finalURL, nil
}

func conclude(record *status.Record, code int, finalURL string, started time.Time) {
	record.StatusCode = &code
	record.OK = code >= 200 && code < 400
	record.FinalURL = finalURL
	record.ElapsedMS = elapsedMS(started)
}

func elapsedMS(started time.Time) float64 {
	return time.Since(started).Seconds() * 1000
}

package probe

import (
	"context"
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/manifest"
	"github.com/edp-audit/odm-linkaudit/internal/status"
	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

// CheckAll probes every distinct link in links concurrently over the
// worker pool. Distinctness is judged on the normalized form, the
// first-seen original string is the one probed, and empty entries are
// dropped. Records arrive in completion order, not submission order.
func (p *Prober) CheckAll(ctx context.Context, links []string) []status.Record {
	distinct := dedupe(links)
	records := make([]status.Record, 0, len(distinct))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, link := range distinct {
		link := link
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			record := p.Check(ctx, link)
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
		}); err != nil {
			wg.Done()
			logger.L().Error("probe submission failed", zap.String("url", link), zap.Error(err))
		}
	}
	wg.Wait()
	return records
}

// CheckTabs probes each tab's collection independently and persists one
// artifact per tab, named from the tab key. Every tab runs to completion
// even when another tab fails to persist; the first persistence error is
// returned once the whole batch has finished.
func (p *Prober) CheckTabs(ctx context.Context, linksByTab map[string][]string, store *status.Store) (map[string]string, error) {
	var (
		g     errgroup.Group
		mu    sync.Mutex
		paths = make(map[string]string, len(linksByTab))
	)
	for tab, links := range linksByTab {
		tab, links := tab, links
		g.Go(func() error {
			records := p.CheckAll(ctx, links)
			path, err := store.Save(manifest.Key(tab), records)
			if err != nil {
				return fmt.Errorf("tab %s: %w", tab, err)
			}
			mu.Lock()
			paths[tab] = path
			mu.Unlock()
			logger.L().Info("status artifact written",
				zap.String("tab", tab),
				zap.String("path", path),
				zap.Int("links", len(records)))
			return nil
		})
	}
	err := g.Wait()
	return paths, err
}

func dedupe(links []string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]string, 0, len(links))
	for _, link := range links {
		norm := urlnorm.Normalize(link)
		if norm == "" || seen.Contains(norm) {
			continue
		}
		seen.Add(norm)
		out = append(out, link)
	}
	return out
}

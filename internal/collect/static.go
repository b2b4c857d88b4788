package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/manifest"
	"github.com/edp-audit/odm-linkaudit/pkg/urlnorm"
)

// StaticSource fetches a configured set of plain HTML pages per tab and
// harvests their anchor targets, keeping external links only. It covers
// static mirrors and server-rendered deployments of the portal; pages
// shared between tabs are fetched once thanks to the flight group.
type StaticSource struct {
	client          *http.Client
	pages           map[string][]string
	excludePrefixes []string
	username        string
	password        string

	flightGroup singleflight.Group
}

type StaticOptions struct {
	Timeout         time.Duration
	Pages           map[string][]string // tab key -> page URLs
	ExcludePrefixes []string
	Username        string // basic auth for protected environments
	Password        string
}

func NewStaticSource(opts StaticOptions) *StaticSource {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	excludePrefixes := opts.ExcludePrefixes
	if excludePrefixes == nil {
		excludePrefixes = DefaultExcludePrefixes
	}
	return &StaticSource{
		client:          &http.Client{Timeout: opts.Timeout},
		pages:           opts.Pages,
		excludePrefixes: excludePrefixes,
		username:        opts.Username,
		password:        opts.Password,
	}
}

func (s *StaticSource) Links(ctx context.Context) (map[string][]string, error) {
	for key := range s.pages {
		if _, ok := manifest.FromKey(key); !ok {
			return nil, fmt.Errorf("unknown tab key %q in page config", key)
		}
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	links := make(map[string][]string, len(s.pages))
	for key, pages := range s.pages {
		key, pages := key, pages
		g.Go(func() error {
			var collected []string
			for _, page := range pages {
				harvested, err := s.fetchLinks(ctx, page)
				if err != nil {
					return fmt.Errorf("collect %s: %w", page, err)
				}
				logger.L().Debug("page harvested",
					zap.String("tab_key", key),
					zap.String("page", page),
					zap.Int("links", len(harvested)))
				collected = append(collected, harvested...)
			}
			mu.Lock()
			links[key] = ExternalOnly(collected, s.excludePrefixes)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return links, nil
}

// fetchLinks funnels concurrent requests for the same page through the
// flight group so tabs sharing a page do not fetch it twice.
func (s *StaticSource) fetchLinks(ctx context.Context, page string) ([]string, error) {
	val, err, _ := s.flightGroup.Do(page, func() (interface{}, error) {
		return s.harvest(ctx, page)
	})
	if err != nil {
		return nil, err
	}
	harvested, ok := val.([]string)
	if !ok {
		return nil, fmt.Errorf("unexpected flight result for %s", page)
	}
	return harvested, nil
}

func (s *StaticSource) harvest(ctx context.Context, page string) ([]string, error) {
	scheme, host, err := urlnorm.Origin(page)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
	if err != nil {
		return nil, err
	}
	if s.username != "" {
		req.SetBasicAuth(s.username, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return extractLinks(resp.Body, scheme, host)
}

func extractLinks(body io.Reader, scheme, host string) ([]string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, a := range n.Attr {
				if a.Key == "href" {
					link, err := resolveHref(a.Val, scheme, host)
					if err != nil {
						continue
					}
					links = append(links, link)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func resolveHref(href, scheme, host string) (string, error) {
	// if empty string, return error
	if href == "" {
		return "", errors.New("empty string")
	}
	if strings.HasPrefix(href, "#") {
		return "", errors.New("anchor link")
	}
	// if start with /, then it's a relative path
	if strings.HasPrefix(href, "/") {
		return scheme + "://" + host + href, nil
	}
	// if start with http or https, then it's an absolute path
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href, nil
	}
	return "", errors.New("invalid URL")
}

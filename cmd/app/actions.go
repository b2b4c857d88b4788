package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/edp-audit/odm-linkaudit/internal/collect"
	"github.com/edp-audit/odm-linkaudit/internal/config"
	"github.com/edp-audit/odm-linkaudit/internal/export"
	"github.com/edp-audit/odm-linkaudit/internal/logger"
	"github.com/edp-audit/odm-linkaudit/internal/mangen"
	"github.com/edp-audit/odm-linkaudit/internal/manifest"
	"github.com/edp-audit/odm-linkaudit/internal/probe"
	"github.com/edp-audit/odm-linkaudit/internal/reconcile"
	"github.com/edp-audit/odm-linkaudit/internal/report"
	"github.com/edp-audit/odm-linkaudit/internal/status"
)

// setup loads the config, applies command line overrides and initializes
// logging. Every action starts here.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("manifest") {
		cfg.Manifest.Path = c.String("manifest")
	}
	if c.IsSet("status-dir") {
		cfg.Status.Dir = c.String("status-dir")
	}
	if c.IsSet("workers") {
		cfg.Probe.Workers = c.Int("workers")
	}
	if c.IsSet("timeout") {
		cfg.Probe.Timeout = c.Duration("timeout")
	}
	if c.IsSet("insecure") {
		cfg.Probe.VerifyTLS = !c.Bool("insecure")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func auditAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	runID := uuid.NewString()
	log := logger.L().With(zap.String("run_id", runID))
	log.Info("starting link audit",
		zap.String("environment", cfg.Portal.Environment),
		zap.String("manifest", cfg.Manifest.Path),
		zap.Int("workers", cfg.Probe.Workers))

	source, err := linksSource(c, cfg)
	if err != nil {
		return err
	}
	collected, err := source.Links(c.Context)
	if err != nil {
		return fmt.Errorf("collecting links: %w", err)
	}
	total := 0
	for _, raw := range collected {
		total += len(raw)
	}
	log.Info("links collected", zap.Int("links", total), zap.Int("tabs", len(collected)))

	store := status.NewStore(cfg.Status.Dir)

	// A broken manifest stops reconciliation and reporting, but the
	// probe results are still worth persisting for a later report run.
	m, manifestErr := manifest.Load(cfg.Manifest.Path)
	if manifestErr != nil {
		log.Error("manifest unavailable, probing without reconciliation", zap.Error(manifestErr))
		if _, err := probeTabs(c, cfg, collected, store); err != nil {
			return err
		}
		return manifestErr
	}

	ix := manifest.BuildIndex(m)
	byTab := make(map[string][]string, len(collected))
	for key, raw := range collected {
		tab, ok := manifest.FromKey(key)
		if !ok {
			return fmt.Errorf("collected links carry unknown tab key %q", key)
		}
		matching, err := reconcile.FilterForTab(raw, tab, ix)
		if err != nil {
			return err
		}
		log.Info("tab collected",
			zap.String("tab", tab),
			zap.Int("links", len(raw)),
			zap.Int("in_manifest", len(matching)))
		byTab[tab] = raw
	}
	if dims, ok := byTab[manifest.TabDimensions]; ok {
		for _, level := range manifest.Levels() {
			matched := reconcile.FilterForLevel(dims, level, ix)
			log.Info("dimension level collected",
				zap.String("level", level), zap.Int("in_manifest", len(matched)))
		}
	}

	paths, err := probeTabs(c, cfg, byTab, store)
	if err != nil {
		return err
	}
	log.Info("probing finished", zap.Int("tabs", len(paths)))

	rep, err := report.Build(m, store)
	if err != nil {
		return err
	}
	rep.Render(os.Stdout)
	return exportReport(c, rep)
}

func probeAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := linksSource(c, cfg)
	if err != nil {
		return err
	}
	collected, err := source.Links(c.Context)
	if err != nil {
		return fmt.Errorf("collecting links: %w", err)
	}

	store := status.NewStore(cfg.Status.Dir)
	paths, err := probeTabs(c, cfg, collected, store)
	if err != nil {
		return err
	}
	logger.L().Info("probing finished", zap.Int("tabs", len(paths)), zap.String("dir", store.Dir()))
	return nil
}

func reportAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := manifest.Load(cfg.Manifest.Path)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	rep, err := report.Build(m, status.NewStore(cfg.Status.Dir))
	if err != nil {
		return err
	}
	rep.Render(os.Stdout)
	return exportReport(c, rep)
}

func collectAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Collect.Pages) == 0 {
		return errors.New("collect.pages is empty: configure the portal pages per tab")
	}
	source := collect.NewStaticSource(collect.StaticOptions{
		Timeout:         cfg.Probe.Timeout,
		Pages:           cfg.Collect.Pages,
		ExcludePrefixes: excludePrefixes(cfg),
		Username:        cfg.Portal.Username,
		Password:        cfg.Portal.Password,
	})
	links, err := source.Links(c.Context)
	if err != nil {
		return fmt.Errorf("collecting links: %w", err)
	}

	out := c.String("out")
	if err := collect.WriteDump(out, links); err != nil {
		return err
	}
	total := 0
	for _, list := range links {
		total += len(list)
	}
	logger.L().Info("links collected", zap.String("file", out), zap.Int("links", total))
	return nil
}

func manifestGenerateAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	input := c.String("input")
	output := c.String("output")
	if output == "" {
		output = cfg.Manifest.Path
	}
	if err := mangen.Generate(input, output); err != nil {
		return err
	}
	logger.L().Info("manifest generated", zap.String("input", input), zap.String("output", output))
	return nil
}

func manifestValidateAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m, err := manifest.Load(cfg.Manifest.Path)
	if err != nil {
		return err
	}
	ix := manifest.BuildIndex(m)
	for _, tab := range manifest.Tabs() {
		expected, _ := ix.TabSet(tab)
		logger.L().Info("tab validated",
			zap.String("tab", tab),
			zap.Int("entries", len(m[tab])),
			zap.Int("distinct", expected.Cardinality()))
	}
	return nil
}

func cleanAction(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := status.NewStore(cfg.Status.Dir)
	if err := store.Clean(); err != nil {
		return err
	}
	logger.L().Info("status artifacts removed", zap.String("dir", store.Dir()))
	return nil
}

// linksSource picks where collected links come from: an explicit dump
// file wins, then the configured dump, then a live portal harvest.
func linksSource(c *cli.Context, cfg *config.Config) (collect.Source, error) {
	if c.IsSet("links") {
		return collect.NewFileSource(c.String("links")), nil
	}
	if cfg.Collect.LinksFile != "" {
		return collect.NewFileSource(cfg.Collect.LinksFile), nil
	}
	if len(cfg.Collect.Pages) > 0 {
		return collect.NewStaticSource(collect.StaticOptions{
			Timeout:         cfg.Probe.Timeout,
			Pages:           cfg.Collect.Pages,
			ExcludePrefixes: excludePrefixes(cfg),
			Username:        cfg.Portal.Username,
			Password:        cfg.Portal.Password,
		}), nil
	}
	return nil, errors.New("no link source configured: pass --links or set collect.links_file or collect.pages")
}

func excludePrefixes(cfg *config.Config) []string {
	if len(cfg.Collect.ExcludePrefixes) == 0 {
		return nil
	}
	return cfg.Collect.ExcludePrefixes
}

func probeTabs(c *cli.Context, cfg *config.Config, linksByTab map[string][]string, store *status.Store) (map[string]string, error) {
	prober, err := probe.New(probe.Options{
		Timeout:     cfg.Probe.Timeout,
		InsecureTLS: !cfg.Probe.VerifyTLS,
		Workers:     cfg.Probe.Workers,
		UserAgent:   cfg.Probe.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	defer prober.Close()
	return prober.CheckTabs(c.Context, linksByTab, store)
}

func exportReport(c *cli.Context, rep *report.Report) error {
	if !c.IsSet("export") {
		return nil
	}
	format := strings.ToLower(c.String("format"))
	var exporter export.Exporter
	switch format {
	case "json":
		exporter = export.NewJsonExporter()
	case "csv":
		exporter = export.NewCSVExporter()
	default:
		return fmt.Errorf("unknown export format %q, want json or csv", c.String("format"))
	}
	base := c.String("export")
	if err := exporter.Export(rep, base); err != nil {
		return err
	}
	logger.L().Info("report exported", zap.String("file", base+"."+format))
	return nil
}

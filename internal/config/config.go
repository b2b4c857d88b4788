package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Portal environments. Dev and hprod sit behind HTTP basic auth; prod is
// the public site.
const (
	EnvDev   = "dev"
	EnvHProd = "hprod"
	EnvProd  = "prod"
)

var portalBaseURLs = map[string]string{
	EnvDev:   "https://edp.dev.agiledrop.com/en/open-data-maturity/2024",
	EnvHProd: "https://data.europa.eu/en/open-data-maturity/2024",
	EnvProd:  "https://data.europa.eu/en/open-data-maturity/2024",
}

type Config struct {
	Manifest ManifestConfig `mapstructure:"manifest"`
	Status   StatusConfig   `mapstructure:"status"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Collect  CollectConfig  `mapstructure:"collect"`
	Portal   PortalConfig   `mapstructure:"portal"`
	Log      LogConfig      `mapstructure:"log"`
}

type ManifestConfig struct {
	Path string `mapstructure:"path"`
}

type StatusConfig struct {
	Dir string `mapstructure:"dir"`
}

type ProbeConfig struct {
	Workers   int           `mapstructure:"workers"`
	Timeout   time.Duration `mapstructure:"timeout"`
	VerifyTLS bool          `mapstructure:"verify_tls"`
	UserAgent string        `mapstructure:"user_agent"`
}

type CollectConfig struct {
	LinksFile       string              `mapstructure:"links_file"`
	Pages           map[string][]string `mapstructure:"pages"`
	ExcludePrefixes []string            `mapstructure:"exclude_prefixes"`
}

type PortalConfig struct {
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the working directory or ./config, applies
// environment variable overrides (PROBE_WORKERS, PORTAL_USERNAME, ...) and
// fills defaults. A missing config file is fine; a malformed one is not.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Portal.BaseURL == "" {
		cfg.Portal.BaseURL = portalBaseURLs[cfg.Portal.Environment]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("manifest.path", "ODM_external_links_manifesto.json")
	v.SetDefault("status.dir", "link_status")
	v.SetDefault("probe.workers", 12)
	v.SetDefault("probe.timeout", "10s")
	v.SetDefault("probe.verify_tls", true)
	v.SetDefault("probe.user_agent", "Mozilla/5.0 (compatible; ODM-LinkChecker/1.0)")
	v.SetDefault("collect.links_file", "")
	v.SetDefault("collect.exclude_prefixes", []string{})
	v.SetDefault("portal.environment", EnvProd)
	v.SetDefault("portal.base_url", "")
	v.SetDefault("portal.username", "")
	v.SetDefault("portal.password", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate checks the values a run cannot proceed without. Credentials are
// required for the basic-auth protected environments only.
func (c *Config) Validate() error {
	if _, ok := portalBaseURLs[c.Portal.Environment]; !ok {
		return fmt.Errorf("invalid portal environment %q, want %s, %s or %s",
			c.Portal.Environment, EnvDev, EnvHProd, EnvProd)
	}
	if c.Portal.Environment != EnvProd && (c.Portal.Username == "" || c.Portal.Password == "") {
		return fmt.Errorf("environment %q requires portal.username and portal.password", c.Portal.Environment)
	}
	if c.Manifest.Path == "" {
		return errors.New("manifest.path must not be empty")
	}
	if c.Status.Dir == "" {
		return errors.New("status.dir must not be empty")
	}
	if c.Probe.Workers <= 0 {
		return fmt.Errorf("probe.workers must be positive, got %d", c.Probe.Workers)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout)
	}
	return nil
}

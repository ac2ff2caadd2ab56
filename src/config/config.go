// Package config loads the dashboard YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iafilius/MediaTrendsDashboard/src/types"
)

type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"api"`

	Dashboard struct {
		DefaultSection string `yaml:"default_section"`
		Theme          string `yaml:"theme"`
		ChartWidth     int    `yaml:"chart_width"`
		ChartHeight    int    `yaml:"chart_height"`
		ShowHints      bool   `yaml:"show_hints"`
		ViewsFile      string `yaml:"views_file"`
	} `yaml:"dashboard"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Export struct {
		Dir     string   `yaml:"dir"`
		Formats []string `yaml:"formats"`
	} `yaml:"export"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Export formats understood by the export command.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatXLSX = "xlsx"
)

func Default() Config {
	var cfg Config
	cfg.API.BaseURL = "http://127.0.0.1:5000"
	cfg.API.Timeout = 15 * time.Second
	cfg.Dashboard.DefaultSection = string(types.SectionAnime)
	cfg.Dashboard.Theme = "light"
	cfg.Dashboard.ChartWidth = 1100
	cfg.Dashboard.ChartHeight = 420
	cfg.Server.Addr = ":8870"
	cfg.Export.Dir = "exports"
	cfg.Export.Formats = []string{FormatPNG}
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" {
		errs = append(errs, errors.New("api.base_url is empty"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if _, ok := types.ParseSection(c.Dashboard.DefaultSection); !ok {
		errs = append(errs, fmt.Errorf("dashboard.default_section %q is not a known section", c.Dashboard.DefaultSection))
	}
	switch strings.ToLower(c.Dashboard.Theme) {
	case "light", "dark":
	default:
		errs = append(errs, fmt.Errorf("dashboard.theme %q must be light or dark", c.Dashboard.Theme))
	}
	if c.Dashboard.ChartWidth <= 0 || c.Dashboard.ChartHeight <= 0 {
		errs = append(errs, errors.New("dashboard.chart_width and chart_height must be positive"))
	}
	for _, f := range c.Export.Formats {
		switch strings.ToLower(f) {
		case FormatPNG, FormatHTML, FormatXLSX:
		default:
			errs = append(errs, fmt.Errorf("export.formats: unknown format %q", f))
		}
	}
	return errors.Join(errs...)
}

// Section returns the configured default section.
func (c Config) Section() types.Section {
	s, ok := types.ParseSection(c.Dashboard.DefaultSection)
	if !ok {
		return types.SectionAnime
	}
	return s
}

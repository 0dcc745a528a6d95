package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"hcf/internal/domain"
	"hcf/internal/source"
)

// FileName is the configuration file inside the config directory.
const FileName = "config.yaml"

// Config holds global application settings
type Config struct {
	GamePath        string `yaml:"game_path"`
	PageSize        int    `yaml:"page_size"`
	SortField       int    `yaml:"sort_field"`
	SortOrder       string `yaml:"sort_order"`
	DefaultCategory string `yaml:"default_category"`
	CDNFallback     bool   `yaml:"cdn_fallback"`
	Keybindings     string `yaml:"keybindings"`
	MetricsFile     string `yaml:"metrics_file,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		PageSize:        20,
		SortField:       source.SortPopularity,
		SortOrder:       "desc",
		DefaultCategory: "mods",
		CDNFallback:     true,
		Keybindings:     "vim",
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	return LoadFile(filepath.Join(configDir, FileName))
}

// LoadFile reads configuration from a file. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.PageSize < 1 || c.PageSize > 50 {
		return fmt.Errorf("%w: page_size must be between 1 and 50", domain.ErrInvalidConfig)
	}
	if c.SortOrder != "asc" && c.SortOrder != "desc" {
		return fmt.Errorf("%w: sort_order must be asc or desc", domain.ErrInvalidConfig)
	}
	if c.SortField < source.SortFeatured || c.SortField > source.SortTotalDownload {
		return fmt.Errorf("%w: sort_field must be between %d and %d", domain.ErrInvalidConfig, source.SortFeatured, source.SortTotalDownload)
	}
	if _, ok := domain.ParseCategory(c.DefaultCategory); !ok {
		return fmt.Errorf("%w: default_category must be one of %s", domain.ErrInvalidConfig, strings.Join(domain.CategoryNames(), ", "))
	}
	return nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	return c.SaveFile(filepath.Join(configDir, FileName))
}

// SaveFile writes configuration to path, creating its directory.
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// setters maps settable keys to parsers.
var setters = map[string]func(c *Config, v string) error{
	"game_path": func(c *Config, v string) error {
		p, err := ValidateGameDir(v)
		if err != nil {
			return err
		}
		c.GamePath = p
		return nil
	},
	"page_size": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: page_size: %w", domain.ErrInvalidConfig, err)
		}
		c.PageSize = n
		return nil
	},
	"sort_field": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: sort_field: %w", domain.ErrInvalidConfig, err)
		}
		c.SortField = n
		return nil
	},
	"sort_order": func(c *Config, v string) error {
		c.SortOrder = strings.ToLower(v)
		return nil
	},
	"default_category": func(c *Config, v string) error {
		c.DefaultCategory = strings.ToLower(v)
		return nil
	},
	"cdn_fallback": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: cdn_fallback: %w", domain.ErrInvalidConfig, err)
		}
		c.CDNFallback = b
		return nil
	},
	"keybindings": func(c *Config, v string) error {
		if v != "vim" && v != "standard" {
			return fmt.Errorf("%w: keybindings must be vim or standard", domain.ErrInvalidConfig)
		}
		c.Keybindings = v
		return nil
	},
	"metrics_file": func(c *Config, v string) error {
		c.MetricsFile = v
		return nil
	},
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a value by key and validates the result. On error the config is unchanged.
func (c *Config) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (valid: %s)", domain.ErrInvalidConfig, key, strings.Join(Keys(), ", "))
	}

	next := *c
	if err := set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Category returns the configured default category.
func (c *Config) Category() domain.Category {
	cat, ok := domain.ParseCategory(c.DefaultCategory)
	if !ok {
		return domain.CategoryFor(domain.DefaultClassID)
	}
	return cat
}

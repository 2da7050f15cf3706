// Package config resolves and persists leasectl configuration.
//
// Credentials are resolved from the highest-priority source available:
// command-line flags, then environment variables, then the local config
// file, then built-in placeholders. The placeholders mean "unconfigured"
// and remote operations refuse to run with them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcuadros/go-defaults"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultMAASURL is a placeholder, not a reachable server.
	DefaultMAASURL = "http://maas.example.com:5240"

	EnvMAASURL = "MAAS_URL"
	EnvAPIKey  = "MAAS_API_KEY"
)

// MAAS alloc_type codes considered DHCP-relevant: AUTO, DHCP, DISCOVERED.
var defaultLeaseAllocTypes = []int{1, 4, 5}

// APIConfig carries the remote resource taxonomy. Endpoint paths and
// allocation-type codes vary between MAAS deployments and revisions, so
// they are configuration rather than constants in the synchronizer.
type APIConfig struct {
	IPAddressesPath       string `yaml:"ipaddresses_path" default:"/MAAS/api/2.0/ipaddresses/"`
	SnippetsPath          string `yaml:"snippets_path" default:"/MAAS/api/2.0/dhcp-snippets/"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" default:"20"`
	LeaseAllocTypes       []int  `yaml:"lease_alloc_types"`
}

type Config struct {
	MAASURL string    `yaml:"maas_url"`
	APIKey  string    `yaml:"api_key"`
	API     APIConfig `yaml:"api"`
}

// New returns a config populated with built-in defaults only.
func New() *Config {
	cfg := &Config{MAASURL: DefaultMAASURL}
	defaults.SetDefaults(cfg)
	cfg.API.LeaseAllocTypes = append([]int(nil), defaultLeaseAllocTypes...)
	return cfg
}

// Resolve builds the effective configuration for one invocation.
// flagURL and flagKey are the values given on the command line; empty
// strings mean "not set". path selects the config file; empty means
// DefaultPath. A missing config file is not an error.
func Resolve(flagURL, flagKey, path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = DefaultPath()
	}
	if err := loadFile(cfg, path); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()
	_ = viper.BindEnv(EnvMAASURL)
	_ = viper.BindEnv(EnvAPIKey)
	if v := viper.GetString(EnvMAASURL); v != "" {
		cfg.MAASURL = v
	}
	if v := viper.GetString(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}

	if flagURL != "" {
		cfg.MAASURL = flagURL
	}
	if flagKey != "" {
		cfg.APIKey = flagKey
	}

	if len(cfg.API.LeaseAllocTypes) == 0 {
		cfg.API.LeaseAllocTypes = append([]int(nil), defaultLeaseAllocTypes...)
	}
	return cfg, nil
}

// Configured reports whether real credentials were resolved, as opposed
// to the built-in placeholders.
func (c *Config) Configured() bool {
	return c.APIKey != "" && c.MAASURL != "" && c.MAASURL != DefaultMAASURL
}

// Save persists the configuration to path, creating parent directories
// as needed. The file is written with 0600 since it holds the API key.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "leasectl.yaml")
	}
	return filepath.Join(home, ".config", "leasectl", "config.yaml")
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

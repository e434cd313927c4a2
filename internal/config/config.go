// Package config provides configuration management for portal-fm.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/ini.v1"
)

// Config holds the connection settings for the portal hierarchy API.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\portalfm\apiconfig
//   - Unix: ~/.config/portalfm/apiconfig
//
// INI format:
//
//	[portal]
//	portal_url = https://portal.ambercrest.example
//	api_token = <bearer-token>
//	branch = head-office
//
// Values may be overridden by the PORTALFM_URL, PORTALFM_TOKEN and
// PORTALFM_BRANCH environment variables, and again by command-line flags.
type Config struct {
	// PortalURL is the base URL of the portal server.
	PortalURL string `ini:"portal_url"`

	// APIToken is the bearer credential attached to every request.
	APIToken string `ini:"api_token"`

	// Branch selects the tenant/branch partition all calls are scoped to.
	Branch string `ini:"branch"`
}

// Validation errors
var (
	ErrMissingPortalURL = errors.New("portal_url is required")
	ErrMissingAPIToken  = errors.New("api_token is required")
	ErrInvalidPortalURL = errors.New("portal_url must be an http(s) URL")
)

// DefaultPath returns the default path for the config file.
func DefaultPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "portalfm")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "portalfm")
	}

	return filepath.Join(configDir, "apiconfig"), nil
}

// New creates a Config with default values.
func New() *Config {
	return &Config{}
}

// Load loads configuration from an INI file, then applies environment
// overrides. A missing file is not an error; the caller gets defaults plus
// whatever the environment provides.
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			applyEnv(cfg)
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); err == nil {
		iniFile, err := ini.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		section := iniFile.Section("portal")
		cfg.PortalURL = section.Key("portal_url").String()
		cfg.APIToken = section.Key("api_token").String()
		cfg.Branch = section.Key("branch").String()
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays environment variables on top of file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORTALFM_URL"); v != "" {
		cfg.PortalURL = v
	}
	if v := os.Getenv("PORTALFM_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("PORTALFM_BRANCH"); v != "" {
		cfg.Branch = v
	}
}

// Save writes the configuration to an INI file, creating parent directories
// as needed. The token is sensitive, so the file is written 0600 via a
// temporary file and rename.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()
	section, err := iniFile.NewSection("portal")
	if err != nil {
		return fmt.Errorf("failed to create portal section: %w", err)
	}
	section.Key("portal_url").SetValue(cfg.PortalURL)
	section.Key("api_token").SetValue(cfg.APIToken)
	section.Key("branch").SetValue(cfg.Branch)

	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks that the config can drive an API client.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PortalURL) == "" {
		return ErrMissingPortalURL
	}
	u, err := url.Parse(c.PortalURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidPortalURL
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return ErrMissingAPIToken
	}
	return nil
}

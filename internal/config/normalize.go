package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = defaultStoreBackend
	}
	c.normalizePackage()
	c.Preview.Stage = strings.ToLower(strings.TrimSpace(c.Preview.Stage))
	if c.Preview.Stage == "" {
		c.Preview.Stage = defaultPreviewStage
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MediaDB, err = expandPath(c.Paths.MediaDB); err != nil {
		return fmt.Errorf("paths.media_db: %w", err)
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePackage() {
	c.Package.NavigationMode = strings.ToLower(strings.TrimSpace(c.Package.NavigationMode))
	if c.Package.NavigationMode == "" {
		c.Package.NavigationMode = defaultNavigationMode
	}
	c.Package.CompletionCriteria = strings.ToLower(strings.TrimSpace(c.Package.CompletionCriteria))
	if c.Package.CompletionCriteria == "" {
		c.Package.CompletionCriteria = defaultCompletionCriteria
	}
	c.Package.Version = strings.TrimSpace(c.Package.Version)
	if c.Package.Version == "" {
		c.Package.Version = defaultPackageVersion
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

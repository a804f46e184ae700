package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validatePackage(); err != nil {
		return err
	}
	if err := c.validatePreview(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Paths.MediaDB == "" {
			return errors.New("paths.media_db must be set when store.backend is sqlite")
		}
	case BackendDirectory:
		if c.Paths.MediaDir == "" {
			return errors.New("paths.media_dir must be set when store.backend is directory")
		}
	default:
		return fmt.Errorf("store.backend: unsupported value %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.MaxConcurrentFetches < 0 {
		return errors.New("resolver.max_concurrent_fetches must be zero or positive")
	}
	if c.Resolver.FetchTimeoutSeconds < 0 {
		return errors.New("resolver.fetch_timeout_seconds must be zero or positive")
	}
	return nil
}

// Package defaults are only shape-checked here; the manifest package performs
// the authoritative option validation at build time.
func (c *Config) validatePackage() error {
	switch c.Package.NavigationMode {
	case "linear", "free":
	default:
		return fmt.Errorf("package.navigation_mode: unsupported value %q", c.Package.NavigationMode)
	}
	switch c.Package.CompletionCriteria {
	case "view-all", "pass-assessment":
	default:
		return fmt.Errorf("package.completion_criteria: unsupported value %q", c.Package.CompletionCriteria)
	}
	if c.Package.PassMark < 0 || c.Package.PassMark > 100 {
		return errors.New("package.pass_mark must be between 0 and 100")
	}
	if c.Package.TimeLimitMinutes < 0 {
		return errors.New("package.time_limit_minutes must be zero or positive")
	}
	return nil
}

func (c *Config) validatePreview() error {
	switch c.Preview.Stage {
	case "seed", "prompt", "json", "media", "audio", "scorm":
	default:
		return fmt.Errorf("preview.stage: unsupported value %q", c.Preview.Stage)
	}
	if c.Preview.InlineMediaMaxBytes < 0 {
		return errors.New("preview.inline_media_max_bytes must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"coursepack/internal/config"
	"coursepack/internal/history"
	"coursepack/internal/logging"
	"coursepack/internal/mediastore"
	"coursepack/internal/workflow"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	store   mediastore.Catalog
	history *history.Store
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(stderr io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var mirror io.Writer
	if c.verbose != nil && *c.verbose {
		mirror = stderr
	}
	return logging.NewWithWriter(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "coursepack.log")},
	}, mirror)
}

func (c *commandContext) mediaStore() (mediastore.Catalog, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := mediastore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open media store: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) historyStore() (*history.Store, error) {
	if c.history != nil {
		return c.history, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	h, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open build history: %w", err)
	}
	c.history = h
	return h, nil
}

func (c *commandContext) engine(cmd *cobra.Command, withHistory bool) (*workflow.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	store, err := c.mediaStore()
	if err != nil {
		return nil, err
	}
	var opts []workflow.EngineOption
	if withHistory {
		h, err := c.historyStore()
		if err != nil {
			return nil, err
		}
		opts = append(opts, workflow.WithHistory(h))
	}
	return workflow.NewEngine(cfg, store, logger, opts...), nil
}

func (c *commandContext) close() error {
	var firstErr error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			firstErr = err
		}
		c.store = nil
	}
	if c.history != nil {
		if err := c.history.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.history = nil
	}
	return firstErr
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

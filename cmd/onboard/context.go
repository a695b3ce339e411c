package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"onboard/internal/activation"
	"onboard/internal/autosave"
	"onboard/internal/config"
	"onboard/internal/engine"
	"onboard/internal/logging"
	"onboard/internal/notifications"
	"onboard/internal/progress"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withEngine opens the store for one command invocation and hands a wired
// engine to fn. Engine logs go to the log file only; stdout stays reserved
// for command output.
func (c *commandContext) withEngine(fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := progress.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	eng := engine.New(store, cfg, c.fileLogger(cfg), notifications.NewService(cfg), activation.NewService(cfg))
	return fn(context.Background(), eng)
}

// withReconciler wires an auto-save reconciler over the engine with the
// configured per-write timeout.
func (c *commandContext) withReconciler(fn func(ctx context.Context, rec *autosave.Reconciler) error) error {
	return c.withEngine(func(ctx context.Context, eng *engine.Engine) error {
		cfg, err := c.ensureConfig()
		if err != nil {
			return err
		}
		timeout := time.Duration(cfg.Engine.AutosaveTimeoutSeconds) * time.Second
		return fn(ctx, autosave.New(eng, c.fileLogger(cfg), timeout))
	})
}

func (c *commandContext) withStore(fn func(ctx context.Context, store *progress.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := progress.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func (c *commandContext) fileLogger(cfg *config.Config) *slog.Logger {
	if cfg.Paths.LogDir == "" {
		return logging.NewNop()
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "onboard.log")},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

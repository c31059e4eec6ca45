package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"loom/internal/analysis"
	"loom/internal/batch"
	"loom/internal/catalog"
	"loom/internal/config"
	"loom/internal/llm"
	"loom/internal/logging"
	"loom/internal/notifications"
	"loom/internal/transcript"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
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

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		paths := []string{"stderr"}
		if cfg.Paths.LogDir != "" {
			paths = append(paths, filepath.Join(cfg.Paths.LogDir, "loom.log"))
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: paths,
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) store() (*transcript.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return transcript.NewStore(cfg.Paths.TranscriptsDir), nil
}

func (c *commandContext) registry() (*analysis.Registry, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return analysis.NewRegistry(cfg.Paths.AnalysisTypesDir), nil
}

func (c *commandContext) client() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		EmbedSchema:    cfg.LLM.EmbedSchema,
	}), nil
}

func (c *commandContext) analysisRunner() (*analysis.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	registry, err := c.registry()
	if err != nil {
		return nil, err
	}
	client, err := c.client()
	if err != nil {
		return nil, err
	}
	resolver := analysis.NewResolver(registry, client, client.Model(), logger)
	return analysis.NewRunner(cfg, resolver, logger), nil
}

func (c *commandContext) batchRunner() (*batch.Runner, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	store, err := c.store()
	if err != nil {
		return nil, err
	}
	runner, err := c.analysisRunner()
	if err != nil {
		return nil, err
	}
	return batch.NewRunner(store, runner, notifications.NewService(cfg), logger), nil
}

func (c *commandContext) openCatalog() (*catalog.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.Open(cfg.Paths.CatalogPath)
}

// resolveTranscript turns a CLI argument into a store path: an existing file
// path is used as-is, otherwise the argument names a document in the
// transcripts dir (with or without the .json suffix).
func (c *commandContext) resolveTranscript(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("transcript name or path is required")
	}

	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(expanded); statErr == nil && !info.IsDir() {
		return expanded, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	name := arg
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	path := filepath.Join(cfg.Paths.TranscriptsDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("transcript %q not found (looked for %s)", arg, path)
	}
	return path, nil
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tagdeck/internal/config"
	"tagdeck/internal/fetch"
	"tagdeck/internal/fetchcache"
	"tagdeck/internal/filelock"
	"tagdeck/internal/logging"
	"tagdeck/internal/rename"
	"tagdeck/internal/services"
	"tagdeck/internal/tagfile"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.configValue())
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging unavailable: %v\n", err)
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) locator() (*tagfile.Locator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tagfile.NewLocator(cfg.TagFiles, c.ensureLogger()), nil
}

func (c *commandContext) renameEngine() *rename.Engine {
	return rename.NewEngine(c.ensureLogger())
}

func (c *commandContext) lockManager() (*filelock.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return filelock.NewManager(cfg.LockDir())
}

// openCache returns nil without error when caching is disabled.
func (c *commandContext) openCache() (*fetchcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Fetch.CacheEnabled || strings.TrimSpace(cfg.Paths.CachePath) == "" {
		return nil, nil
	}
	return fetchcache.Open(cfg.Paths.CachePath)
}

func (c *commandContext) fetchService(cache *fetchcache.Store) (*fetch.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Fetch.Enabled {
		return nil, services.Wrap(services.ErrConfiguration, "cli", "fetch", "remote fetch is disabled; set fetch.enabled = true in the configuration", nil)
	}
	client := fetch.NewClient(cfg.Fetch, cfg.FetchTimeout())
	if cache == nil {
		return fetch.NewService(client, nil, c.ensureLogger()), nil
	}
	return fetch.NewService(client, cache, c.ensureLogger()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// mediaTarget resolves a user-supplied path to an absolute path and the
// directory tag files are resolved from.
func mediaTarget(arg string) (path string, dir string, isDir bool, err error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", "", false, services.Wrap(services.ErrValidation, "cli", "", "media path is required", nil)
	}
	path, err = config.ExpandPath(arg)
	if err != nil {
		return "", "", false, err
	}
	info, err := os.Stat(path)
	if err != nil {
		marker := services.ErrExternal
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return "", "", false, services.Wrap(marker, "cli", "inspect path", path, err)
	}
	if info.IsDir() {
		return path, path, true, nil
	}
	return path, filepath.Dir(path), false, nil
}

// mediaFile is mediaTarget restricted to regular files.
func mediaFile(arg string) (string, error) {
	path, _, isDir, err := mediaTarget(arg)
	if err != nil {
		return "", err
	}
	if isDir {
		return "", services.Wrap(services.ErrValidation, "cli", "", path+" is a directory; pass a media file", nil)
	}
	return path, nil
}

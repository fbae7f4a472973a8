package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tagdeck/internal/pathlimits"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTagFiles(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTagFiles() error {
	names := []struct {
		key   string
		value string
	}{
		{"tag_files.appending_filename", c.TagFiles.AppendingFilename},
		{"tag_files.overriding_filename", c.TagFiles.OverridingFilename},
	}
	for _, name := range names {
		if name.value == "." || name.value == ".." || pathlimits.ContainsReserved(name.value) || strings.ContainsAny(name.value, `/\`) {
			return fmt.Errorf("%s: %q is not a plain filename", name.key, name.value)
		}
	}
	if strings.EqualFold(c.TagFiles.AppendingFilename, c.TagFiles.OverridingFilename) {
		return errors.New("tag_files: appending_filename and overriding_filename must differ")
	}
	if c.TagFiles.MaxSearchDepth < 0 {
		return errors.New("tag_files.max_search_depth must be zero or positive")
	}
	if c.TagFiles.MaxSearchDepth > maxSearchDepthCeiling {
		return fmt.Errorf("tag_files.max_search_depth must be at most %d", maxSearchDepthCeiling)
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.AuthorFirst && c.Naming.AuthorTag == "" {
		return errors.New("naming.author_tag is required when naming.author_first is enabled")
	}
	if strings.ContainsAny(c.Naming.AuthorTag, " /") {
		return fmt.Errorf("naming.author_tag: %q cannot contain spaces or slashes", c.Naming.AuthorTag)
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.Limits.MaxNameLen < 0 {
		return errors.New("limits.max_name_len must be zero or positive")
	}
	if c.Limits.MaxPathLen < 0 {
		return errors.New("limits.max_path_len must be zero or positive")
	}
	if c.Limits.MaxNameLen > 0 && c.Limits.MaxPathLen > 0 && c.Limits.MaxNameLen > c.Limits.MaxPathLen {
		return errors.New("limits.max_name_len cannot exceed limits.max_path_len")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if !c.Fetch.Enabled {
		return nil
	}
	parsed, err := url.Parse(c.Fetch.BaseURL)
	if err != nil {
		return fmt.Errorf("fetch.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("fetch.base_url: unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("fetch.base_url: missing host")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

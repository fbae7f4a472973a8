package config

const (
	defaultConfigPath         = "~/.config/tagdeck/config.toml"
	defaultLogDir             = "~/.local/state/tagdeck/logs"
	defaultCachePath          = "~/.cache/tagdeck/fetch.db"
	defaultAppendingFilename  = "tags.append.txt"
	defaultOverridingFilename = "tags.txt"
	defaultMaxSearchDepth     = 8
	maxSearchDepthCeiling     = 64
	defaultFetchBaseURL       = "https://danbooru.donmai.us"
	defaultFetchUserAgent     = "tagdeck/dev"
	defaultFetchTimeout       = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir(),
			LogDir:    defaultLogDir,
			CachePath: defaultCachePath,
		},
		TagFiles: TagFiles{
			AppendingFilename:  defaultAppendingFilename,
			OverridingFilename: defaultOverridingFilename,
			MaxSearchDepth:     defaultMaxSearchDepth,
		},
		Fetch: Fetch{
			BaseURL:        defaultFetchBaseURL,
			UserAgent:      defaultFetchUserAgent,
			TimeoutSeconds: defaultFetchTimeout,
			CacheEnabled:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package domain

import "time"

// Config represents the application configuration
type Config struct {
	Results  ResultsConfig  `mapstructure:"results"`
	Download DownloadConfig `mapstructure:"download"`
	Direct   DirectConfig   `mapstructure:"direct"`
	Tool     ToolConfig     `mapstructure:"tool"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ResultsConfig controls the result store that bridges a task invocation with
// later poll invocations.
type ResultsConfig struct {
	Dir string `mapstructure:"dir"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir        string        `mapstructure:"output_dir"`
	DefaultQuality   string        `mapstructure:"default_quality"`
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	MinFreeSpace     int64         `mapstructure:"min_free_space"` // bytes, 0 disables the check
}

// DirectConfig tunes the direct HTTP fetch path.
type DirectConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	Extensions []string      `mapstructure:"extensions"` // overrides the classifier's defaults
	Markers    []string      `mapstructure:"markers"`
}

// ToolConfig contains extraction-tool (yt-dlp) configuration
type ToolConfig struct {
	Binary          string        `mapstructure:"binary"`
	ExtraArgs       string        `mapstructure:"extra_args"` // shell-style string, split with shlex
	InstallCommand  string        `mapstructure:"install_command"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
	MetadataTimeout time.Duration `mapstructure:"metadata_timeout"`
	VersionTimeout  time.Duration `mapstructure:"version_timeout"`
	InstallTimeout  time.Duration `mapstructure:"install_timeout"`
	ProxyTestURL    string        `mapstructure:"proxy_test_url"`
}

// HistoryConfig contains the download-history ledger configuration
type HistoryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	DatabasePath string `mapstructure:"database_path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Results: ResultsConfig{
			Dir: "$HOME/.media-fetch/results",
		},
		Download: DownloadConfig{
			OutputDir:        "$HOME/Downloads/media-fetch",
			DefaultQuality:   string(QualityBest),
			ProgressInterval: 500 * time.Millisecond,
			MinFreeSpace:     256 * 1024 * 1024,
		},
		Direct: DirectConfig{
			Timeout:   5 * time.Minute,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Tool: ToolConfig{
			Binary:          "yt-dlp",
			InstallCommand:  "python3 -m pip install yt-dlp",
			DownloadTimeout: time.Hour,
			MetadataTimeout: 60 * time.Second,
			VersionTimeout:  10 * time.Second,
			InstallTimeout:  2 * time.Minute,
			ProxyTestURL:    "https://www.google.com",
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: "$HOME/.media-fetch/history.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

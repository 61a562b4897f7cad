package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/storepreview/internal/fetch"
	"github.com/nao1215/storepreview/internal/model"
	"github.com/nao1215/storepreview/internal/transport"
)

const (
	// AppName is used for XDG directory paths.
	AppName = "storepreview"

	// DefaultPreviewsDir is where previews are written, relative to the
	// working directory.
	DefaultPreviewsDir = "public/previews"

	// DefaultTimeout of zero keeps the HTTP client's own behaviour (no deadline).
	DefaultTimeout time.Duration = 0

	// DefaultBatchSize is the number of concurrent captures in batch mode.
	DefaultBatchSize = 4

	// DefaultUserAgent is the browser user agent sent with every fetch.
	DefaultUserAgent = fetch.DefaultUserAgent

	// HistoryDBName is the capture history file inside DBDir.
	HistoryDBName = "history.db"
)

// Environment variables that override config file and defaults.
const (
	EnvPreviewsDir = "STOREPREVIEW_PREVIEWS_DIR"
	EnvUserAgent   = "STOREPREVIEW_USER_AGENT"
)

// Config holds the options for one storepreview invocation.
// It is filled from defaults, then the config file, then the environment,
// then CLI flags.
type Config struct {
	// Targets are the pages to capture.
	Targets []model.Target

	// PreviewsDir is the directory previews are written to.
	PreviewsDir string

	// Timeout bounds each fetch. Zero means no timeout.
	Timeout time.Duration

	// ProxyAddress routes fetches through a SOCKS5 proxy when set.
	ProxyAddress string

	// UserAgent is sent as the User-Agent header.
	UserAgent string

	// Render fetches through headless Chrome instead of a plain GET.
	Render bool

	// Verbose enables debug logging.
	Verbose bool

	// BatchSize is the concurrency limit for batch captures.
	BatchSize int

	// Rate caps batch capture starts per second. Zero means unlimited.
	Rate float64

	// ConfigFilePath is an explicit config file. When empty, FindConfigFile
	// searches the current and home directories.
	ConfigFilePath string

	// SiteConfigs holds the loaded config file, if any.
	SiteConfigs *File

	// JSONReport prints the capture summary as JSON.
	JSONReport bool

	// MarkdownReport prints the capture summary as Markdown.
	MarkdownReport bool

	// ReportFile, when set, also receives every capture summary as Markdown.
	// Summaries are appended.
	ReportFile string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// DBDir is where the capture history database lives.
	DBDir string

	// SaveHistory records successful captures in the history database.
	SaveHistory bool
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		PreviewsDir: DefaultPreviewsDir,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		BatchSize:   DefaultBatchSize,
		DBDir:       XDGDataDir(),
		SaveHistory: true,
	}
}

// XDGDataDir returns the data directory, e.g. ~/.local/share/storepreview on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, e.g. ~/.config/storepreview on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// HistoryDBPath returns the history database path under DBDir.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DBDir, HistoryDBName)
}

// ApplyFile copies file-level settings that the user has not already set.
// Values equal to the defaults are treated as unset.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.SiteConfigs = f
	if f.PreviewsDir != "" && c.PreviewsDir == DefaultPreviewsDir {
		c.PreviewsDir = f.PreviewsDir
	}
	if f.UserAgent != "" && c.UserAgent == DefaultUserAgent {
		c.UserAgent = f.UserAgent
	}
}

// ApplyEnv applies STOREPREVIEW_* environment overrides.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv(EnvPreviewsDir); dir != "" {
		c.PreviewsDir = dir
	}
	if ua := os.Getenv(EnvUserAgent); ua != "" {
		c.UserAgent = ua
	}
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrMissingArgs
	}
	for _, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	if c.PreviewsDir == "" {
		return ErrEmptyPreviewsDir
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Rate < 0 {
		return ErrInvalidRate
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ProxyAddress != "" && !transport.IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	return nil
}

// IsUsageError reports whether err should be answered with the usage line.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrMissingArgs)
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nao1215/storepreview/internal/config"
	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/fetch"
	"github.com/nao1215/storepreview/internal/log"
	"github.com/nao1215/storepreview/internal/model"
	"github.com/nao1215/storepreview/internal/pipeline"
	"github.com/nao1215/storepreview/internal/preview"
	"github.com/nao1215/storepreview/internal/report"
	"github.com/nao1215/storepreview/internal/sanitize"
	"github.com/nao1215/storepreview/internal/transport"
)

// addCaptureFlags registers the flags shared by the root and batch commands.
func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", config.DefaultPreviewsDir,
		"Directory previews are written to (env "+config.EnvPreviewsDir+")")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Fetch timeout (0 means no timeout)")
	cmd.Flags().String("proxy", "",
		"Fetch through a SOCKS5 proxy at host:port")
	cmd.Flags().String("user-agent", "",
		"User-Agent header (env "+config.EnvUserAgent+")")
	cmd.Flags().Bool("render", false,
		"Render the page in headless Chrome before sanitizing")
	cmd.Flags().BoolP("json", "j", false,
		"Print the capture summary as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the capture summary as Markdown (mutually exclusive with --json)")
	cmd.Flags().String("report-file", "",
		"Also append each capture summary as Markdown to this file")
	cmd.Flags().Bool("no-history", false,
		"Do not record the capture in the history database")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")
}

// getVerboseFlag reads the persistent verbose flag.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

// loadConfigFile applies the config file to cfg. An explicit -c path must
// exist; otherwise a missing file is not an error.
func loadConfigFile(cmd *cobra.Command, cfg *config.Config) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg.ConfigFilePath = path

	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil
	}

	f, err := config.LoadConfigFile(found)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	cfg.ApplyFile(f)
	return nil
}

// buildConfig layers defaults, the config file, the environment and the
// flags the user set, in that order.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	if err := loadConfigFile(cmd, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error

	if flags.Changed("dir") {
		if cfg.PreviewsDir, err = flags.GetString("dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.Render, err = flags.GetBool("render"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report-file"); err != nil {
		return nil, err
	}
	if cfg.LogJSON, err = flags.GetBool("log-json"); err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	historyDir, err := flags.GetString("history-dir")
	if err != nil {
		return nil, err
	}
	if historyDir != "" {
		cfg.DBDir = historyDir
	}

	return cfg, nil
}

// app holds what one command invocation shares across captures.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
	history *database.HistoryDB

	// mu guards batch bookkeeping and the report file.
	mu sync.Mutex
	// outMu serializes writes to stdout and stderr.
	outMu sync.Mutex
}

// syncWriter makes w safe for the concurrent captures of a batch.
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func newApp(cmd *cobra.Command, cfg *config.Config) *app {
	a := &app{cfg: cfg}
	a.stdout = &syncWriter{mu: &a.outMu, w: cmd.OutOrStdout()}
	a.stderr = &syncWriter{mu: &a.outMu, w: cmd.ErrOrStderr()}
	if cfg.LogJSON {
		a.logger = log.NewSecureJSONLogger(a.stderr, cfg.Verbose)
	} else {
		a.logger = log.NewSecureLogger(a.stderr, cfg.Verbose)
	}
	slog.SetDefault(a.logger)

	if cfg.SaveHistory {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			a.logger.Warn("capture history disabled", "path", cfg.HistoryDBPath(), "error", err)
		} else {
			a.logger.Debug("recording capture history", "path", db.Path())
			a.history = db
		}
	}
	return a
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history database", "error", err)
		}
	}
}

// progress is where fetch progress goes. Structured summaries own stdout.
func (a *app) progress() io.Writer {
	if a.cfg.JSONReport || a.cfg.MarkdownReport {
		return a.stderr
	}
	return a.stdout
}

// factory builds the capture pipeline for a target, applying its site config.
func (a *app) factory() pipeline.Factory {
	return func(target model.Target) (*pipeline.Pipeline, error) {
		var site config.SiteConfig
		if a.cfg.SiteConfigs != nil {
			site = a.cfg.SiteConfigs.GetSiteConfig(target.URL)
		}

		fetcher, err := a.fetcher(site)
		if err != nil {
			return nil, err
		}

		s, err := sanitize.New(
			sanitize.WithExtraPatterns(site.KeepPatterns, site.RemovePatterns),
			sanitize.WithWidgetPrefixes(site.WidgetPrefixes...),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid site patterns for %s: %w", target.URL, err)
		}

		comps := pipeline.Components{
			Fetcher:   fetcher,
			Sanitizer: s,
			Writer:    preview.NewWriter(a.cfg.PreviewsDir),
			Progress:  a.progress(),
			Logger:    a.logger,
		}
		if a.history != nil {
			comps.Recorder = a.history
		}
		p := pipeline.DefaultPipeline(comps)
		a.logger.Debug("capture pipeline ready",
			"name", target.Name,
			"patterns", len(s.Table().Matchers()),
			"steps", p.StepNames(),
		)
		return p, nil
	}
}

func (a *app) fetcher(site config.SiteConfig) (fetch.Fetcher, error) {
	if a.cfg.Render {
		if headers := site.RequestHeaders(); len(headers) > 0 {
			a.logger.Warn("site headers and cookies are not sent in render mode", "count", len(headers))
		}
		return fetch.NewRenderFetcher(a.cfg.UserAgent, a.cfg.Timeout, a.logger), nil
	}

	client, err := transport.NewHTTPClient(transport.Options{
		ProxyAddress: a.cfg.ProxyAddress,
		Timeout:      a.cfg.Timeout,
		Headers:      site.RequestHeaders(),
	})
	if err != nil {
		return nil, err
	}
	return fetch.NewHTTPFetcher(client,
		fetch.WithUserAgent(a.cfg.UserAgent),
		fetch.WithLogger(a.logger),
	), nil
}

// summaryWriter picks the writer for --json, --markdown or plain text.
func (a *app) summaryWriter() report.Writer {
	switch {
	case a.cfg.JSONReport:
		return report.NewJSONWriter(a.stdout, report.WithPrettyPrint())
	case a.cfg.MarkdownReport:
		return report.NewMarkdownWriter(a.stdout)
	default:
		return report.NewTextWriter(a.stdout, report.WithDetails(a.cfg.Verbose))
	}
}

func (a *app) writeSummary(c *model.Capture) error {
	if c.Summary == nil {
		return fmt.Errorf("capture of %s produced no summary", c.Target.Name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	w := a.summaryWriter()
	if a.cfg.ReportFile != "" {
		f, err := os.OpenFile(a.cfg.ReportFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // user-chosen report path
		if err != nil {
			return fmt.Errorf("failed to open report file: %w", err)
		}
		defer f.Close()
		w = report.NewMultiWriter(w, report.NewMarkdownWriter(f))
	}

	_, err := w.Write(c.Summary)
	return err
}

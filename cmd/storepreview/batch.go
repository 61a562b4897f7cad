package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/storepreview/internal/config"
	"github.com/nao1215/storepreview/internal/pipeline"
)

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Capture every preview listed in the configuration file",
		Long: `Batch captures every entry of the previews list in the configuration file.

Captures run concurrently. A failing capture does not stop the others; the
command exits non-zero if any capture failed.

Example configuration:
  previews:
    - url: https://shop.example.com/
      name: home
    - url: https://shop.example.com/products/tee
      name: tee

Examples:
  # Capture the previews listed in ./.storepreview
  storepreview batch

  # Use another configuration file and run two captures at a time
  storepreview batch -c previews.yaml -b 2

  # Start at most one capture per second
  storepreview batch --rate 1`,
		Args: cobra.NoArgs,
		RunE: runBatchCmd,
	}

	addCaptureFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of captures to run concurrently")
	cmd.Flags().Float64("rate", 0,
		"Maximum captures started per second (0 for no limit)")

	return cmd
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.SiteConfigs == nil || len(cfg.SiteConfigs.Previews) == 0 {
		return config.ErrNoPreviews
	}
	cfg.Targets = cfg.SiteConfigs.Previews

	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}
	if cfg.Rate, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cmd, cfg)
	defer a.close()

	bp := pipeline.NewBatchProcessor(a.factory(),
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithRateLimit(cfg.Rate),
		pipeline.WithBatchLogger(a.logger),
	)

	var failed []string
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(r pipeline.Result, _ int) {
		name := r.Capture.Target.Name
		if r.Err != nil {
			a.mu.Lock()
			fmt.Fprintf(a.stderr, "Error: %s: %v\n", name, r.Err)
			failed = append(failed, name)
			a.mu.Unlock()
			return
		}
		if err := a.writeSummary(r.Capture); err != nil {
			a.logger.Warn("failed to write summary", "name", name, "error", err)
		}
	})
	if err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d captures failed: %s",
			len(failed), len(cfg.Targets), strings.Join(failed, ", "))
	}
	return nil
}

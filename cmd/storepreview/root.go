package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/storepreview/internal/config"
	"github.com/nao1215/storepreview/internal/model"
)

// NewRootCmd creates the root command. Given a URL and a name it captures
// one preview.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storepreview <url> <name>",
		Short: "Capture a sanitized static preview of a storefront page",
		Long: `storepreview fetches a storefront page and writes a static preview to
public/previews/<name>.html.

The preview has tracking and analytics scripts, noscript blocks, chat widgets
and alternate-language links removed. Root-relative and protocol-relative URLs
are made absolute against the page's origin, a <base> element pins every link
to the live store, and a small shim keeps the search and cart drawers working.

Examples:
  # Capture the home page as public/previews/home.html
  storepreview https://shop.example.com/ home

  # Capture into another directory and print a Markdown summary
  storepreview --dir site/previews --markdown https://shop.example.com/products/tee tee

  # Render client-side storefronts in headless Chrome
  storepreview --render https://shop.example.com/ home`,
		Args:          captureArgs,
		RunE:          runCaptureCmd,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .storepreview in current or home directory)")
	addCaptureFlags(cmd)

	cmd.AddCommand(NewBatchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// captureArgs requires exactly a URL and a name.
func captureArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 2 {
		return config.ErrMissingArgs
	}
	return cobra.ExactArgs(2)(cmd, args)
}

// Execute runs the CLI and exits with its status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the exit status. Usage errors
// print the usage line; other failures print "Error: <message>".
func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if config.IsUsageError(err) {
			fmt.Fprintln(stderr, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func runCaptureCmd(cmd *cobra.Command, args []string) error {
	target, err := model.NewTarget(args[0], args[1])
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Targets = []model.Target{target}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(cmd, cfg)
	defer a.close()

	p, err := a.factory()(target)
	if err != nil {
		return err
	}

	c := model.NewCapture(target)
	if err := p.Execute(ctx, c); err != nil {
		return err
	}
	return a.writeSummary(c)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

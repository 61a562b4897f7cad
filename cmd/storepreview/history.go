package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/storepreview/internal/config"
	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "List recorded preview captures",
		Long: `History lists the captures recorded in the history database, newest first.

Every successful capture is recorded unless --no-history is given. The
database lives in the XDG data directory (for example
~/.local/share/storepreview/history.db on Linux).

Examples:
  # List every capture
  storepreview history

  # List the captures of the "home" preview
  storepreview history home

  # Show only the newest capture of "home" as Markdown
  storepreview history --latest --markdown home

  # List the preview names that have been captured
  storepreview history --names`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of captures to list (0 for all)")
	cmd.Flags().BoolP("latest", "l", false,
		"Show only the newest capture of the named preview")
	cmd.Flags().BoolP("names", "L", false,
		"List the captured preview names")
	cmd.Flags().BoolP("json", "j", false,
		"Output history in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output history in Markdown format")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	}

	flags := cmd.Flags()
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	latest, err := flags.GetBool("latest")
	if err != nil {
		return err
	}
	names, err := flags.GetBool("names")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if latest && name == "" {
		return errors.New("--latest requires a preview name")
	}

	dbDir, err := flags.GetString("history-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	out := cmd.OutOrStdout()
	var w report.Writer
	switch {
	case jsonOutput:
		w = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		w = report.NewMarkdownWriter(out)
	default:
		w = report.NewTextWriter(out)
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if errors.Is(err, database.ErrNotFound) {
		if names {
			return nil
		}
		_, err = w.WriteHistory(nil)
		return err
	}
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmdContext(cmd)

	if names {
		list, err := db.ListNames(ctx)
		if err != nil {
			return err
		}
		for _, n := range list {
			fmt.Fprintln(out, n)
		}
		return nil
	}

	var records []database.CaptureRecord
	if latest {
		rec, err := db.LatestCapture(ctx, name)
		if err != nil {
			return err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	} else {
		records, err = db.ListCaptures(ctx, name, limit)
		if err != nil {
			return err
		}
	}

	_, err = w.WriteHistory(records)
	return err
}

package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history [name]" {
		t.Errorf("expected use 'history [name]', got %q", cmd.Use)
	}
	for _, name := range []string{"limit", "latest", "names", "json", "markdown", "history-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestRunHistory(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		code, stdout, stderr := runCLI("history", "--history-dir", t.TempDir())
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if stdout != "No captures recorded.\n" {
			t.Errorf("unexpected stdout: %q", stdout)
		}
	})

	t.Run("empty history as json", func(t *testing.T) {
		t.Parallel()

		code, stdout, _ := runCLI("history", "--history-dir", t.TempDir(), "--json")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if strings.TrimSpace(stdout) != "[]" {
			t.Errorf("expected [], got %q", stdout)
		}
	})

	t.Run("lists recorded captures", func(t *testing.T) {
		t.Parallel()

		srv, _ := newStorefront(t)
		cfg := writeConfig(t, "sites: {}\n")
		previews := t.TempDir()
		history := t.TempDir()

		for _, name := range []string{"home", "landing", "home"} {
			code, _, stderr := runCLI("-c", cfg, "--dir", previews, "--history-dir", history, srv.URL+"/", name)
			if code != 0 {
				t.Fatalf("capture %s: expected exit 0, got %d (stderr: %s)", name, code, stderr)
			}
		}

		code, stdout, stderr := runCLI("history", "--history-dir", history, "home")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if got := strings.Count(stdout, " home "); got != 2 {
			t.Errorf("expected 2 home rows, got %d in %q", got, stdout)
		}
		if strings.Contains(stdout, "landing") {
			t.Errorf("expected only home rows, got %q", stdout)
		}

		code, stdout, _ = runCLI("history", "--history-dir", history, "--names")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if stdout != "home\nlanding\n" {
			t.Errorf("unexpected names: %q", stdout)
		}

		code, stdout, _ = runCLI("history", "--history-dir", history, "--latest", "--json", "home")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		var entries []map[string]any
		if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if len(entries) != 1 {
			t.Errorf("expected 1 entry, got %d", len(entries))
		}

		code, stdout, _ = runCLI("history", "--history-dir", history, "--markdown")
		if code != 0 {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, "# ") {
			t.Errorf("expected Markdown heading, got %q", stdout)
		}
	})

	t.Run("latest requires a name", func(t *testing.T) {
		t.Parallel()

		code, _, stderr := runCLI("history", "--history-dir", t.TempDir(), "--latest")
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, "--latest requires a preview name") {
			t.Errorf("unexpected stderr: %q", stderr)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		code, _, stderr := runCLI("history", "--history-dir", t.TempDir(), "--json", "--markdown")
		if code != 1 {
			t.Errorf("expected exit 1, got %d", code)
		}
		if !strings.Contains(stderr, "conflicting report formats") {
			t.Errorf("unexpected stderr: %q", stderr)
		}
	})
}

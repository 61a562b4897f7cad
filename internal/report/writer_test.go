package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/storepreview/internal/database"
	"github.com/nao1215/storepreview/internal/model"
)

func createTestSummary() *model.Summary {
	return &model.Summary{
		Name:             "home",
		URL:              "https://shop.example.com/",
		Origin:           "https://shop.example.com",
		OutputPath:       "public/previews/home.html",
		Title:            "Example Store",
		FetchedBytes:     182344,
		OutputBytes:      97280,
		SizeKB:           95,
		RemainingScripts: 6,
		ScriptHosts:      []string{"cdn.shopify.com", "shop.example.com"},
		Trackers: []model.TrackerID{
			{Type: "google_tag_manager", ID: "GTM-ABC123"},
			{Type: "facebook_pixel", ID: "123456789012345", Remaining: true},
		},
		Stats: model.Stats{
			AlternateLinksRemoved: 4,
			NoscriptsRemoved:      2,
			WidgetsRemoved:        1,
			ScriptsKept:           6,
			ScriptsRemoved:        21,
			URLsRewritten:         140,
		},
		CapturedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func createTestRecords() []database.CaptureRecord {
	return []database.CaptureRecord{
		{
			ID: 2, Name: "home", URL: "https://shop.example.com/", Origin: "https://shop.example.com",
			CapturedAt: time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC), OutputBytes: 97280,
			RemainingScripts: 6, ScriptsRemoved: 21, Title: "Example Store",
		},
		{
			ID: 1, Name: "product", URL: "https://shop.example.com/products/tee", Origin: "https://shop.example.com",
			CapturedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC), OutputBytes: 51200,
			RemainingScripts: 4, ScriptsRemoved: 17,
		},
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("prints the two summary lines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewTextWriter(&buf).Write(createTestSummary())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "Wrote public/previews/home.html\nSize: 95 KB, scripts remaining: 6\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
		if n != len(want) {
			t.Errorf("n = %d, want %d", n, len(want))
		}
	})

	t.Run("details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithDetails(true)).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{"Title:             Example Store", "Scripts removed:   21", "[+] script host cdn.shopify.com",
			"[-] google_tag_manager GTM-ABC123", "[!] facebook_pixel 123456789012345",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("history table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).WriteHistory(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), buf.String())
		}
		if !strings.HasPrefix(lines[0], "CAPTURED") {
			t.Errorf("unexpected header %q", lines[0])
		}
		if !strings.Contains(lines[1], "home") || !strings.Contains(lines[1], "95 KB") {
			t.Errorf("unexpected first row %q", lines[1])
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No captures recorded.\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got["output_path"] != "public/previews/home.html" {
			t.Errorf("output_path = %v", got["output_path"])
		}
		if got["size_kb"] != float64(95) || got["remaining_scripts"] != float64(6) {
			t.Errorf("unexpected size fields: %v", got)
		}
		if !strings.Contains(buf.String(), "\n  \"name\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteHistory(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected one line of compact JSON, got %q", buf.String())
		}

		var got []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(got) != 2 || got[1]["name"] != "product" {
			t.Errorf("unexpected history %v", got)
		}
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteHistory(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "[]\n" {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"# Storefront Preview: home",
			"## Sanitizing",
			"Scripts removed",
			"```mermaid",
			"- cdn.shopify.com",
			"6 scripts still run in the preview.",
			"## Tracking IDs",
			"`GTM-ABC123`",
			"1 tracking IDs remain in the preview.",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("summary without removals", func(t *testing.T) {
		t.Parallel()

		s := createTestSummary()
		s.Stats = model.Stats{}
		s.ScriptHosts = nil
		s.Trackers = nil

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "```mermaid") {
			t.Error("pie chart rendered without scripts")
		}
		if !strings.Contains(out, "No external scripts remain.") {
			t.Error("expected empty hosts note")
		}
		if !strings.Contains(out, "No scripts needed removing.") {
			t.Error("expected tip")
		}
		if strings.Contains(out, "Tracking IDs") {
			t.Error("tracking section rendered without trackers")
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteHistory(createTestRecords()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "# Capture History") || !strings.Contains(out, "https://shop.example.com/products/tee") {
			t.Errorf("unexpected history markdown:\n%s", out)
		}
	})
}

type failingWriter struct{ err error }

func (f failingWriter) Write(*model.Summary) (int, error)                  { return 0, f.err }
func (f failingWriter) WriteHistory([]database.CaptureRecord) (int, error) { return 0, f.err }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewTextWriter(&a), NewJSONWriter(&b))
		if _, err := mw.Write(createTestSummary()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops on error", func(t *testing.T) {
		t.Parallel()

		errWrite := errors.New("closed pipe")
		var b bytes.Buffer
		mw := NewMultiWriter(failingWriter{err: errWrite}, NewTextWriter(&b))
		if _, err := mw.WriteHistory(createTestRecords()); !errors.Is(err, errWrite) {
			t.Fatalf("expected write error, got %v", err)
		}
		if b.Len() != 0 {
			t.Error("second writer should not run after an error")
		}
	})
}

package preview

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/storepreview/internal/model"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and file", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "public", "previews")
		w := NewWriter(dir)
		target := model.Target{URL: "https://shop.example.com/", Name: "home"}

		path, err := w.Write(target, "<html></html>")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != filepath.Join(dir, "home.html") {
			t.Errorf("path = %q", path)
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read preview: %v", err)
		}
		if string(got) != "<html></html>" {
			t.Errorf("content = %q", got)
		}
	})

	t.Run("overwrites existing preview", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(t.TempDir())
		target := model.Target{URL: "https://shop.example.com/", Name: "home"}

		if _, err := w.Write(target, strings.Repeat("old", 100)); err != nil {
			t.Fatalf("first write: %v", err)
		}
		path, err := w.Write(target, "new")
		if err != nil {
			t.Fatalf("second write: %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("expected full overwrite, got %q", got)
		}
	})

	t.Run("rejects unsafe name", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := NewWriter(dir).Write(model.Target{URL: "https://shop.example.com/", Name: "../x"}, "doc")
		if !errors.Is(err, model.ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(filepath.Dir(dir), "x.html")); statErr == nil {
			t.Error("file written outside the previews directory")
		}
	})
}

func TestSizeKB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int
		want  int
	}{
		{0, 0},
		{511, 0},
		{512, 1},
		{1024, 1},
		{1535, 1},
		{1536, 2},
		{10 * 1024, 10},
	}
	for _, tt := range tests {
		if got := SizeKB(tt.bytes); got != tt.want {
			t.Errorf("SizeKB(%d) = %d, want %d", tt.bytes, got, tt.want)
		}
	}
}

func TestCountScripts(t *testing.T) {
	t.Parallel()

	doc := `<script src="a.js"></script><SCRIPT>x()</SCRIPT><Script type="module"></Script><p>script</p>`
	if got := CountScripts(doc); got != 3 {
		t.Errorf("CountScripts = %d, want 3", got)
	}
}

func TestInspect(t *testing.T) {
	t.Parallel()

	doc := `<html><head><base href="https://shop.example.com/" target="_blank">
<title>
  Dawn Theme
  Store
</title>
<script src="https://cdn.shopify.com/s/files/1/theme.js"></script>
<script src="//cdn.shopify.com/other.js"></script>
<script src="/local.js"></script>
<script>inline()</script>
</head><body></body></html>`

	title, hosts := Inspect(doc)
	if title != "Dawn Theme Store" {
		t.Errorf("title = %q", title)
	}
	want := []string{"cdn.shopify.com", "shop.example.com"}
	if strings.Join(hosts, ",") != strings.Join(want, ",") {
		t.Errorf("hosts = %v, want %v", hosts, want)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	c := model.NewCapture(model.Target{URL: "https://shop.example.com/products", Name: "product"})
	c.FetchedBytes = 4096
	c.Document = "<html><head><title>Tee</title></head><body>" + strings.Repeat("x", 2000) + "<script>a()</script></body></html>"
	c.OutputPath = "public/previews/product.html"
	c.Stats.ScriptsRemoved = 4

	s := Summarize(c)
	if s.Name != "product" || s.Origin != "https://shop.example.com" {
		t.Errorf("unexpected identity %+v", s)
	}
	if s.SizeKB != 2 {
		t.Errorf("SizeKB = %d, want 2", s.SizeKB)
	}
	if s.RemainingScripts != 1 {
		t.Errorf("RemainingScripts = %d, want 1", s.RemainingScripts)
	}
	if s.Title != "Tee" {
		t.Errorf("Title = %q", s.Title)
	}
	if s.OutputBytes != len(c.Document) || s.FetchedBytes != 4096 {
		t.Errorf("unexpected byte counts %+v", s)
	}
	if s.Stats.ScriptsRemoved != 4 {
		t.Errorf("stats not carried over")
	}
}

func TestDetectTrackers(t *testing.T) {
	t.Parallel()

	raw := `<script async src="https://www.googletagmanager.com/gtag/js?id=G-ABCDEF1234"></script>
<script>(function(w,d,s,l,i){})(window,document,'script','dataLayer','GTM-K9X2P7');</script>
<script>fbq('init', '123456789012345'); fbq('track', 'PageView');</script>
<script>window.__gtm = 'GTM-K9X2P7';</script>
<script src="https://static.klaviyo.com/onsite/js/klaviyo.js?company_id=AbC123"></script>`

	// The preview kept only the Klaviyo loader.
	doc := `<script src="https://static.klaviyo.com/onsite/js/klaviyo.js?company_id=AbC123"></script>`

	got := DetectTrackers(raw, doc)
	want := []model.TrackerID{
		{Type: "google_analytics_ga4", ID: "G-ABCDEF1234"},
		{Type: "google_tag_manager", ID: "GTM-K9X2P7"},
		{Type: "facebook_pixel", ID: "123456789012345"},
		{Type: "klaviyo", ID: "AbC123", Remaining: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d trackers %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tracker %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if got := DetectTrackers("<html><body>plain page</body></html>", ""); len(got) != 0 {
		t.Errorf("expected no trackers, got %+v", got)
	}
}

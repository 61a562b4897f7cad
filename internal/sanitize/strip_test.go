package sanitize

import (
	"strings"
	"testing"
)

func newTestSanitizer(t *testing.T, opts ...Option) *Sanitizer {
	t.Helper()
	s, err := New(opts...)
	if err != nil {
		t.Fatalf("failed to create sanitizer: %v", err)
	}
	return s
}

// TestRemoveAlternateLinks tests removal of alternate and hreflang links.
func TestRemoveAlternateLinks(t *testing.T) {
	t.Parallel()

	doc := `<head>
<link rel="alternate" hreflang="fr" href="https://example.com/fr">
<link rel="stylesheet" href="/theme.css">
<link hreflang="x-default" href="https://example.com/">
<link href="/feed.atom" REL=alternate type="application/atom+xml">
</head>`

	out, n := RemoveAlternateLinks(doc)
	if n != 3 {
		t.Errorf("expected 3 links removed, got %d", n)
	}
	if strings.Contains(out, "hreflang") || strings.Contains(strings.ToLower(out), "alternate") {
		t.Errorf("expected alternate links to be gone, got %q", out)
	}
	if !strings.Contains(out, `<link rel="stylesheet" href="/theme.css">`) {
		t.Error("expected stylesheet link to remain")
	}
}

func TestRemoveNoscripts(t *testing.T) {
	t.Parallel()

	doc := `<body><noscript><img src="https://www.facebook.com/tr?id=1"></noscript><p>hi</p><NOSCRIPT class="x">
<iframe src="https://www.googletagmanager.com/ns.html"></iframe>
</NOSCRIPT ></body>`

	out, n := RemoveNoscripts(doc)
	if n != 2 {
		t.Errorf("expected 2 noscripts removed, got %d", n)
	}
	if out != `<body><p>hi</p></body>` {
		t.Errorf("unexpected output %q", out)
	}
}

// TestStripWidgets tests removal of chat widget custom elements.
func TestStripWidgets(t *testing.T) {
	t.Parallel()

	t.Run("removes vendor element with content", func(t *testing.T) {
		t.Parallel()
		s := newTestSanitizer(t)
		doc := `<body><p>a</p><shopify-chat shop-id="1"><div>chat</div></shopify-chat><p>b</p></body>`
		out, stats := s.Strip(doc)
		if out != `<body><p>a</p><p>b</p></body>` {
			t.Errorf("unexpected output %q", out)
		}
		if stats.WidgetsRemoved != 1 {
			t.Errorf("expected 1 widget removed, got %d", stats.WidgetsRemoved)
		}
	})

	t.Run("keeps theme custom elements", func(t *testing.T) {
		t.Parallel()
		s := newTestSanitizer(t)
		doc := `<cart-drawer class="drawer"><div>cart</div></cart-drawer>`
		out, _ := s.Strip(doc)
		if out != doc {
			t.Errorf("expected cart-drawer to remain, got %q", out)
		}
	})

	t.Run("opening tag without close is left alone", func(t *testing.T) {
		t.Parallel()
		s := newTestSanitizer(t)
		doc := `<tidio-chat><p>x</p>`
		out, stats := s.Strip(doc)
		if out != doc || stats.WidgetsRemoved != 0 {
			t.Errorf("expected document unchanged, got %q", out)
		}
	})

	t.Run("custom prefix from options", func(t *testing.T) {
		t.Parallel()
		s := newTestSanitizer(t, WithWidgetPrefixes("acme-"))
		doc := `<x><ACME-Helpdesk id="h">help</ACME-Helpdesk></x>`
		out, _ := s.Strip(doc)
		if out != `<x></x>` {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("two elements of the same name", func(t *testing.T) {
		t.Parallel()
		s := newTestSanitizer(t)
		doc := `<gorgias-chat>1</gorgias-chat>|<gorgias-chat>2</gorgias-chat >`
		out, stats := s.Strip(doc)
		if out != "|" || stats.WidgetsRemoved != 2 {
			t.Errorf("unexpected output %q (%d removed)", out, stats.WidgetsRemoved)
		}
	})
}

// TestClassifyScript tests the four-way script decision.
func TestClassifyScript(t *testing.T) {
	t.Parallel()

	table := DefaultTable()

	tests := []struct {
		name string
		tag  string
		want Verdict
	}{
		{
			name: "keep wins over remove",
			tag:  `<script src="https://cdn.shopify.com/s/files/1/2/t/4/assets/redirect-analytics.js"></script>`,
			want: VerdictKeep,
		},
		{
			name: "remove pattern",
			tag:  `<script async src="https://connect.facebook.net/en_US/fbevents.js"></script>`,
			want: VerdictRemove,
		},
		{
			name: "small inline config is kept",
			tag:  `<script>window.variantStrings = { addToCart: "Add to cart" };</script>`,
			want: VerdictKeep,
		},
		{
			name: "inline without config global is removed",
			tag:  `<script>console.log("hello")</script>`,
			want: VerdictRemove,
		},
		{
			name: "unknown external script is kept",
			tag:  `<script src="https://cdn.example.net/vendor/slider.js" defer></script>`,
			want: VerdictKeep,
		},
		{
			name: "src inside inline body does not count as attribute",
			tag:  `<script>var img = new Image(); img.src = "x";</script>`,
			want: VerdictRemove,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyScript(table, tt.tag); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestStripCountsScripts(t *testing.T) {
	t.Parallel()

	s := newTestSanitizer(t)
	doc := `<head>
<script src="https://www.googletagmanager.com/gtm.js?id=GTM-1"></script>
<script>window.Shopify = {};</script>
<script type="text/javascript">
  (function(){ trekkie.load(); })();
</script>
<script src="/cdn/shop/t/1/assets/global.js" defer></script>
</head>`

	out, stats := s.Strip(doc)
	if stats.ScriptsKept != 2 {
		t.Errorf("expected 2 scripts kept, got %d", stats.ScriptsKept)
	}
	if stats.ScriptsRemoved != 2 {
		t.Errorf("expected 2 scripts removed, got %d", stats.ScriptsRemoved)
	}
	if strings.Contains(out, "googletagmanager") || strings.Contains(out, "trekkie") {
		t.Errorf("expected trackers to be removed, got %q", out)
	}
}

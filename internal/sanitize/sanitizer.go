package sanitize

import (
	"net/url"
	"regexp"

	"github.com/nao1215/storepreview/internal/model"
)

// Sanitizer holds the compiled pattern tables used by Strip.
// It is immutable after New and safe for concurrent use.
type Sanitizer struct {
	// table classifies script elements.
	table *Table

	// widgets matches opening tags of chat widget custom elements.
	widgets *regexp.Regexp

	// extraKeep and extraRemove are appended to the default table.
	extraKeep   []string
	extraRemove []string

	// widgetPrefixes are the custom element prefixes to remove.
	widgetPrefixes []string
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithExtraPatterns appends site-specific keep and remove patterns after the
// built-in entries of the same list.
func WithExtraPatterns(keep, remove []string) Option {
	return func(s *Sanitizer) {
		s.extraKeep = append(s.extraKeep, keep...)
		s.extraRemove = append(s.extraRemove, remove...)
	}
}

// WithWidgetPrefixes adds custom element prefixes to the default list.
func WithWidgetPrefixes(prefixes ...string) Option {
	return func(s *Sanitizer) {
		s.widgetPrefixes = append(s.widgetPrefixes, prefixes...)
	}
}

// WithTable replaces the default table.
func WithTable(t *Table) Option {
	return func(s *Sanitizer) {
		s.table = t
	}
}

// New creates a Sanitizer. It fails only when an extra pattern does not compile.
func New(opts ...Option) (*Sanitizer, error) {
	s := &Sanitizer{
		widgetPrefixes: append([]string(nil), DefaultWidgetPrefixes...),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.table == nil {
		s.table = DefaultTable()
	}
	if len(s.extraKeep) > 0 || len(s.extraRemove) > 0 {
		t, err := s.table.Extend(s.extraKeep, s.extraRemove)
		if err != nil {
			return nil, err
		}
		s.table = t
	}
	s.widgets = compileWidgetPattern(s.widgetPrefixes)

	return s, nil
}

// Table returns the table used to classify scripts.
func (s *Sanitizer) Table() *Table {
	return s.table
}

// Sanitize runs Strip, Normalize and InjectShim in order.
func (s *Sanitizer) Sanitize(doc string, origin *url.URL) (string, model.Stats) {
	doc, stats := s.Strip(doc)
	doc, stats.URLsRewritten = Normalize(doc, origin)
	return InjectShim(doc), stats
}

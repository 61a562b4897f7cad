package sanitize

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxInlineScriptLength is the size, in characters of the whole element, at
// which an unclassified inline configuration script stops being kept.
const MaxInlineScriptLength = 5000

// Verdict is the outcome of matching a script tag against a Table.
type Verdict int

const (
	// VerdictNone means no table entry matched.
	VerdictNone Verdict = iota
	// VerdictKeep means the script is retained unchanged.
	VerdictKeep
	// VerdictRemove means the script is deleted.
	VerdictRemove
)

// String returns the verdict name used in logs.
func (v Verdict) String() string {
	switch v {
	case VerdictKeep:
		return "keep"
	case VerdictRemove:
		return "remove"
	default:
		return "none"
	}
}

// defaultKeepPatterns match theme code the drawers and hero depend on.
var defaultKeepPatterns = []string{
	`/s/files/[^"'\s]+/assets/[^"'\s]+\.js`,
	`/assets/(?:global|constants|pubsub|theme|vendor|details-disclosure|details-modal|search-form|predictive-search|cart|cart-drawer|cart-notification|product-form|product-info|media-gallery|animations|quick-add)[\w.-]*\.js`,
	`\bcustomElements\.define\s*\(`,
	`type\s*=\s*["']?application/ld\+json`,
}

// defaultRemovePatterns match trackers, pixels, chat loaders and redirects.
var defaultRemovePatterns = []string{
	`googletagmanager`,
	`google-analytics`,
	`\bgtag\s*\(`,
	`\bdataLayer\b`,
	`analytics`,
	`doubleclick`,
	`connect\.facebook\.net`,
	`fbevents`,
	`\bfbq\s*\(`,
	`hotjar`,
	`clarity\.ms`,
	`klaviyo`,
	`tiktok`,
	`pinterest|pintrk`,
	`sc-static\.net|snaptr`,
	`bat\.bing\.com`,
	`criteo`,
	`trekkie`,
	`monorail`,
	`web-pixels|web_pixels|wpm@`,
	`shopify-perf-kit|perf-kit`,
	`preview_bar|previewbar`,
	`shop\.app`,
	`boomerang`,
	`redirect`,
	`recaptcha`,
	`gorgias|tidio|intercom|zendesk|zdassets|shopify-chat|inbox`,
}

// configGlobalPattern matches an inline assignment to one of the storefront
// configuration globals themes read at startup.
var configGlobalPattern = regexp.MustCompile(
	`(?i)\b(?:window\.)?(?:Shopify|theme|routes|cartStrings|variantStrings|accessibilityStrings|quickOrderListStrings|shopUrl|themeSettings)(?:\.[A-Za-z_$][\w$]*)*\s*=[^=]`,
)

// Matcher is one tagged entry of a Table.
type Matcher struct {
	// Verdict is returned when the pattern matches.
	Verdict Verdict

	// Pattern is the source expression, kept for logging.
	Pattern string

	re *regexp.Regexp
}

// NewMatcher compiles pattern case-insensitively into a Matcher.
func NewMatcher(verdict Verdict, pattern string) (Matcher, error) {
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return Matcher{}, fmt.Errorf("invalid %s pattern %q: %w", verdict, pattern, err)
	}
	return Matcher{Verdict: verdict, Pattern: pattern, re: re}, nil
}

// Match reports whether the matcher applies to tag.
func (m Matcher) Match(tag string) bool {
	return m.re.MatchString(tag)
}

// Table is an ordered list of matchers: every keep entry precedes every
// remove entry, and the first match decides.
type Table struct {
	keep   []Matcher
	remove []Matcher
}

// NewTable compiles keep and remove patterns into a Table.
func NewTable(keep, remove []string) (*Table, error) {
	t := &Table{}
	for _, p := range keep {
		m, err := NewMatcher(VerdictKeep, p)
		if err != nil {
			return nil, err
		}
		t.keep = append(t.keep, m)
	}
	for _, p := range remove {
		m, err := NewMatcher(VerdictRemove, p)
		if err != nil {
			return nil, err
		}
		t.remove = append(t.remove, m)
	}
	return t, nil
}

// DefaultTable returns the built-in storefront table.
func DefaultTable() *Table {
	t, err := NewTable(defaultKeepPatterns, defaultRemovePatterns)
	if err != nil {
		panic(err) // built-in patterns are constant
	}
	return t
}

// Extend returns a copy of t with extra patterns appended after the existing
// entries of the same list. Built-in precedence is preserved.
func (t *Table) Extend(keep, remove []string) (*Table, error) {
	extra, err := NewTable(keep, remove)
	if err != nil {
		return nil, err
	}
	out := &Table{
		keep:   make([]Matcher, 0, len(t.keep)+len(extra.keep)),
		remove: make([]Matcher, 0, len(t.remove)+len(extra.remove)),
	}
	out.keep = append(append(out.keep, t.keep...), extra.keep...)
	out.remove = append(append(out.remove, t.remove...), extra.remove...)
	return out, nil
}

// Matchers returns the entries in evaluation order.
func (t *Table) Matchers() []Matcher {
	all := make([]Matcher, 0, len(t.keep)+len(t.remove))
	all = append(all, t.keep...)
	return append(all, t.remove...)
}

// Match returns the first matcher that applies to tag.
func (t *Table) Match(tag string) (Matcher, bool) {
	for _, m := range t.keep {
		if m.Match(tag) {
			return m, true
		}
	}
	for _, m := range t.remove {
		if m.Match(tag) {
			return m, true
		}
	}
	return Matcher{}, false
}

// Classify returns the verdict for tag, or VerdictNone if nothing matched.
func (t *Table) Classify(tag string) Verdict {
	m, ok := t.Match(tag)
	if !ok {
		return VerdictNone
	}
	return m.Verdict
}

// IsConfigScript reports whether an inline script assigns a known
// configuration global and is small enough to keep.
func IsConfigScript(tag string) bool {
	return utf8.RuneCountInString(tag) < MaxInlineScriptLength && configGlobalPattern.MatchString(tag)
}

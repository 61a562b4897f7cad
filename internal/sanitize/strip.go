package sanitize

import (
	"regexp"
	"strings"

	"github.com/nao1215/storepreview/internal/model"
)

var (
	alternateLinkPattern = regexp.MustCompile(`(?i)<link\b[^>]*?(?:\brel\s*=\s*["']?alternate\b|\bhreflang\s*=)[^>]*>`)
	noscriptPattern      = regexp.MustCompile(`(?is)<noscript\b[^>]*>.*?</noscript\s*>`)
	scriptPattern        = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	srcAttrPattern       = regexp.MustCompile(`(?i)\ssrc\s*=`)
)

// DefaultWidgetPrefixes are the vendor prefixes of chat widget custom elements.
var DefaultWidgetPrefixes = []string{
	"gorgias-",
	"tidio-",
	"intercom-",
	"zendesk-",
	"inbox-",
	"shopify-chat",
	"chat-widget",
}

// compileWidgetPattern builds the opening-tag matcher for prefixes.
func compileWidgetPattern(prefixes []string) *regexp.Regexp {
	if len(prefixes) == 0 {
		return nil
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return regexp.MustCompile(`(?i)<((?:` + strings.Join(quoted, "|") + `)[a-z0-9-]*)(?:\s[^>]*)?>`)
}

// RemoveAlternateLinks drops <link> elements carrying rel="alternate" or hreflang.
func RemoveAlternateLinks(doc string) (string, int) {
	n := len(alternateLinkPattern.FindAllStringIndex(doc, -1))
	if n == 0 {
		return doc, 0
	}
	return alternateLinkPattern.ReplaceAllString(doc, ""), n
}

// RemoveNoscripts drops every <noscript> element with its content.
func RemoveNoscripts(doc string) (string, int) {
	n := len(noscriptPattern.FindAllStringIndex(doc, -1))
	if n == 0 {
		return doc, 0
	}
	return noscriptPattern.ReplaceAllString(doc, ""), n
}

// removeWidgets drops custom elements whose hyphenated name starts with a
// widget prefix. The element runs from its opening tag to the first closing
// tag of the same name; an opening tag without one is left alone.
func removeWidgets(doc string, open *regexp.Regexp) (string, int) {
	if open == nil {
		return doc, 0
	}
	matches := open.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc, 0
	}

	lower := asciiLower(doc)
	var b strings.Builder
	cursor, removed := 0, 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start < cursor {
			continue // inside an element already removed
		}
		name := lower[m[2]:m[3]]
		if !strings.Contains(name, "-") {
			continue
		}
		closeEnd := findClosingTag(lower, name, end)
		if closeEnd < 0 {
			continue
		}
		b.WriteString(doc[cursor:start])
		cursor = closeEnd
		removed++
	}
	b.WriteString(doc[cursor:])
	return b.String(), removed
}

// findClosingTag returns the end offset of the first </name> at or after from
// in the lower-cased document, or -1.
func findClosingTag(lower, name string, from int) int {
	needle := "</" + name
	for i := from; i < len(lower); {
		idx := strings.Index(lower[i:], needle)
		if idx < 0 {
			return -1
		}
		j := i + idx + len(needle)
		k := j
		for k < len(lower) && isSpace(lower[k]) {
			k++
		}
		if k < len(lower) && lower[k] == '>' {
			return k + 1
		}
		i = j
	}
	return -1
}

// asciiLower lower-cases ASCII letters only, so byte offsets stay aligned
// with the original document.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// hasSrc reports whether the opening tag of a script element carries src.
func hasSrc(tag string) bool {
	open := tag
	if i := strings.IndexByte(tag, '>'); i >= 0 {
		open = tag[:i+1]
	}
	return srcAttrPattern.MatchString(open)
}

// ClassifyScript decides whether a whole <script>...</script> element stays.
func ClassifyScript(table *Table, tag string) Verdict {
	switch table.Classify(tag) {
	case VerdictKeep:
		return VerdictKeep
	case VerdictRemove:
		return VerdictRemove
	}
	if !hasSrc(tag) {
		if IsConfigScript(tag) {
			return VerdictKeep
		}
		return VerdictRemove
	}
	return VerdictKeep
}

// stripScripts applies ClassifyScript to every script element.
func stripScripts(doc string, table *Table) (string, int, int) {
	kept, removed := 0, 0
	out := scriptPattern.ReplaceAllStringFunc(doc, func(tag string) string {
		if ClassifyScript(table, tag) == VerdictKeep {
			kept++
			return tag
		}
		removed++
		return ""
	})
	return out, kept, removed
}

// Strip runs every removal pass over doc.
func (s *Sanitizer) Strip(doc string) (string, model.Stats) {
	var stats model.Stats
	doc, stats.AlternateLinksRemoved = RemoveAlternateLinks(doc)
	doc, stats.NoscriptsRemoved = RemoveNoscripts(doc)
	doc, stats.WidgetsRemoved = removeWidgets(doc, s.widgets)
	doc, stats.ScriptsKept, stats.ScriptsRemoved = stripScripts(doc, s.table)
	return doc, stats
}

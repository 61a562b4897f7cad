package sanitize

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// rootRelativePattern matches href/src values with a single leading slash.
	// The value group is checked in code for a second slash.
	rootRelativePattern = regexp.MustCompile(`(?i)(\s(?:href|src)\s*=\s*)(["'])(/[^"']*)(["'])`)

	// protocolRelativePattern matches any quoted attribute value starting with //.
	protocolRelativePattern = regexp.MustCompile(`(=\s*["'])//`)

	// srcsetPattern matches a srcset attribute so its candidates can be rewritten.
	srcsetPattern = regexp.MustCompile(`(?i)(\ssrcset\s*=\s*)(["'])([^"']*)(["'])`)

	basePattern = regexp.MustCompile(`(?i)<base\b[^>]*>`)
	headPattern = regexp.MustCompile(`(?i)<head\b[^>]*>`)
	htmlPattern = regexp.MustCompile(`(?i)<html\b[^>]*>`)
)

// BaseElement returns the <base> element pinning origin and opening
// navigations in a new browsing context.
func BaseElement(origin *url.URL) string {
	return fmt.Sprintf(`<base href="%s/" target="_blank">`, originString(origin))
}

func originString(origin *url.URL) string {
	if origin == nil {
		return ""
	}
	return strings.TrimSuffix((&url.URL{Scheme: origin.Scheme, Host: origin.Host}).String(), "/")
}

// absolutize rewrites one URL value. It returns the value unchanged when it is
// neither root-relative nor protocol-relative.
func absolutize(value, origin string) (string, bool) {
	switch {
	case strings.HasPrefix(value, "//"):
		return "https:" + value, true
	case strings.HasPrefix(value, "/"):
		return origin + value, true
	default:
		return value, false
	}
}

// NormalizeURLs makes root-relative href/src values absolute against origin
// and rewrites protocol-relative values to https. Values that are already
// absolute are left alone, so the pass is idempotent.
func NormalizeURLs(doc string, origin *url.URL) (string, int) {
	base := originString(origin)
	rewritten := 0

	doc = rootRelativePattern.ReplaceAllStringFunc(doc, func(m string) string {
		sm := rootRelativePattern.FindStringSubmatch(m)
		prefix, open, value, closing := sm[1], sm[2], sm[3], sm[4]
		if open != closing || strings.HasPrefix(value, "//") {
			return m
		}
		rewritten++
		return prefix + open + base + value + closing
	})

	doc = srcsetPattern.ReplaceAllStringFunc(doc, func(m string) string {
		sm := srcsetPattern.FindStringSubmatch(m)
		prefix, open, value, closing := sm[1], sm[2], sm[3], sm[4]
		if open != closing {
			return m
		}
		candidates := strings.Split(value, ",")
		changed := false
		for i, c := range candidates {
			trimmed := strings.TrimLeft(c, " \t\n\r")
			lead := c[:len(c)-len(trimmed)]
			if out, ok := absolutize(trimmed, base); ok {
				candidates[i] = lead + out
				changed = true
				rewritten++
			}
		}
		if !changed {
			return m
		}
		return prefix + open + strings.Join(candidates, ",") + closing
	})

	rewritten += len(protocolRelativePattern.FindAllStringIndex(doc, -1))
	doc = protocolRelativePattern.ReplaceAllString(doc, "${1}https://")

	return doc, rewritten
}

// InsertBase drops any existing <base> elements and inserts BaseElement as
// the first child of <head>. A document without <head> gets one.
func InsertBase(doc string, origin *url.URL) string {
	doc = basePattern.ReplaceAllString(doc, "")
	base := BaseElement(origin)

	if loc := headPattern.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + base + doc[loc[1]:]
	}
	if loc := htmlPattern.FindStringIndex(doc); loc != nil {
		return doc[:loc[1]] + "<head>" + base + "</head>" + doc[loc[1]:]
	}
	return "<head>" + base + "</head>" + doc
}

// Normalize rewrites URLs and pins the <base> element.
func Normalize(doc string, origin *url.URL) (string, int) {
	doc, n := NormalizeURLs(doc, origin)
	return InsertBase(doc, origin), n
}

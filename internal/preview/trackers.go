package preview

import (
	"regexp"
	"strings"

	"github.com/nao1215/storepreview/internal/model"
)

// trackerPattern finds one kind of tracking identifier. When the expression
// has a capture group, the group is the identifier.
type trackerPattern struct {
	kind string
	re   *regexp.Regexp
}

// trackerPatterns are checked in order so reports are stable.
var trackerPatterns = []trackerPattern{
	{"google_analytics_ua", regexp.MustCompile(`\bUA-\d{4,10}-\d{1,4}\b`)},
	{"google_analytics_ga4", regexp.MustCompile(`\bG-[A-Z0-9]{10,12}\b`)},
	{"google_tag_manager", regexp.MustCompile(`\bGTM-[A-Z0-9]{6,8}\b`)},
	{"google_ads", regexp.MustCompile(`\bAW-\d{9,11}\b`)},
	{"facebook_pixel", regexp.MustCompile(`fbq\s*\(\s*['"]init['"]\s*,\s*['"](\d{15,16})['"]`)},
	{"tiktok_pixel", regexp.MustCompile(`ttq\.load\s*\(\s*['"]([A-Z0-9]{20})['"]`)},
	{"pinterest_tag", regexp.MustCompile(`pintrk\s*\(\s*['"]load['"]\s*,\s*['"](\d{13})['"]`)},
	{"klaviyo", regexp.MustCompile(`klaviyo\.js\?company_id=([A-Za-z0-9]{6})`)},
	{"clarity", regexp.MustCompile(`clarity\.ms/tag/([a-z0-9]{10})`)},
	{"hotjar", regexp.MustCompile(`hjid\s*:\s*(\d{6,7})`)},
}

// DetectTrackers returns the tracking identifiers in raw, the page as
// fetched, and marks those still present in doc, the written preview.
// Each identifier is reported once.
func DetectTrackers(raw, doc string) []model.TrackerID {
	var found []model.TrackerID
	seen := make(map[string]bool)

	for _, p := range trackerPatterns {
		for _, m := range p.re.FindAllStringSubmatch(raw, -1) {
			id := m[0]
			if len(m) > 1 && m[1] != "" {
				id = m[1]
			}
			key := p.kind + ":" + id
			if seen[key] {
				continue
			}
			seen[key] = true
			found = append(found, model.TrackerID{
				Type:      p.kind,
				ID:        id,
				Remaining: strings.Contains(doc, id),
			})
		}
	}
	return found
}

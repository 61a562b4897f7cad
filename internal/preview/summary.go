package preview

import (
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/storepreview/internal/model"
)

// SizeKB returns n bytes as whole kilobytes, rounded to nearest.
func SizeKB(n int) int {
	return int(math.Round(float64(n) / 1024))
}

// CountScripts counts case-insensitive occurrences of "<script" in doc.
func CountScripts(doc string) int {
	return strings.Count(strings.ToLower(doc), "<script")
}

// Inspect extracts the page title and the sorted, distinct hosts of external
// scripts. Relative script sources resolve against the document's <base>.
func Inspect(doc string) (title string, hosts []string) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", nil
	}

	title = strings.Join(strings.Fields(d.Find("title").First().Text()), " ")

	var base *url.URL
	if href, ok := d.Find("base[href]").First().Attr("href"); ok {
		base, _ = url.Parse(href)
	}

	seen := make(map[string]bool)
	d.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		u, err := url.Parse(strings.TrimSpace(src))
		if err != nil {
			return
		}
		if base != nil {
			u = base.ResolveReference(u)
		}
		if h := strings.ToLower(u.Host); h != "" && !seen[h] {
			seen[h] = true
			hosts = append(hosts, h)
		}
	})
	slices.Sort(hosts)
	return title, hosts
}

// Summarize builds the summary of a written capture.
func Summarize(c *model.Capture) *model.Summary {
	title, hosts := Inspect(c.Document)
	return &model.Summary{
		CaptureID:        c.ID,
		Name:             c.Target.Name,
		URL:              c.Target.URL,
		Origin:           c.OriginString(),
		OutputPath:       c.OutputPath,
		Title:            title,
		FetchedBytes:     c.FetchedBytes,
		OutputBytes:      len(c.Document),
		SizeKB:           SizeKB(len(c.Document)),
		RemainingScripts: CountScripts(c.Document),
		ScriptHosts:      hosts,
		Trackers:         DetectTrackers(c.Raw, c.Document),
		Stats:            c.Stats,
		CapturedAt:       c.StartedAt,
		Elapsed:          time.Since(c.StartedAt),
	}
}

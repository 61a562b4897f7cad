package config

import (
	"fmt"
	"maps"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/storepreview/internal/model"
)

// SiteConfig customizes capture for one storefront origin.
type SiteConfig struct {
	// Cookie is sent with the fetch, e.g. a storefront password cookie.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// KeepPatterns are appended after the built-in keep patterns.
	KeepPatterns []string `yaml:"keepPatterns,omitempty"`

	// RemovePatterns are appended after the built-in remove patterns.
	RemovePatterns []string `yaml:"removePatterns,omitempty"`

	// WidgetPrefixes are chat-widget element id/class prefixes removed in
	// addition to the built-in ones.
	WidgetPrefixes []string `yaml:"widgetPrefixes,omitempty"`
}

// RequestHeaders returns Headers plus a Cookie header when Cookie is set.
func (s SiteConfig) RequestHeaders() map[string]string {
	if len(s.Headers) == 0 && s.Cookie == "" {
		return nil
	}
	h := make(map[string]string, len(s.Headers)+1)
	maps.Copy(h, s.Headers)
	if s.Cookie != "" {
		h["Cookie"] = s.Cookie
	}
	return h
}

// File is the structure of the .storepreview configuration file.
type File struct {
	// PreviewsDir overrides the default output directory.
	PreviewsDir string `yaml:"previewsDir,omitempty"`

	// UserAgent overrides the default browser user agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Previews is the list captured by "storepreview batch".
	Previews []model.Target `yaml:"previews,omitempty"`

	// Sites maps an origin host (e.g. "shop.example.com") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for the storefront at rawURL.
// Sites may be keyed by host or host:port.
func (cf *File) GetSiteConfig(rawURL string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	site, ok := cf.lookup(rawURL)
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	result.KeepPatterns = append(append([]string(nil), cf.Defaults.KeepPatterns...), site.KeepPatterns...)
	result.RemovePatterns = append(append([]string(nil), cf.Defaults.RemovePatterns...), site.RemovePatterns...)
	if len(site.WidgetPrefixes) > 0 {
		result.WidgetPrefixes = site.WidgetPrefixes
	}
	return result
}

func (cf *File) lookup(rawURL string) (SiteConfig, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return SiteConfig{}, false
	}
	host := strings.ToLower(u.Host)
	if site, ok := cf.Sites[host]; ok {
		return site, true
	}
	site, ok := cf.Sites[strings.ToLower(u.Hostname())]
	return site, ok
}

// check validates previews and compiles every pattern.
func (cf *File) check() error {
	for i, p := range cf.Previews {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("previews[%d]: %w", i, err)
		}
	}
	sites := map[string]SiteConfig{"defaults": cf.Defaults}
	for k, v := range cf.Sites {
		sites["sites."+k] = v
	}
	for key, s := range sites {
		for _, list := range [][]string{s.KeepPatterns, s.RemovePatterns} {
			for _, p := range list {
				if _, err := regexp.Compile("(?i)" + p); err != nil {
					return fmt.Errorf("%s: bad pattern %q: %w", key, p, err)
				}
			}
		}
	}
	return nil
}

package model

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ErrInvalidURL is returned when a target URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid URL: must be an absolute http or https URL")

	// ErrInvalidName is returned when a target name is not a plain file stem.
	// Names become <previews-dir>/<name>.html, so separators and leading dots are refused.
	ErrInvalidName = errors.New("invalid name: use letters, digits, '.', '_' or '-' and do not start with '.'")
)

// namePattern matches names that are safe to use as an output file stem.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9._-]*$`)

// Target is the input pair of a capture.
type Target struct {
	// URL is the absolute URL of the storefront page to capture.
	URL string `json:"url" yaml:"url"`

	// Name is the output file stem.
	Name string `json:"name" yaml:"name"`
}

// NewTarget validates rawURL and name and returns a Target.
func NewTarget(rawURL, name string) (Target, error) {
	t := Target{URL: strings.TrimSpace(rawURL), Name: strings.TrimSpace(name)}
	if err := t.Validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

// Validate checks that the URL is absolute and the name is a plain file stem.
func (t Target) Validate() error {
	if _, err := t.Origin(); err != nil {
		return err
	}
	if !namePattern.MatchString(t.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, t.Name)
	}
	return nil
}

// Origin returns the scheme and host of the target URL with an empty path.
// The port is kept when present.
func (t Target) Origin() (*url.URL, error) {
	u, err := url.Parse(t.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, t.URL)
	}
	return &url.URL{Scheme: scheme, Host: strings.ToLower(u.Host)}, nil
}

// FileName returns the output file name for the target.
func (t Target) FileName() string {
	return t.Name + ".html"
}

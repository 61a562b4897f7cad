package model

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Capture holds everything one invocation knows about a storefront page.
// Pipeline steps fill it in order: fetch sets Raw, the transforms rewrite
// Document, and the writer sets OutputPath and Summary.
type Capture struct {
	// ID identifies this capture in logs and history.
	ID string `json:"id"`

	// Target is the (url, name) pair the capture was started with.
	Target Target `json:"target"`

	// Origin is derived from Target.URL, e.g. https://example.com.
	Origin *url.URL `json:"-"`

	// StartedAt is when the capture began.
	StartedAt time.Time `json:"started_at"`

	// StatusCode is the HTTP status of the fetch. Zero for rendered fetches.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type,omitempty"`

	// FetchedBytes is the byte length of the raw document as received.
	FetchedBytes int `json:"fetched_bytes"`

	// Raw is the unmodified fetched HTML, decoded to UTF-8.
	Raw string `json:"-"`

	// Document is the working copy that the transform steps rewrite.
	Document string `json:"-"`

	// Stats counts what the transforms did.
	Stats Stats `json:"stats"`

	// OutputPath is where the sanitized document was written.
	OutputPath string `json:"output_path,omitempty"`

	// Summary is set once the document has been written.
	Summary *Summary `json:"summary,omitempty"`

	// Steps lists the pipeline steps that ran.
	Steps []string `json:"steps,omitempty"`
}

// NewCapture creates a Capture for target. The target must already be valid.
func NewCapture(target Target) *Capture {
	origin, err := target.Origin()
	if err != nil {
		origin = &url.URL{}
	}
	return &Capture{
		ID:        uuid.NewString(),
		Target:    target,
		Origin:    origin,
		StartedAt: time.Now(),
	}
}

// OriginString returns the origin as scheme://host.
func (c *Capture) OriginString() string {
	if c.Origin == nil {
		return ""
	}
	return c.Origin.String()
}

// Stats counts the removals and rewrites performed on a document.
type Stats struct {
	AlternateLinksRemoved int `json:"alternate_links_removed"`
	NoscriptsRemoved      int `json:"noscripts_removed"`
	WidgetsRemoved        int `json:"widgets_removed"`
	ScriptsKept           int `json:"scripts_kept"`
	ScriptsRemoved        int `json:"scripts_removed"`
	URLsRewritten         int `json:"urls_rewritten"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.AlternateLinksRemoved += other.AlternateLinksRemoved
	s.NoscriptsRemoved += other.NoscriptsRemoved
	s.WidgetsRemoved += other.WidgetsRemoved
	s.ScriptsKept += other.ScriptsKept
	s.ScriptsRemoved += other.ScriptsRemoved
	s.URLsRewritten += other.URLsRewritten
}

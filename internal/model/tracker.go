package model

// TrackerID is a tracking or analytics identifier found in a fetched page.
type TrackerID struct {
	// Type names the service, e.g. "google_tag_manager".
	Type string `json:"type"`

	// ID is the identifier itself, e.g. "GTM-ABC123".
	ID string `json:"id"`

	// Remaining is true when the identifier still appears in the preview.
	Remaining bool `json:"remaining"`
}

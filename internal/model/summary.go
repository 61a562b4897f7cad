package model

import "time"

// Summary is the informational result of a written preview.
// None of its fields drive control flow.
type Summary struct {
	CaptureID        string        `json:"capture_id"`
	Name             string        `json:"name"`
	URL              string        `json:"url"`
	Origin           string        `json:"origin"`
	OutputPath       string        `json:"output_path"`
	Title            string        `json:"title,omitempty"`
	FetchedBytes     int           `json:"fetched_bytes"`
	OutputBytes      int           `json:"output_bytes"`
	SizeKB           int           `json:"size_kb"`
	RemainingScripts int           `json:"remaining_scripts"`
	ScriptHosts      []string      `json:"script_hosts,omitempty"`
	Trackers         []TrackerID   `json:"trackers,omitempty"`
	Stats            Stats         `json:"stats"`
	CapturedAt       time.Time     `json:"captured_at"`
	Elapsed          time.Duration `json:"elapsed"`
}

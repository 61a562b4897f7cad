// Package model defines the data structures shared by the capture pipeline.
//
// This package contains the following main types:
//   - Target: The (url, name) pair a capture is invoked with
//   - Capture: The in-flight state threaded through pipeline steps
//   - Stats: Counters describing what the sanitizer removed or rewrote
//   - Summary: The informational result printed and recorded after a write
//   - TrackerID: A tracking identifier found in a fetched page
//
// Models live in their own package so that fetch, sanitize, pipeline,
// preview and report can all share them without import cycles.
package model

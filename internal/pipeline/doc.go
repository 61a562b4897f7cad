// Package pipeline runs a capture as an ordered list of steps.
//
// A capture flows through fetch, strip, normalize, inject, write and record.
// Each step reads and updates the same *model.Capture. The pipeline stops at
// the first failing step, so a preview file is only written after the fetch
// and every transform succeeded. Steps that report themselves as optional
// (the history record) are logged on failure and never fail the capture.
//
// BatchProcessor runs one pipeline per target under an errgroup limit.
package pipeline

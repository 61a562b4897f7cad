package config

import (
	"errors"

	"github.com/nao1215/storepreview/internal/model"
)

// Configuration validation errors.
// Config.Validate returns these so callers can match them with errors.Is.
var (
	// ErrMissingArgs is returned when the capture command lacks a URL or a name.
	ErrMissingArgs = errors.New("usage: storepreview <url> <name>")

	// ErrInvalidURL is returned when a target URL is not an absolute http(s) URL.
	ErrInvalidURL = model.ErrInvalidURL

	// ErrInvalidName is returned when a preview name is not a plain file stem.
	ErrInvalidName = model.ErrInvalidName

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Zero means no timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be zero or positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRate is returned when the batch rate is negative.
	ErrInvalidRate = errors.New("invalid rate: must be zero or positive")

	// ErrNoPreviews is returned when batch mode finds no previews in the config file.
	ErrNoPreviews = errors.New("no previews configured: add a previews list to the config file")

	// ErrEmptyPreviewsDir is returned when the output directory is empty.
	ErrEmptyPreviewsDir = errors.New("previews directory must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")
)

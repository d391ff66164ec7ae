package generation

import "errors"

var (
	// ErrGenerationFailed indicates the external image API call failed.
	ErrGenerationFailed = errors.New("generation: external API call failed")

	// ErrMissingBaseURL indicates the client is not configured.
	ErrMissingBaseURL = errors.New("generation: API base URL is required")

	// ErrEmptyPrompt indicates a request without a prompt.
	ErrEmptyPrompt = errors.New("generation: prompt is required")
)

package controls

import "errors"

var (
	// ErrRetrieverRequired is returned when no retriever is provided.
	ErrRetrieverRequired = errors.New("retriever is required")

	// ErrAIProviderRequired is returned when no AI provider is provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrNoControls is returned when the filter selects no controls.
	ErrNoControls = errors.New("no controls matched the filter")

	// ErrMissingJSONTags is returned when a model reply carries no
	// <json>...</json> block.
	ErrMissingJSONTags = errors.New("json tags not found in model response")
)

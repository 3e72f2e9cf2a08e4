package ingestion

import "errors"

var (
	// ErrGraphRepositoryRequired is returned when a graph repository is not provided.
	ErrGraphRepositoryRequired = errors.New("graph repository required")

	// ErrSemanticIndexRequired is returned when a semantic index is not provided.
	ErrSemanticIndexRequired = errors.New("semantic index required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmptyTranscript is returned when a transcript has no segments.
	ErrEmptyTranscript = errors.New("transcript has no segments")

	// ErrMissingVideoID is returned when a transcript has no video id.
	ErrMissingVideoID = errors.New("transcript video id required")
)

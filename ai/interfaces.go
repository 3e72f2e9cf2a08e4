package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionRequest carries one text-completion call: a system prompt, a user
// prompt, and sampling parameters. JSONMode asks the model to emit a single
// JSON object.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Completer produces text completions. It is the engine's single channel to
// the language model: classification, query translation, answer synthesis and
// claim adjudication all go through Complete.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete issues one completion call and returns the model's text.
	// Returns an error on transport, quota or decoding failures; callers are
	// expected to degrade rather than propagate (see the engine package).
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and Completer
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the text completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

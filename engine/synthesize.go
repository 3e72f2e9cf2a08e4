package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
)

// synthesize turns an evidence bundle into a grounded answer. An empty
// bundle returns the fixed absence message without a completion call, and a
// completion failure falls back to a templated count message: the answer is
// never empty and never fabricated from nothing.
func (e *Engine) synthesize(ctx context.Context, query string, bundle *core.EvidenceBundle) string {
	if bundle == nil || len(bundle.Context) == 0 {
		return noInfoMessage
	}

	var parts []string
	for _, snippet := range bundle.Context {
		parts = append(parts, snippet.Text)
	}
	context := strings.Join(parts, "\n\n")

	answer, err := e.completer.Complete(ctx, ai.CompletionRequest{
		System:      "You are a helpful assistant that answers questions based on podcast knowledge graph data.",
		Prompt:      synthesisPrompt(query, context),
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		e.logger.Error("answer synthesis failed", "err", err)
		return fmt.Sprintf("Found %d relevant sources but could not synthesize an answer.", len(bundle.Sources))
	}

	return strings.TrimSpace(answer)
}

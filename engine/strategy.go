package engine

import (
	"context"
	"strings"

	"github.com/podgraph/podgraph/ai"
)

// Strategy is one of the four routing outcomes chosen by intent
// classification.
type Strategy string

const (
	StrategyGraph    Strategy = "graph"
	StrategySemantic Strategy = "semantic"
	StrategyHybrid   Strategy = "hybrid"
	StrategyVerify   Strategy = "verify"
)

// classify maps a free-text query to a retrieval strategy with one
// completion call. Unrecognized responses and completion failures degrade to
// StrategyHybrid, the superset strategy: classification must never abort a
// query.
func (e *Engine) classify(ctx context.Context, query string) Strategy {
	response, err := e.completer.Complete(ctx, ai.CompletionRequest{
		System:      "You are a query classifier. Respond with only one word.",
		Prompt:      intentPrompt(query),
		Temperature: 0,
		MaxTokens:   10,
	})
	if err != nil {
		e.logger.Warn("intent classification failed, defaulting to hybrid", "err", err)
		return StrategyHybrid
	}

	switch strings.ToUpper(strings.TrimSpace(response)) {
	case "GRAPH":
		return StrategyGraph
	case "SEMANTIC":
		return StrategySemantic
	case "HYBRID":
		return StrategyHybrid
	case "VERIFY":
		return StrategyVerify
	default:
		return StrategyHybrid
	}
}

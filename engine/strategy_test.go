package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
		want     Strategy
	}{
		{"graph", "GRAPH", nil, StrategyGraph},
		{"semantic", "SEMANTIC", nil, StrategySemantic},
		{"hybrid", "HYBRID", nil, StrategyHybrid},
		{"verify", "VERIFY", nil, StrategyVerify},
		{"lowercase", "graph", nil, StrategyGraph},
		{"whitespace", "  SEMANTIC\n", nil, StrategySemantic},
		{"unknown word", "BANANA", nil, StrategyHybrid},
		{"empty response", "", nil, StrategyHybrid},
		{"provider failure", "", errors.New("rate limited"), StrategyHybrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEngine(t, &scriptedLLM{intent: tt.response, intentErr: tt.err})
			got := env.engine.classify(context.Background(), "does X relate to Y")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRequestShape(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{intent: "GRAPH"})
	env.engine.classify(context.Background(), "who appeared on episode 7")

	reqs := env.completer.Requests()
	assert.Len(t, reqs, 1)
	assert.Equal(t, float64(0), reqs[0].Temperature)
	assert.Equal(t, 10, reqs[0].MaxTokens)
	assert.Contains(t, reqs[0].Prompt, "who appeared on episode 7")
}

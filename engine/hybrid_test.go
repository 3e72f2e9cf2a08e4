package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/podgraph/podgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridMergesBothBranches(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent: "HYBRID",
		statement: "MATCH (p:Person)-[:APPEARED_ON]->(e:Episode) " +
			"RETURN p.name AS guest, e.video_id AS video_id",
		synthesis: "Naval Ravikant appeared on Episode 7 and spoke about wealth.",
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "What did the guests talk about?", nil)

	assert.Equal(t, core.QueryTypeHybrid, result.Type)
	require.NotNil(t, result.Verified)
	assert.False(t, *result.Verified)
	assert.Equal(t, confidenceMixed, result.Confidence)
	// One graph row plus one passage
	assert.Len(t, result.Sources, 2)
	assert.NotEmpty(t, result.Statement)

	var structured, semantic int
	for _, source := range result.Sources {
		if source.Text == "" {
			structured++
		} else {
			semantic++
		}
	}
	assert.Equal(t, 1, structured)
	assert.Equal(t, 1, semantic)
}

// One branch failing contributes nothing but does not take the other down.
func TestHybridBranchIsolation(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:    "HYBRID",
		statement: "CANNOT_CONVERT",
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "What did Naval say about wealth?", nil)

	assert.Equal(t, core.QueryTypeHybrid, result.Type)
	require.NotEmpty(t, result.Sources)
	assert.Equal(t, "vid7", result.Sources[0].VideoID)
	assert.Empty(t, result.Statement)
	assert.NotEmpty(t, result.Answer)
}

func TestMergeBundlesCapsContext(t *testing.T) {
	graphBundle := &core.EvidenceBundle{Statement: "MATCH (p:Person) RETURN p.name"}
	semanticBundle := &core.EvidenceBundle{}
	for i := 0; i < branchContextCap+3; i++ {
		graphBundle.Context = append(graphBundle.Context, core.Snippet{
			Provenance: core.ProvenanceStructured,
			Text:       fmt.Sprintf("graph %d", i),
		})
		semanticBundle.Context = append(semanticBundle.Context, core.Snippet{
			Provenance: core.ProvenanceSemantic,
			Text:       fmt.Sprintf("semantic %d", i),
		})
		graphBundle.Sources = append(graphBundle.Sources, core.Source{VideoID: fmt.Sprintf("g%d", i)})
		semanticBundle.Sources = append(semanticBundle.Sources, core.Source{VideoID: fmt.Sprintf("s%d", i)})
	}

	merged := mergeBundles(graphBundle, semanticBundle)

	// Context is capped per branch, sources are concatenated whole
	assert.Len(t, merged.Context, 2*branchContextCap)
	assert.Equal(t, "graph 0", merged.Context[0].Text)
	assert.Equal(t, "semantic 0", merged.Context[branchContextCap].Text)
	assert.Len(t, merged.Sources, 2*(branchContextCap+3))
	assert.Equal(t, "MATCH (p:Person) RETURN p.name", merged.Statement)
}

func TestMergeBundlesEmptyBranches(t *testing.T) {
	merged := mergeBundles(&core.EvidenceBundle{}, &core.EvidenceBundle{})
	assert.True(t, merged.Empty())
}

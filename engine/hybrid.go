package engine

import (
	"context"
	"sync"

	"github.com/podgraph/podgraph/core"
)

// runHybrid fans out to the graph and semantic handlers concurrently and
// merges their bundles. Each branch is isolated: a failure on one side
// contributes an empty bundle instead of cancelling the other. runHybrid
// itself never fails.
func (e *Engine) runHybrid(ctx context.Context, query string, filters *core.Filters) *core.EvidenceBundle {
	var graphBundle, semanticBundle *core.EvidenceBundle

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		bundle, err := e.runGraph(ctx, query)
		if err != nil {
			e.logger.Warn("hybrid graph branch failed", "err", err)
			bundle = &core.EvidenceBundle{}
		}
		graphBundle = bundle
	}()

	go func() {
		defer wg.Done()
		bundle, err := e.runSemantic(ctx, query, filters)
		if err != nil {
			e.logger.Warn("hybrid semantic branch failed", "err", err)
			bundle = &core.EvidenceBundle{}
		}
		semanticBundle = bundle
	}()

	wg.Wait()
	return mergeBundles(graphBundle, semanticBundle)
}

// mergeBundles combines the two branch bundles graph-first. Context from
// each branch is capped to bound prompt size; sources and records are
// concatenated whole.
func mergeBundles(graphBundle, semanticBundle *core.EvidenceBundle) *core.EvidenceBundle {
	merged := &core.EvidenceBundle{
		Statement: graphBundle.Statement,
	}

	merged.Context = append(merged.Context, capSnippets(graphBundle.Context, branchContextCap)...)
	merged.Context = append(merged.Context, capSnippets(semanticBundle.Context, branchContextCap)...)

	merged.Sources = append(merged.Sources, graphBundle.Sources...)
	merged.Sources = append(merged.Sources, semanticBundle.Sources...)

	merged.Records = append(merged.Records, graphBundle.Records...)
	merged.Records = append(merged.Records, semanticBundle.Records...)

	return merged
}

func capSnippets(snippets []core.Snippet, n int) []core.Snippet {
	if len(snippets) > n {
		return snippets[:n]
	}
	return snippets
}

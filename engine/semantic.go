package engine

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/podgraph/podgraph/core"
)

// citationSnippetLen truncates source snippet text for citations. The full
// passage text still reaches the synthesizer through the context.
const citationSnippetLen = 200

// runSemantic embeds the query and retrieves the nearest passages, applying
// filters through the semantic index. Semantic recall alone is never treated
// as confirmed fact.
func (e *Engine) runSemantic(ctx context.Context, query string, filters *core.Filters) (*core.EvidenceBundle, error) {
	matches, err := e.index.Search(ctx, query, e.maxResults, filters)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}

	bundle := &core.EvidenceBundle{}
	for _, match := range matches {
		p := match.Passage

		podcast := p.Podcast
		if podcast == "" {
			podcast = "Unknown"
		}
		bundle.Context = append(bundle.Context, core.Snippet{
			Provenance: core.ProvenanceSemantic,
			Text:       fmt.Sprintf("[%s - %.1fs]: %s", podcast, p.StartTime, p.Text),
		})

		bundle.Sources = append(bundle.Sources, core.Source{
			VideoID:    p.VideoID,
			Podcast:    p.Podcast,
			Episode:    p.Episode,
			Speaker:    p.Speaker,
			Date:       p.PublishDate,
			StartTime:  p.StartTime,
			EndTime:    p.EndTime,
			Text:       truncate(p.Text, citationSnippetLen),
			Similarity: match.Similarity,
		})

		bundle.Records = append(bundle.Records, map[string]any{
			"video_id":   p.VideoID,
			"podcast":    p.Podcast,
			"speaker":    p.Speaker,
			"start_time": p.StartTime,
			"text":       p.Text,
			"similarity": match.Similarity,
		})
	}
	return bundle, nil
}

// truncate bounds s to n bytes, marking the cut with an ellipsis. The cut
// backs up to a rune boundary so the result stays valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

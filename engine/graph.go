package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
)

// runGraph translates the query into a statement and executes it against the
// relationship store. Any failure along the way returns an error so the
// caller can downgrade to the hybrid strategy; runGraph itself never falls
// back.
func (e *Engine) runGraph(ctx context.Context, query string) (*core.EvidenceBundle, error) {
	statement, err := e.translate(ctx, query)
	if err != nil {
		return nil, err
	}

	records, err := e.graph.ExecuteStatement(ctx, statement, nil)
	if err != nil {
		return nil, fmt.Errorf("executing statement: %w", err)
	}

	bundle := &core.EvidenceBundle{
		Records:   records,
		Sources:   sourcesFromRecords(records),
		Statement: statement,
	}
	for _, record := range records {
		bundle.Context = append(bundle.Context, core.Snippet{
			Provenance: core.ProvenanceStructured,
			Text:       fmt.Sprintf("[Graph]: %v", record),
		})
	}
	return bundle, nil
}

// translate converts natural language to a statement with one completion
// call. The cannot-convert sentinel and responses missing every recognized
// clause keyword both yield ErrCannotTranslate.
func (e *Engine) translate(ctx context.Context, query string) (string, error) {
	response, err := e.completer.Complete(ctx, ai.CompletionRequest{
		System:      "You are a graph query expert. Return only valid query statements.",
		Prompt:      translationPrompt(query),
		Temperature: 0,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCannotTranslate, err)
	}

	statement := strings.TrimSpace(response)
	if statement == "" || strings.Contains(statement, cannotConvert) {
		return "", ErrCannotTranslate
	}

	// Basic syntactic sanity before hitting the store
	upper := strings.ToUpper(statement)
	if !strings.Contains(upper, "MATCH") && !strings.Contains(upper, "RETURN") && !strings.Contains(upper, "CREATE") {
		return "", ErrCannotTranslate
	}

	return statement, nil
}

// sourcesFromRecords derives citations from structured rows by scanning each
// row for identifier-like column names.
func sourcesFromRecords(records []map[string]any) []core.Source {
	var sources []core.Source

	for _, record := range records {
		var source core.Source
		var populated bool

		for key, value := range record {
			keyLower := strings.ToLower(key)
			switch {
			case strings.Contains(keyLower, "video") || strings.HasSuffix(keyLower, "_id") || keyLower == "id":
				source.VideoID = asString(value)
				populated = true
			case strings.Contains(keyLower, "episode"):
				source.Episode = asString(value)
				populated = true
			case strings.Contains(keyLower, "date"):
				source.Date = asString(value)
				populated = true
			case strings.Contains(keyLower, "timestamp"):
				source.StartTime = asFloat(value)
				populated = true
			case strings.Contains(keyLower, "podcast"):
				source.Podcast = asString(value)
				populated = true
			}
		}

		if populated {
			sources = append(sources, source)
		}
	}
	return sources
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

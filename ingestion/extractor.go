package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
)

// extraction is the structured yield of one passage: guests speaking or
// spoken about, typed entity mentions with sentiment, and discussion topics.
type extraction struct {
	Guests   []string
	Entities []extractedEntity
	Topics   []string
}

type extractedEntity struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Sentiment string `json:"sentiment"`
	Context   string `json:"context"`
}

// extractionTypes maps the extraction vocabulary onto store labels. QUOTE is
// dropped: quotes carry no stable identity worth a node.
var extractionTypes = map[string]string{
	"PERSON":   core.EntityPerson,
	"BOOK":     core.EntityBook,
	"MOVIE":    core.EntityMovie,
	"MUSIC":    core.EntityMusic,
	"COMPANY":  core.EntityCompany,
	"PRODUCT":  core.EntityProduct,
	"LOCATION": core.EntityLocation,
	"TOPIC":    core.EntityTopic,
}

// entityExtractor pulls typed entities out of transcript passages with one
// completion call per passage.
type entityExtractor struct {
	completer ai.Completer
	logger    *slog.Logger
}

func newEntityExtractor(completer ai.Completer, logger *slog.Logger) (*entityExtractor, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &entityExtractor{
		completer: completer,
		logger:    logger.With("processor", "extraction"),
	}, nil
}

func extractionPrompt(text string) string {
	return fmt.Sprintf(`Extract entities from this podcast transcript excerpt.

Entity types: PERSON, BOOK, MOVIE, MUSIC, COMPANY, PRODUCT, LOCATION, TOPIC

Rules:
1. "guests" lists people who are speaking or being interviewed, by full name.
2. "entities" lists things mentioned, each with its type, the sentiment of the
   mention (positive, negative or neutral) and a short quote of the mentioning
   context.
3. "topics" lists the subjects being discussed, as short lowercase phrases.
4. Only include entities actually named in the excerpt. Do not guess.

Excerpt:
%s

Respond with JSON only:
{"guests": ["..."], "entities": [{"name": "...", "type": "...", "sentiment": "...", "context": "..."}], "topics": ["..."]}`, text)
}

// extract runs one completion call over a passage and parses the result.
func (x *entityExtractor) extract(ctx context.Context, text string) (*extraction, error) {
	response, err := x.completer.Complete(ctx, ai.CompletionRequest{
		System:      "You are an entity extraction system for podcast transcripts. Respond with JSON only.",
		Prompt:      extractionPrompt(text),
		Temperature: 0,
		MaxTokens:   1000,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var parsed struct {
		Guests   []string          `json:"guests"`
		Entities []extractedEntity `json:"entities"`
		Topics   []string          `json:"topics"`
	}
	if err := json.Unmarshal([]byte(ai.RepairJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("extraction returned malformed JSON: %w", err)
	}

	result := &extraction{Guests: parsed.Guests}
	for _, entity := range parsed.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			continue
		}
		if _, known := extractionTypes[normalizeType(entity.Type)]; !known {
			x.logger.Debug("skipping entity of unknown type", "name", entity.Name, "type", entity.Type)
			continue
		}
		result.Entities = append(result.Entities, entity)
	}
	for _, topic := range parsed.Topics {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic != "" {
			result.Topics = append(result.Topics, topic)
		}
	}

	return result, nil
}

func normalizeType(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/podgraph/podgraph/ai"
	"github.com/podgraph/podgraph/core"
)

// verifyClaim runs the claim-verification pipeline:
//
//	PARSE -> ENTITY_CHECK -> RELATIONSHIP_CHECK -> EVIDENCE_GATHER ->
//	ADJUDICATE -> RESPOND
//
// No state is retried. A failed parse yields empty components and the
// machine proceeds; the later checks simply find nothing. The response text
// for a refuted claim follows a strict precedence — missing subject, then
// missing object, then missing relationship, then the model's reason — so
// existence failures are reported specifically instead of being masked by a
// generic no-evidence message.
func (e *Engine) verifyClaim(ctx context.Context, claim string) *core.QueryResult {
	parse := e.parseClaim(ctx, claim)

	var subjectExists, objectExists, relationshipExists bool
	var evidence []string

	// ENTITY_CHECK
	if parse.Subject != "" {
		exists, label, err := e.graph.EntityExists(ctx, parse.Subject, "")
		if err != nil {
			e.logger.Warn("subject existence check failed", "err", err)
		} else if exists {
			subjectExists = true
			evidence = append(evidence, fmt.Sprintf("'%s' exists in the knowledge graph as %s", parse.Subject, label))
		}
	}
	if parse.Object != "" {
		exists, label, err := e.graph.EntityExists(ctx, parse.Object, "")
		if err != nil {
			e.logger.Warn("object existence check failed", "err", err)
		} else if exists {
			objectExists = true
			evidence = append(evidence, fmt.Sprintf("'%s' exists in the knowledge graph as %s", parse.Object, label))
		}
	}

	// RELATIONSHIP_CHECK
	relationshipRequested := parse.Subject != "" && parse.Predicate != "" && parse.Object != ""
	if relationshipRequested {
		relType := strings.ToUpper(parse.Predicate)
		exists, err := e.graph.RelationshipExists(ctx, parse.Subject, relType, parse.Object)
		if err != nil {
			e.logger.Warn("relationship check failed", "err", err)
		} else if exists {
			relationshipExists = true
			evidence = append(evidence, fmt.Sprintf("Relationship between '%s' and '%s' exists", parse.Subject, parse.Object))
		}
	}

	// EVIDENCE_GATHER: a bounded semantic pass over the raw claim text,
	// regardless of the structured outcomes above.
	var sources []core.Source
	matches, err := e.index.Search(ctx, claim, evidenceHits, nil)
	if err != nil {
		e.logger.Warn("evidence gathering failed", "err", err)
	} else {
		for _, match := range matches {
			evidence = append(evidence, "Semantic match: "+truncate(match.Passage.Text, evidenceSnippetLen))
			sources = append(sources, core.Source{
				VideoID:    match.Passage.VideoID,
				Podcast:    match.Passage.Podcast,
				StartTime:  match.Passage.StartTime,
				Text:       match.Passage.Text,
				Similarity: match.Similarity,
			})
		}
	}

	// ADJUDICATE
	verdict := e.adjudicate(ctx, claim, evidence, subjectExists, objectExists, relationshipExists)

	// The structured check overrides the model: a claim whose relationship
	// was requested and not found can at best be indeterminate.
	if verdict.Verified != nil && *verdict.Verified && relationshipRequested && !relationshipExists {
		verdict.Verified = nil
		if verdict.Reason == "" {
			verdict.Reason = "No supporting relationship found in the knowledge graph."
		}
	}

	// RESPOND
	answer := respond(parse, verdict, subjectExists, objectExists, relationshipExists)

	return &core.QueryResult{
		Type:       core.QueryTypeVerify,
		Answer:     answer,
		Sources:    sources,
		Confidence: verdict.Confidence,
		Verified:   verdict.Verified,
	}
}

// respond selects the answer text by strict priority whenever the verdict is
// false: missing subject, then missing object, then missing relationship,
// then the model's reason.
func respond(parse core.ClaimParse, verdict *core.VerificationVerdict, subjectExists, objectExists, relationshipExists bool) string {
	switch {
	case verdict.Verified != nil && !*verdict.Verified:
		switch {
		case parse.Subject != "" && !subjectExists:
			return fmt.Sprintf("No record found. '%s' does not appear in the knowledge graph.", parse.Subject)
		case parse.Object != "" && !objectExists:
			return fmt.Sprintf("No record found. '%s' does not appear in the knowledge graph.", parse.Object)
		case !relationshipExists:
			return strings.TrimSpace("No evidence found to support this claim. " + verdict.Reason)
		default:
			if verdict.Reason != "" {
				return verdict.Reason
			}
			return "Cannot verify this claim."
		}

	case verdict.Verified != nil && *verdict.Verified:
		return strings.TrimSpace("Verified. " + verdict.Reason)

	default:
		reason := verdict.Reason
		if reason == "" {
			reason = "Insufficient evidence."
		}
		return "Cannot verify. " + reason
	}
}

// parseClaim decomposes a claim into subject/predicate/object with one
// completion call. Failure never raises: the zero ClaimParse flows on and
// the downstream checks find nothing.
func (e *Engine) parseClaim(ctx context.Context, claim string) core.ClaimParse {
	response, err := e.completer.Complete(ctx, ai.CompletionRequest{
		Prompt:      claimParsePrompt(claim),
		Temperature: 0,
		MaxTokens:   200,
		JSONMode:    true,
	})
	if err != nil {
		e.logger.Warn("claim parse failed", "err", err)
		return core.ClaimParse{}
	}

	var parsed struct {
		Subject   string `json:"subject"`
		Predicate string `json:"predicate"`
		Object    string `json:"object"`
	}
	if err := json.Unmarshal([]byte(ai.RepairJSON(response)), &parsed); err != nil {
		e.logger.Warn("claim parse returned malformed JSON", "err", err)
		return core.ClaimParse{}
	}

	return core.ClaimParse{
		Subject:   parsed.Subject,
		Predicate: parsed.Predicate,
		Object:    parsed.Object,
	}
}

// adjudicate asks the model for a tri-state verdict over the accumulated
// evidence. Call and parse failures yield an indeterminate verdict with zero
// confidence, never an error.
func (e *Engine) adjudicate(ctx context.Context, claim string, evidence []string, subjectExists, objectExists, relationshipExists bool) *core.VerificationVerdict {
	response, err := e.completer.Complete(ctx, ai.CompletionRequest{
		System:      "You are a careful fact-checker. Be conservative with verification.",
		Prompt:      adjudicationPrompt(claim, evidence, subjectExists, objectExists, relationshipExists),
		Temperature: 0,
		MaxTokens:   500,
		JSONMode:    true,
	})
	if err != nil {
		e.logger.Error("adjudication failed", "err", err)
		return &core.VerificationVerdict{
			Confidence: 0,
			Reason:     fmt.Sprintf("Verification failed: %v", err),
		}
	}

	var parsed struct {
		Verified              any      `json:"verified"`
		Confidence            float64  `json:"confidence"`
		Reason                string   `json:"reason"`
		SupportingEvidence    []string `json:"supporting_evidence"`
		ContradictingEvidence []string `json:"contradicting_evidence"`
	}
	if err := json.Unmarshal([]byte(ai.RepairJSON(response)), &parsed); err != nil {
		e.logger.Error("adjudication returned malformed JSON", "err", err)
		return &core.VerificationVerdict{
			Confidence: 0,
			Reason:     fmt.Sprintf("Verification failed: %v", err),
		}
	}

	return &core.VerificationVerdict{
		Verified:              normalizeVerified(parsed.Verified),
		Confidence:            parsed.Confidence,
		Reason:                parsed.Reason,
		SupportingEvidence:    parsed.SupportingEvidence,
		ContradictingEvidence: parsed.ContradictingEvidence,
	}
}

// normalizeVerified maps the model's verified field to the tri-state form.
// Models sometimes emit string booleans; anything unrecognized is
// indeterminate.
func normalizeVerified(v any) *bool {
	switch value := v.(type) {
	case bool:
		return core.Bool(value)
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true":
			return core.Bool(true)
		case "false":
			return core.Bool(false)
		default:
			return nil
		}
	default:
		return nil
	}
}

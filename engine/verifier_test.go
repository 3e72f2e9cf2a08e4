package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/podgraph/podgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimJSON(subject, predicate, object string) string {
	return `{"subject": "` + subject + `", "predicate": "` + predicate + `", "object": "` + object + `"}`
}

func TestVerifySubjectMissing(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Elon Musk", "interviewed", "Naval Ravikant"),
		verdictJSON: `{"verified": false, "confidence": 0.9, "reason": "The subject is not in the graph."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Elon Musk interviewed Naval Ravikant", nil)

	assert.Equal(t, core.QueryTypeVerify, result.Type)
	require.NotNil(t, result.Verified)
	assert.False(t, *result.Verified)
	// Missing subject takes precedence over every other refutation message
	assert.Equal(t, "No record found. 'Elon Musk' does not appear in the knowledge graph.", result.Answer)
	assert.Equal(t, 0.9, result.Confidence)
}

// With neither entity in the store, the refutation still cites the subject:
// the precedence is subject, then object, then relationship.
func TestVerifyNeitherEntityExists(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Alice", "interviewed", "Bob"),
		verdictJSON: `{"verified": false, "confidence": 0.9, "reason": "Nothing in the graph."}`,
	})

	result := env.engine.Answer(context.Background(), "Alice interviewed Bob", nil)

	require.NotNil(t, result.Verified)
	assert.False(t, *result.Verified)
	assert.Equal(t, "No record found. 'Alice' does not appear in the knowledge graph.", result.Answer)
}

func TestVerifyObjectMissing(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "recommended_by", "The Invisible Book"),
		verdictJSON: `{"verified": false, "confidence": 0.8, "reason": "The object is not in the graph."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Naval Ravikant recommended The Invisible Book", nil)

	require.NotNil(t, result.Verified)
	assert.False(t, *result.Verified)
	assert.Equal(t, "No record found. 'The Invisible Book' does not appear in the knowledge graph.", result.Answer)
}

func TestVerifyRelationshipMissing(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "belongs_to", "Lex Fridman Podcast"),
		verdictJSON: `{"verified": false, "confidence": 0.7, "reason": "No such relationship exists."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Naval Ravikant belongs to the Lex Fridman Podcast", nil)

	require.NotNil(t, result.Verified)
	assert.False(t, *result.Verified)
	assert.Equal(t, "No evidence found to support this claim. No such relationship exists.", result.Answer)
}

func TestVerifyConfirmed(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "appeared_on", "Episode 7"),
		verdictJSON: `{"verified": true, "confidence": 0.95, "reason": "The graph records the appearance."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Did Naval Ravikant appear on Episode 7?", nil)

	assert.Equal(t, core.QueryTypeVerify, result.Type)
	require.NotNil(t, result.Verified)
	assert.True(t, *result.Verified)
	assert.Equal(t, "Verified. The graph records the appearance.", result.Answer)
	assert.Equal(t, 0.95, result.Confidence)
}

// A verified=true verdict is overridden when the structured relationship
// check came up empty: the verifier never affirms a relationship the store
// does not contain.
func TestVerifyAffirmationClamped(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "interviewed", "Episode 7"),
		verdictJSON: `{"verified": true, "confidence": 0.9, "reason": "Sounds plausible."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Naval Ravikant interviewed Episode 7", nil)

	assert.Nil(t, result.Verified)
	assert.Equal(t, "Cannot verify. Sounds plausible.", result.Answer)
}

func TestVerifyIndeterminate(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "", ""),
		verdictJSON: `{"verified": null, "confidence": 0.2, "reason": ""}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Is Naval Ravikant real?", nil)

	assert.Nil(t, result.Verified)
	assert.Equal(t, "Cannot verify. Insufficient evidence.", result.Answer)
	assert.Equal(t, 0.2, result.Confidence)
}

func TestVerifyAdjudicationFailure(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:     "VERIFY",
		parseJSON:  claimJSON("Naval Ravikant", "appeared_on", "Episode 7"),
		verdictErr: errors.New("model unavailable"),
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Did Naval Ravikant appear on Episode 7?", nil)

	assert.Equal(t, core.QueryTypeVerify, result.Type)
	assert.Nil(t, result.Verified)
	assert.Zero(t, result.Confidence)
	assert.Contains(t, result.Answer, "Cannot verify.")
}

// A failed parse does not abort verification; the machine proceeds with
// empty components and the verdict decides the answer.
func TestVerifyParseFailure(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   "this is not json",
		verdictJSON: `{"verified": null, "confidence": 0.1, "reason": "Claim could not be decomposed."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Garbled claim text", nil)

	assert.Equal(t, core.QueryTypeVerify, result.Type)
	assert.Nil(t, result.Verified)
	assert.Equal(t, "Cannot verify. Claim could not be decomposed.", result.Answer)
}

// Models sometimes emit "true"/"false" as strings; the verdict still lands
// in the right tri-state bucket.
func TestVerifyStringBooleanVerdict(t *testing.T) {
	env := newTestEngine(t, &scriptedLLM{
		intent:      "VERIFY",
		parseJSON:   claimJSON("Naval Ravikant", "appeared_on", "Episode 7"),
		verdictJSON: `{"verified": "true", "confidence": 0.9, "reason": "Confirmed."}`,
	})
	seedCorpus(t, env)

	result := env.engine.Answer(context.Background(), "Did Naval Ravikant appear on Episode 7?", nil)

	require.NotNil(t, result.Verified)
	assert.True(t, *result.Verified)
	assert.Equal(t, "Verified. Confirmed.", result.Answer)
}

func TestNormalizeVerified(t *testing.T) {
	require.NotNil(t, normalizeVerified(true))
	assert.True(t, *normalizeVerified(true))
	assert.False(t, *normalizeVerified(false))
	assert.True(t, *normalizeVerified("true"))
	assert.False(t, *normalizeVerified(" FALSE "))
	assert.Nil(t, normalizeVerified("maybe"))
	assert.Nil(t, normalizeVerified(nil))
	assert.Nil(t, normalizeVerified(1.0))
}

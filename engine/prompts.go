package engine

import (
	"fmt"
	"strings"
)

// cannotConvert is the sentinel the translation prompt asks the model to
// return when a query has no statement form.
const cannotConvert = "CANNOT_CONVERT"

// noInfoMessage is the fixed absence answer. The synthesizer returns it
// without a completion call whenever the evidence bundle is empty.
const noInfoMessage = "No relevant information found in the knowledge graph for this query."

func intentPrompt(query string) string {
	return fmt.Sprintf(`You are a query intent classifier for a podcast knowledge graph system.

Classify the following query into one of these categories:
1. GRAPH - Queries about relationships, lists, connections, counts (e.g., "Who appeared on podcast X?", "List all books recommended by Y", "Common guests between podcasts")
2. SEMANTIC - Queries requiring finding specific content, quotes, explanations (e.g., "What did X say about Y?", "Find the quote about Z", "Explain the discussion about W")
3. HYBRID - Queries requiring both graph structure and semantic content (e.g., "Trace concept X across podcasts", "Compare views of A and B on topic C", "How has sentiment on X changed?")
4. VERIFY - Queries checking if something is true, asking to verify claims (e.g., "Did X interview Y?", "Verify if X said Z", "Is it true that...")

Query: %q

Respond with ONLY one word: GRAPH, SEMANTIC, HYBRID, or VERIFY
`, query)
}

func translationPrompt(query string) string {
	return fmt.Sprintf(`Convert this natural language query to a graph query statement.

Graph Schema:
%s

Query: %q

Rules:
1. Use exactly one MATCH clause with one node pattern, or one node-relationship-node pattern
2. Use WHERE for filtering, with toLower(...) CONTAINS toLower(...) for case-insensitive name matching
3. Use RETURN with var.prop expressions, optionally aliased with AS
4. Supported comparison operators: CONTAINS, =, >=, <=
5. For "over time" queries ORDER BY e.publish_date
6. Include a LIMIT clause when appropriate
7. Do NOT use WITH, DISTINCT, count(), OPTIONAL MATCH, or multiple MATCH clauses

Examples:
- "List all books recommended by David Senra" ->
  MATCH (b:Book)-[:RECOMMENDED_BY]->(p:Person)
  WHERE toLower(p.name) CONTAINS toLower('David Senra')
  RETURN b.name AS title, b.author AS author

- "Which episodes discussed meditation?" ->
  MATCH (e:Episode)-[:DISCUSSES]->(t:Topic)
  WHERE toLower(t.name) CONTAINS toLower('meditation')
  RETURN e.name AS episode, e.publish_date AS date
  ORDER BY e.publish_date DESC LIMIT 10

- "Who appeared on the Lex Fridman podcast?" ->
  MATCH (p:Person)-[:APPEARED_ON]->(e:Episode)
  RETURN p.name AS guest, e.name AS episode
  LIMIT 25

Return ONLY the statement, no explanation. If you cannot convert the query, return %q.
`, schemaDescription, query, cannotConvert)
}

func synthesisPrompt(query, context string) string {
	return fmt.Sprintf(`You are an assistant that synthesizes answers from podcast knowledge graph data.

Query: %q

Context from sources:
%s

Rules:
1. Answer based ONLY on the provided context
2. If the context doesn't contain enough information, say so
3. Include specific details like timestamps, speakers, and episode names when available
4. DO NOT make up or hallucinate information not in the context
5. For verification queries, clearly state if evidence was found or not
6. If multiple sources agree/disagree, mention that

Provide a clear, concise answer:
`, query, context)
}

func claimParsePrompt(claim string) string {
	return fmt.Sprintf(`Parse this claim/question into its components:

Claim: %q

Extract:
- subject: The main entity (person, thing) being asked about
- predicate: The action/relationship (e.g., "interviewed", "said", "recommended")
- object: The secondary entity or concept

Respond in JSON format:
{"subject": "...", "predicate": "...", "object": "..."}

If a component is not clear, use an empty string.
`, claim)
}

func adjudicationPrompt(claim string, evidence []string, subjectExists, objectExists, relationshipExists bool) string {
	evidenceText := "No evidence found."
	if len(evidence) > 0 {
		var sb strings.Builder
		for _, e := range evidence {
			sb.WriteString("- ")
			sb.WriteString(e)
			sb.WriteString("\n")
		}
		evidenceText = sb.String()
	}

	return fmt.Sprintf(`You are a fact-checker for a podcast knowledge graph. Your job is to verify claims against available evidence.

Claim to verify: %q

Available evidence from the knowledge graph:
%s

Graph verification results:
- Subject exists: %t
- Object exists: %t
- Relationship exists: %t

Instructions:
1. Carefully analyze if the claim is supported by the evidence
2. Look for direct contradictions
3. Consider if absence of evidence means the claim is false
4. Be conservative - if unsure, say "Cannot verify"

Respond in this JSON format:
{
    "verified": true/false/null,
    "confidence": 0.0-1.0,
    "reason": "Explanation of why claim is verified/refuted/uncertain",
    "supporting_evidence": ["List of evidence supporting the claim"],
    "contradicting_evidence": ["List of evidence contradicting the claim"]
}
`, claim, evidenceText, subjectExists, objectExists, relationshipExists)
}

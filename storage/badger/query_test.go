package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/podgraph/podgraph/storage"
)

func TestExecuteStatementSimpleMatch(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	rows, err := graphRepo.ExecuteStatement(context.Background(),
		"MATCH (p:Person) RETURN p.name ORDER BY p.name", nil)
	if err != nil {
		t.Fatalf("ExecuteStatement failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0]["p.name"] != "Derek Sivers" || rows[1]["p.name"] != "Naval Ravikant" {
		t.Fatalf("Unexpected rows: %v", rows)
	}
}

func TestExecuteStatementEdgePattern(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	statement := "MATCH (p:Person)-[:APPEARED_ON]->(e:Episode) " +
		"WHERE toLower(p.name) CONTAINS toLower($guest) " +
		"RETURN e.name AS episode, e.publish_date AS date " +
		"ORDER BY e.publish_date DESC LIMIT 5"

	rows, err := graphRepo.ExecuteStatement(context.Background(), statement,
		map[string]any{"guest": "NAVAL"})
	if err != nil {
		t.Fatalf("ExecuteStatement failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	// DESC by publish date: Episode 7 (2024-05-10) first
	if rows[0]["episode"] != "Episode 7" || rows[1]["episode"] != "Episode 100" {
		t.Fatalf("Unexpected order: %v", rows)
	}
	if rows[0]["date"] != "2024-05-10" {
		t.Fatalf("Expected aliased date column, got %v", rows[0])
	}
}

func TestExecuteStatementRelationshipProps(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	statement := "MATCH (p:Person)-[m:MENTIONED_IN]->(e:Episode) " +
		"WHERE m.sentiment = 'positive' " +
		"RETURN p.name, m.context, m.timestamp"

	rows, err := graphRepo.ExecuteStatement(context.Background(), statement, nil)
	if err != nil {
		t.Fatalf("ExecuteStatement failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0]["m.context"] != "on leverage" || rows[0]["m.timestamp"] != "300" {
		t.Fatalf("Unexpected row: %v", rows[0])
	}
}

func TestExecuteStatementDateComparison(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	statement := "MATCH (e:Episode) WHERE e.publish_date >= '2024-04-01' RETURN e.name"
	rows, err := graphRepo.ExecuteStatement(context.Background(), statement, nil)
	if err != nil {
		t.Fatalf("ExecuteStatement failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["e.name"] != "Episode 7" {
		t.Fatalf("Expected only Episode 7, got %v", rows)
	}
}

func TestExecuteStatementInvalid(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()

	ctx := context.Background()

	cases := []struct {
		name      string
		statement string
	}{
		{"unknown label", "MATCH (x:Planet) RETURN x.name"},
		{"unknown relationship", "MATCH (a:Person)-[:OWNS]->(b:Book) RETURN a.name"},
		{"unbound variable", "MATCH (p:Person) RETURN q.name"},
		{"missing return", "MATCH (p:Person)"},
		{"write clause", "CREATE (p:Person) RETURN p.name"},
		{"unterminated string", "MATCH (p:Person) WHERE p.name = 'naval RETURN p.name"},
	}
	for _, tc := range cases {
		_, err := graphRepo.ExecuteStatement(ctx, tc.statement, nil)
		if !errors.Is(err, storage.ErrInvalidStatement) {
			t.Fatalf("%s: expected ErrInvalidStatement, got %v", tc.name, err)
		}
	}
}

func TestExecuteStatementMissingParameter(t *testing.T) {
	graphRepo, passageRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	defer func() { passageRepo.Close(); graphRepo.Close(); backend.Close() }()
	seedGraph(t, graphRepo)

	statement := "MATCH (p:Person) WHERE toLower(p.name) CONTAINS toLower($guest) RETURN p.name"
	_, err = graphRepo.ExecuteStatement(context.Background(), statement, nil)
	if !errors.Is(err, storage.ErrMissingParameter) {
		t.Fatalf("Expected ErrMissingParameter, got %v", err)
	}
}

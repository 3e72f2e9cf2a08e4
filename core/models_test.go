package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestEntityTuple(t *testing.T) {
	a := &Entity{Type: EntityPerson, Name: "Naval Ravikant"}
	b := &Entity{Type: EntityPerson, Name: "Naval Ravikant"}
	if a.Tuple() != b.Tuple() {
		t.Errorf("identical entities produced different tuples: %q vs %q", a.Tuple(), b.Tuple())
	}

	c := &Entity{Type: EntityTopic, Name: "Naval Ravikant"}
	if a.Tuple() == c.Tuple() {
		t.Errorf("different types produced same tuple: %q", a.Tuple())
	}
}

func TestRelationshipTuple(t *testing.T) {
	a := &Relationship{Type: RelMentionedIn, FromId: 1, ToId: 2, Props: map[string]string{
		"timestamp": "42.0", "sentiment": "positive",
	}}
	b := &Relationship{Type: RelMentionedIn, FromId: 1, ToId: 2, Props: map[string]string{
		"sentiment": "positive", "timestamp": "42.0",
	}}
	if a.Tuple() != b.Tuple() {
		t.Errorf("prop ordering changed the tuple: %q vs %q", a.Tuple(), b.Tuple())
	}

	// Same endpoints, different props: distinct identities
	c := &Relationship{Type: RelMentionedIn, FromId: 1, ToId: 2, Props: map[string]string{
		"timestamp": "99.0", "sentiment": "positive",
	}}
	if a.Tuple() == c.Tuple() {
		t.Errorf("different props produced same tuple: %q", a.Tuple())
	}

	d := &Relationship{Type: RelMentionedIn, FromId: 2, ToId: 1, Props: a.Props}
	if a.Tuple() == d.Tuple() {
		t.Errorf("reversed endpoints produced same tuple: %q", a.Tuple())
	}
}

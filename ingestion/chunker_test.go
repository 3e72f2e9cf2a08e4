package ingestion

import (
	"fmt"
	"strings"
	"testing"
)

func makeTranscript(segmentWords, segments int) *Transcript {
	t := &Transcript{
		VideoID:     "vid1",
		Podcast:     "Test Podcast",
		Episode:     "Episode 1",
		PublishDate: "2024-05-10",
	}
	for i := 0; i < segments; i++ {
		words := make([]string, segmentWords)
		for w := range words {
			words[w] = fmt.Sprintf("s%dw%d", i, w)
		}
		t.Segments = append(t.Segments, Segment{
			Text:    strings.Join(words, " "),
			Speaker: "Host",
			Start:   float64(i * 10),
			End:     float64(i*10 + 10),
		})
	}
	return t
}

func TestChunkTranscriptRespectsBudget(t *testing.T) {
	transcript := makeTranscript(10, 20) // 200 words total

	passages := chunkTranscript(transcript, 50, 10)

	if len(passages) < 4 {
		t.Fatalf("expected at least 4 passages for 200 words at budget 50, got %d", len(passages))
	}
	for i, p := range passages {
		if n := wordCount(p.Text); n > 50 {
			t.Errorf("passage %d has %d words, budget is 50", i, n)
		}
		if p.VideoID != "vid1" || p.Podcast != "Test Podcast" || p.PublishDate != "2024-05-10" {
			t.Errorf("passage %d missing transcript metadata: %+v", i, p)
		}
		if p.EndTime <= p.StartTime {
			t.Errorf("passage %d has non-positive span: start=%f end=%f", i, p.StartTime, p.EndTime)
		}
	}
}

func TestChunkTranscriptOverlap(t *testing.T) {
	transcript := makeTranscript(10, 10)

	passages := chunkTranscript(transcript, 40, 10)

	if len(passages) < 2 {
		t.Fatalf("expected multiple passages, got %d", len(passages))
	}
	for i := 1; i < len(passages); i++ {
		prev := strings.Fields(passages[i-1].Text)
		lastWord := prev[len(prev)-1]
		if !strings.Contains(passages[i].Text, lastWord) {
			t.Errorf("passage %d does not overlap passage %d: missing %q", i, i-1, lastWord)
		}
	}
}

func TestChunkTranscriptNoOverlapDuplication(t *testing.T) {
	transcript := makeTranscript(10, 10)

	passages := chunkTranscript(transcript, 40, 10)

	// No passage may consist solely of the previous passage's tail
	for i := 1; i < len(passages); i++ {
		if strings.Contains(passages[i-1].Text, passages[i].Text) {
			t.Errorf("passage %d is contained in passage %d", i, i-1)
		}
	}
}

func TestChunkTranscriptOversizedSegment(t *testing.T) {
	transcript := makeTranscript(100, 1)

	passages := chunkTranscript(transcript, 50, 10)

	// A single segment over budget becomes one whole passage
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if wordCount(passages[0].Text) != 100 {
		t.Errorf("expected all 100 words retained, got %d", wordCount(passages[0].Text))
	}
}

func TestChunkTranscriptSkipsEmptySegments(t *testing.T) {
	transcript := &Transcript{
		VideoID: "vid1",
		Segments: []Segment{
			{Text: "   ", Start: 0, End: 1},
			{Text: "hello world", Speaker: "Guest", Start: 1, End: 2},
			{Text: "", Start: 2, End: 3},
		},
	}

	passages := chunkTranscript(transcript, 50, 0)

	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Text != "hello world" {
		t.Errorf("unexpected text: %q", passages[0].Text)
	}
	if passages[0].Speaker != "Guest" {
		t.Errorf("expected speaker from first non-empty segment, got %q", passages[0].Speaker)
	}
}

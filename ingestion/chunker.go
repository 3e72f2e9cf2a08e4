package ingestion

import (
	"strings"

	"github.com/podgraph/podgraph/core"
)

const (
	defaultChunkWords   = 200
	defaultOverlapWords = 30
)

// chunkTranscript groups consecutive segments into passages bounded by a
// word budget. Adjacent passages overlap by roughly overlapWords so a
// mention near a boundary lands whole in at least one passage. A single
// segment larger than the budget becomes its own passage; the budget bounds
// accumulation, not splitting.
func chunkTranscript(t *Transcript, maxWords, overlapWords int) []*core.Passage {
	if maxWords < 1 {
		maxWords = defaultChunkWords
	}
	if overlapWords < 0 || overlapWords >= maxWords {
		overlapWords = defaultOverlapWords
	}

	var segments []Segment
	for _, segment := range t.Segments {
		if wordCount(segment.Text) > 0 {
			segments = append(segments, segment)
		}
	}

	var passages []*core.Passage
	i := 0
	for i < len(segments) {
		j := i
		words := 0
		for j < len(segments) {
			w := wordCount(segments[j].Text)
			if words > 0 && words+w > maxWords {
				break
			}
			words += w
			j++
		}
		passages = append(passages, passageFromWindow(t, segments[i:j]))
		if j >= len(segments) {
			break
		}

		// Walk back over the tail for overlap; next > i keeps progress
		next := j
		back := 0
		for next > i+1 && back < overlapWords {
			next--
			back += wordCount(segments[next].Text)
		}
		i = next
	}

	return passages
}

func passageFromWindow(t *Transcript, window []Segment) *core.Passage {
	parts := make([]string, len(window))
	var speaker string
	for i, segment := range window {
		parts[i] = strings.TrimSpace(segment.Text)
		if speaker == "" {
			speaker = segment.Speaker
		}
	}

	return &core.Passage{
		VideoID:     t.VideoID,
		Podcast:     t.Podcast,
		Episode:     t.Episode,
		Speaker:     speaker,
		PublishDate: t.PublishDate,
		Text:        strings.Join(parts, " "),
		StartTime:   window[0].Start,
		EndTime:     window[len(window)-1].End,
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

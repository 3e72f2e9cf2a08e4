package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
)

// Segment is one timed utterance of a transcript.
type Segment struct {
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Transcript is the ingestion input: one episode's worth of timed segments
// plus the metadata that ends up on every derived passage.
type Transcript struct {
	VideoID     string    `json:"video_id"`
	Podcast     string    `json:"podcast"`
	Episode     string    `json:"episode"`
	PublishDate string    `json:"publish_date,omitempty"`
	Segments    []Segment `json:"segments"`
}

// LoadTranscript reads a transcript from a JSON file.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}
	return &t, nil
}

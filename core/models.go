package core

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that re-ingesting the same
// transcript produces the same identifiers.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entity type labels used by the relationship store.
const (
	EntityPerson   = "Person"
	EntityBook     = "Book"
	EntityMovie    = "Movie"
	EntityMusic    = "Music"
	EntityCompany  = "Company"
	EntityProduct  = "Product"
	EntityLocation = "Location"
	EntityTopic    = "Topic"
	EntityEpisode  = "Episode"
	EntityPodcast  = "Podcast"
)

// EntityTypes lists the valid entity type labels.
var EntityTypes = []string{
	EntityPerson,
	EntityBook,
	EntityMovie,
	EntityMusic,
	EntityCompany,
	EntityProduct,
	EntityLocation,
	EntityTopic,
	EntityEpisode,
	EntityPodcast,
}

// Relationship type labels used by the relationship store.
const (
	RelAppearedOn    = "APPEARED_ON"
	RelMentionedIn   = "MENTIONED_IN"
	RelDiscussedIn   = "DISCUSSED_IN"
	RelRecommendedBy = "RECOMMENDED_BY"
	RelReferencedIn  = "REFERENCED_IN"
	RelDiscusses     = "DISCUSSES"
	RelBelongsTo     = "BELONGS_TO"
	RelReferences    = "REFERENCES"
)

// RelationshipTypes lists the valid relationship type labels.
var RelationshipTypes = []string{
	RelAppearedOn,
	RelMentionedIn,
	RelDiscussedIn,
	RelRecommendedBy,
	RelReferencedIn,
	RelDiscusses,
	RelBelongsTo,
	RelReferences,
}

// Entity is a typed node in the relationship store: a person, book, episode,
// podcast and so on. Props holds type-specific attributes such as "author",
// "video_id" or "publish_date".
type Entity struct {
	Id         ID
	Type       string
	Name       string
	Props      map[string]string
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Tuple returns a string representation of the entity as "(Type,Name)".
// This is used for generating deterministic IDs.
func (e *Entity) Tuple() string {
	return "(" + e.Type + "," + e.Name + ")"
}

// Relationship is a typed directed edge between two entities. Props holds
// relationship attributes such as "timestamp", "context" or "sentiment".
type Relationship struct {
	Id         ID
	Type       string
	FromId     ID
	ToId       ID
	Props      map[string]string
	InsertedAt time.Time
}

// Tuple returns a string representation of the relationship as
// "(Type,FromId,ToId,key=value,...)" with props in sorted key order.
// This is used for generating deterministic IDs, so two mentions of the same
// entity in the same episode at different timestamps stay distinct.
func (r *Relationship) Tuple() string {
	keys := make([]string, 0, len(r.Props))
	for k := range r.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "(%s,%d,%d", r.Type, r.FromId, r.ToId)
	for _, k := range keys {
		sb.WriteString("," + k + "=" + r.Props[k])
	}
	sb.WriteString(")")
	return sb.String()
}

// Passage is an embedded transcript chunk stored in the semantic index.
// StartTime and EndTime are offsets in seconds from the start of the episode.
// PublishDate is the episode publish date in "YYYY-MM-DD" form.
type Passage struct {
	Id          ID
	VideoID     string
	Podcast     string
	Episode     string
	Speaker     string
	Text        string
	StartTime   float64
	EndTime     float64
	PublishDate string
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// PassageMatch is a passage returned from vector similarity search together
// with its similarity score (1 - cosine distance).
type PassageMatch struct {
	Passage    *Passage
	Similarity float32
}

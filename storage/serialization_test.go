package storage

import (
	"testing"
	"time"

	"github.com/podgraph/podgraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}

	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalEntity(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	entity := &core.Entity{
		Id:   core.ID(7),
		Type: core.EntityPerson,
		Name: "Naval Ravikant",
		Props: map[string]string{
			"twitter": "@naval",
		},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	data := MarshalEntity(entity)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalEntity(data)
	require.NoError(t, err)
	assert.Equal(t, entity.Id, decoded.Id)
	assert.Equal(t, entity.Type, decoded.Type)
	assert.Equal(t, entity.Name, decoded.Name)
	assert.Equal(t, entity.Props, decoded.Props)
	assert.True(t, entity.InsertedAt.Equal(decoded.InsertedAt))

	_, err = UnmarshalEntity([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}

func TestMarshalUnmarshalRelationship(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	rel := &core.Relationship{
		Id:     core.ID(11),
		Type:   core.RelMentionedIn,
		FromId: core.ID(1),
		ToId:   core.ID(2),
		Props: map[string]string{
			"sentiment": "positive",
			"timestamp": "300",
		},
		InsertedAt: now,
	}

	data := MarshalRelationship(rel)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalRelationship(data)
	require.NoError(t, err)
	assert.Equal(t, rel.Id, decoded.Id)
	assert.Equal(t, rel.Type, decoded.Type)
	assert.Equal(t, rel.FromId, decoded.FromId)
	assert.Equal(t, rel.ToId, decoded.ToId)
	assert.Equal(t, rel.Props, decoded.Props)
}

func TestMarshalUnmarshalPassage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	passage := &core.Passage{
		Id:          core.ID(21),
		VideoID:     "vid100",
		Podcast:     "The Tim Ferriss Show",
		Episode:     "Episode 100",
		Speaker:     "Naval Ravikant",
		Text:        "Leverage comes from capital, code and media. 世界 🌍",
		StartTime:   120.5,
		EndTime:     150.25,
		PublishDate: "2024-03-01",
		Vector:      []float32{0.1, 0.2, 0.3, 0.4},
		InsertedAt:  now,
		UpdatedAt:   now,
	}

	data := MarshalPassage(passage)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalPassage(data)
	require.NoError(t, err)
	assert.Equal(t, passage.Id, decoded.Id)
	assert.Equal(t, passage.VideoID, decoded.VideoID)
	assert.Equal(t, passage.Speaker, decoded.Speaker)
	assert.Equal(t, passage.Text, decoded.Text)
	assert.Equal(t, passage.StartTime, decoded.StartTime)
	assert.Equal(t, passage.EndTime, decoded.EndTime)
	assert.Equal(t, passage.PublishDate, decoded.PublishDate)
	assert.Equal(t, passage.Vector, decoded.Vector)
	assert.True(t, passage.UpdatedAt.Equal(decoded.UpdatedAt))

	_, err = UnmarshalPassage([]byte{1, 2, 3})
	assert.Error(t, err)
}

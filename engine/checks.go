package engine

import "context"

// VerifyEntityExists reports whether a named entity exists in the
// relationship store. typeHint may be empty.
func (e *Engine) VerifyEntityExists(ctx context.Context, name, typeHint string) (bool, error) {
	exists, _, err := e.graph.EntityExists(ctx, name, typeHint)
	return exists, err
}

// VerifySpeakerInEpisode reports whether a speaker appeared on the episode
// with the given video id.
func (e *Engine) VerifySpeakerInEpisode(ctx context.Context, speaker, videoID string) (bool, error) {
	records, err := e.graph.ExecuteStatement(ctx,
		"MATCH (p:Person)-[:APPEARED_ON]->(e:Episode) "+
			"WHERE toLower(p.name) CONTAINS toLower($speaker) AND e.video_id = $video_id "+
			"RETURN p.name",
		map[string]any{"speaker": speaker, "video_id": videoID})
	if err != nil {
		return false, err
	}
	return len(records) > 0, nil
}

package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/podgraph/podgraph/core"
)

// Key prefixes for different data types
const (
	entityPrefix       = "entrec"  // entrec:<id> -> Entity
	entityNamePrefix   = "entname" // entname:<lower(name)>:<id> -> ID
	entityTypePrefix   = "enttype" // enttype:<type>:<id> -> ID
	relationshipPrefix = "relrec"  // relrec:<id> -> Relationship
	relFromPrefix      = "relfrom" // relfrom:<type>:<fromID>:<relID> -> ID
	relToPrefix        = "relto"   // relto:<type>:<toID>:<relID> -> ID
	passagePrefix      = "pasrec"  // pasrec:<id> -> Passage
	passageVideoPrefix = "pasvid"  // pasvid:<videoID>:<id> -> ID
)

// makeEntityKey generates a key for an entity by ID.
func makeEntityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entityPrefix, id))
}

// makeEntityNameKey generates a composite key for the name index.
// Format: prefix:lower(name):id
// The name is lowercased so lookups are case-insensitive.
func makeEntityNameKey(name string, id core.ID) []byte {
	prefix := entityNamePrefix + ":" + strings.ToLower(name) + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEntityNameKey generates a partial key for exact name lookups.
func makePartialEntityNameKey(name string) []byte {
	return []byte(entityNamePrefix + ":" + strings.ToLower(name) + ":")
}

// makeEntityTypeKey generates a composite key for the type index.
// Format: prefix:type:id
func makeEntityTypeKey(entityType string, id core.ID) []byte {
	prefix := entityTypePrefix + ":" + entityType + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialEntityTypeKey generates a partial key for scans over one type.
func makePartialEntityTypeKey(entityType string) []byte {
	return []byte(entityTypePrefix + ":" + entityType + ":")
}

// makeRelationshipKey generates a key for a relationship by ID.
func makeRelationshipKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", relationshipPrefix, id))
}

// makeRelFromKey generates a composite key for the outgoing-edge index.
// Format: prefix:type:fromID:relID
func makeRelFromKey(relType string, fromID, relID core.ID) []byte {
	prefix := relFromPrefix + ":" + relType + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fromID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(relID))
	return buf
}

// makePartialRelFromKey generates a partial key for scanning the outgoing
// edges of one entity.
func makePartialRelFromKey(relType string, fromID core.ID) []byte {
	prefix := relFromPrefix + ":" + relType + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(fromID))
	return buf
}

// makeRelToKey generates a composite key for the incoming-edge index.
// Format: prefix:type:toID:relID
func makeRelToKey(relType string, toID, relID core.ID) []byte {
	prefix := relToPrefix + ":" + relType + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(toID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(relID))
	return buf
}

// makePartialRelToKey generates a partial key for scanning the incoming
// edges of one entity.
func makePartialRelToKey(relType string, toID core.ID) []byte {
	prefix := relToPrefix + ":" + relType + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(toID))
	return buf
}

// makePassageKey generates a key for a passage by ID.
func makePassageKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", passagePrefix, id))
}

// makePassageVideoKey generates a composite key for the video index.
// Format: prefix:videoID:id
func makePassageVideoKey(videoID string, id core.ID) []byte {
	prefix := passageVideoPrefix + ":" + videoID + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialPassageVideoKey generates a partial key for scanning the
// passages of one video.
func makePartialPassageVideoKey(videoID string) []byte {
	return []byte(passageVideoPrefix + ":" + videoID + ":")
}

// nameFromIndexKey decodes the lowercased name embedded in a name-index key.
// Key layout: entname:<lower(name)>:<8-byte id>
func nameFromIndexKey(key []byte) string {
	return string(key[len(entityNamePrefix)+1 : len(key)-9])
}

// idFromIndexKey decodes the 8-byte ID suffix of a composite index key.
func idFromIndexKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

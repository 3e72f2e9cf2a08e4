package engine

// schemaDescription grounds statement generation. It names every node and
// relationship type the store holds, with the properties statements may
// reference.
const schemaDescription = `Node types:
- Person (name)
- Book (name, author)
- Movie (name)
- Music (name, artist)
- Company (name)
- Product (name)
- Location (name)
- Topic (name)
- Episode (name, video_id, publish_date)
- Podcast (name, channel)

Relationship types (all directed):
- (Person)-[:APPEARED_ON]->(Episode)
- (Person|Book|Movie|Music|Company|Product|Location)-[:MENTIONED_IN {timestamp, context, sentiment}]->(Episode)
- (Topic)-[:DISCUSSED_IN {timestamp}]->(Episode)
- (Book|Movie|Music|Product)-[:RECOMMENDED_BY]->(Person)
- (Book|Movie|Music)-[:REFERENCED_IN {timestamp, quote}]->(Episode)
- (Episode)-[:DISCUSSES {timestamp}]->(Topic)
- (Episode)-[:BELONGS_TO]->(Podcast)
- (Episode)-[:REFERENCES {context}]->(Episode)`

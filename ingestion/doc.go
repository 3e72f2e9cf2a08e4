// Package ingestion turns podcast transcripts into searchable passages and
// graph records.
//
// The Pipeline type manages the ingestion workflow for a transcript:
//   - Chunking timed segments into word-budgeted, overlapping passages
//   - Embedding passages into the semantic index
//   - Extracting guests, typed entity mentions and topics per passage
//   - Populating the relationship store with the extraction results
//
// Per-passage extraction runs concurrently on a worker pool. Whole
// transcript runs are bounded by a counting admission gate so that bulk
// ingestion cannot starve the query path.
package ingestion

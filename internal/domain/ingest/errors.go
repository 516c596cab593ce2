package ingest

import crerr "github.com/cockroachdb/errors"

var (
	// ErrRowRejected marks a raw row that never became a record.
	ErrRowRejected = crerr.New("row rejected")
	// ErrRecordPersist marks a single record the store refused.
	ErrRecordPersist = crerr.New("record persist failure")
	// ErrChunkCommit marks a chunk transaction that failed to commit.
	ErrChunkCommit = crerr.New("chunk commit failure")
	// ErrFetch marks a provider batch that failed to materialize.
	ErrFetch = crerr.New("fetch failure")
)

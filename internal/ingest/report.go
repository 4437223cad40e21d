package ingest

import (
	"fmt"

	"github.com/google/uuid"
)

// Report is the outcome of one ingestion run.
type Report struct {
	RunID     uuid.UUID `json:"run_id"`
	Inserted  int       `json:"inserted"`
	Fallbacks int       `json:"fallbacks"`
	Skipped   []Skip    `json:"skipped"`
}

// SkippedAt counts skips recorded at the given stage.
func (r Report) SkippedAt(stage string) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Stage == stage {
			n++
		}
	}
	return n
}

func (r Report) Summary() string {
	return fmt.Sprintf("inserted %d, skipped %d (validate %d, insert %d), chunk fallbacks %d",
		r.Inserted, len(r.Skipped), r.SkippedAt(StageValidate), r.SkippedAt(StageInsert), r.Fallbacks)
}

// ChunkInsertError reports a chunk the store refused as a whole.
type ChunkInsertError struct {
	Chunk int
	First int
	Size  int
	Err   error
}

func (e *ChunkInsertError) Error() string {
	return fmt.Sprintf("chunk %d (features %d..%d): insert failed: %v",
		e.Chunk, e.First, e.First+e.Size-1, e.Err)
}

func (e *ChunkInsertError) Unwrap() error { return e.Err }

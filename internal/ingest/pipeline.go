// Package ingest persists feature collections in chunked transactions.
//
// Each feature is validated and transformed on its own; rejected features
// are reported and the rest of the chunk goes on. A chunk the store refuses
// is retried one record at a time so a single bad row cannot sink its
// neighbours. Only losing the store aborts a run.
package ingest

import (
	"github.com/EmpoweredVote/roadgeo/internal/feature"
)

// Stages at which a record can be skipped.
const (
	StageValidate = "validate"
	StageInsert   = "insert"
)

// Transform converts one raw feature into a storable record, or explains why
// it cannot.
type Transform[T any] func(feature.Raw) (T, error)

// Accepted is a record that passed validation, with its position in the
// source collection.
type Accepted[T any] struct {
	Index  int
	Record T
}

// Skip attributes a record that was not persisted to its source position.
type Skip struct {
	Index  int    `json:"index"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Partition runs transform over every feature. A failing feature never
// affects its siblings.
func Partition[T any](raws []feature.Raw, transform Transform[T]) ([]Accepted[T], []Skip) {
	accepted := make([]Accepted[T], 0, len(raws))
	var skipped []Skip
	for _, raw := range raws {
		rec, err := transform(raw)
		if err != nil {
			skipped = append(skipped, Skip{
				Index:  raw.Index,
				Stage:  StageValidate,
				Reason: err.Error(),
				Err:    err,
			})
			continue
		}
		accepted = append(accepted, Accepted[T]{Index: raw.Index, Record: rec})
	}
	return accepted, skipped
}

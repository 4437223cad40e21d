package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"github.com/EmpoweredVote/roadgeo/internal/feature"
	"github.com/EmpoweredVote/roadgeo/internal/logging"
	"github.com/EmpoweredVote/roadgeo/internal/metrics"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultChunkSize = 100

type Ingestor[T any] struct {
	sink      Sink[T]
	transform Transform[T]
	chunkSize int
	table     string
	log       *logrus.Entry
}

type Option func(*options)

type options struct {
	chunkSize int
	table     string
	log       *logrus.Entry
}

// WithChunkSize sets how many features share one transaction. Values below
// one are ignored.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.log = l }
}

// WithTable names the destination in logs and metrics.
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

func New[T any](sink Sink[T], transform Transform[T], opts ...Option) *Ingestor[T] {
	o := options{chunkSize: DefaultChunkSize, table: "features"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.For("ingest")
	}
	return &Ingestor[T]{
		sink:      sink,
		transform: transform,
		chunkSize: o.chunkSize,
		table:     o.table,
		log:       o.log.WithField("table", o.table),
	}
}

// Run ingests raws chunk by chunk. The report is returned even when the run
// aborts; the error is non-nil only for connectivity failures or a
// cancelled context.
func (in *Ingestor[T]) Run(ctx context.Context, raws []feature.Raw) (Report, error) {
	rep := Report{RunID: uuid.New()}
	log := in.log.WithField("run_id", rep.RunID)
	log.WithField("features", len(raws)).Info("ingestion started")

	for start, chunk := 0, 0; start < len(raws); start, chunk = start+in.chunkSize, chunk+1 {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		end := min(start+in.chunkSize, len(raws))

		accepted, skipped := Partition(raws[start:end], in.transform)
		for _, s := range skipped {
			in.skip(log, &rep, s)
		}
		if len(accepted) == 0 {
			continue
		}
		if err := in.insertChunk(ctx, log.WithField("chunk", chunk), chunk, accepted, &rep); err != nil {
			log.WithError(err).Error("ingestion aborted")
			return rep, err
		}
	}

	log.Info(rep.Summary())
	return rep, nil
}

func (in *Ingestor[T]) insertChunk(ctx context.Context, log *logrus.Entry, chunk int, accepted []Accepted[T], rep *Report) error {
	records := make([]T, len(accepted))
	for i, a := range accepted {
		records[i] = a.Record
	}

	began := time.Now()
	err := in.sink.InsertChunk(ctx, records)
	metrics.IngestChunkDurationMs.WithLabelValues(in.table).Observe(float64(time.Since(began).Milliseconds()))
	if err == nil {
		rep.Inserted += len(records)
		metrics.IngestInsertedTotal.WithLabelValues(in.table).Add(float64(len(records)))
		log.WithField("records", len(records)).Debug("chunk committed")
		return nil
	}
	if db.IsConnectivity(err) {
		return fmt.Errorf("insert chunk %d: %w", chunk, db.Classify(err))
	}

	log.WithError(&ChunkInsertError{Chunk: chunk, First: accepted[0].Index, Size: len(accepted), Err: err}).
		Error("chunk rolled back, inserting records one by one")
	rep.Fallbacks++
	metrics.IngestFallbacksTotal.WithLabelValues(in.table).Inc()

	for _, a := range accepted {
		if err := in.sink.InsertOne(ctx, a.Record); err != nil {
			if db.IsConnectivity(err) {
				return fmt.Errorf("insert feature %d: %w", a.Index, db.Classify(err))
			}
			in.skip(log, rep, Skip{Index: a.Index, Stage: StageInsert, Reason: err.Error(), Err: err})
			continue
		}
		rep.Inserted++
		metrics.IngestInsertedTotal.WithLabelValues(in.table).Inc()
		log.WithField("index", a.Index).Debug("record inserted on fallback")
	}
	return nil
}

func (in *Ingestor[T]) skip(log *logrus.Entry, rep *Report, s Skip) {
	rep.Skipped = append(rep.Skipped, s)
	metrics.IngestSkippedTotal.WithLabelValues(in.table, s.Stage).Inc()
	log.WithFields(logrus.Fields{
		"index":  s.Index,
		"stage":  s.Stage,
		"reason": s.Reason,
	}).Warn("feature skipped")
}

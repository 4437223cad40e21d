package ingest

import (
	"context"

	"github.com/EmpoweredVote/roadgeo/internal/db"
	"gorm.io/gorm"
)

// Sink is where accepted records go. InsertChunk must be all-or-nothing;
// InsertOne runs in a transaction of its own.
type Sink[T any] interface {
	InsertChunk(ctx context.Context, records []T) error
	InsertOne(ctx context.Context, record T) error
}

// GormSink writes records of a gorm model type.
type GormSink[T any] struct {
	db *gorm.DB
}

func NewGormSink[T any](d *gorm.DB) *GormSink[T] {
	return &GormSink[T]{db: d}
}

func (s *GormSink[T]) InsertChunk(ctx context.Context, records []T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&records).Error
	})
	return db.Classify(err)
}

func (s *GormSink[T]) InsertOne(ctx context.Context, record T) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	return db.Classify(err)
}

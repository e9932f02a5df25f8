package repository

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrStaleVersion = errors.New("record was modified concurrently")
)

type txKey struct{}

// Transactor runs a function inside a single database transaction. Every
// repository in this package picks the transaction up from the context, so
// writes to several tables commit or roll back together.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// LockDay takes a transaction-scoped advisory lock on a calendar day so that
// capacity checks for the same day are serialized across processes. SQLite
// already serializes writers, so the call is a no-op there.
func (t *Transactor) LockDay(ctx context.Context, day time.Time) error {
	db := conn(ctx, t.db)
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(?)", dayLockKey(day)).Error
}

func dayLockKey(day time.Time) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("booking-day:" + day.Format("2006-01-02")))
	return int64(h.Sum64())
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

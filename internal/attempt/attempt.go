// Package attempt provides the persisted attempt record and its stores.
package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/julienduc-econ/finquiz/internal/question"
)

//go:generate mockgen -source=attempt.go -destination=../mocks/attempt/mock_store.go -package=mock_attempt Store

// ErrStoreUnavailable wraps transport or authentication failures of a
// store. Callers treat it as non-fatal: the session and score remain valid
// locally and the append may be retried manually.
var ErrStoreUnavailable = errors.New("attempt store unavailable")

// Record is one row per completed challenge session.
type Record struct {
	ID             int64             `db:"id" yaml:"id,omitempty"`
	Identity       string            `db:"identity" yaml:"identity"`
	Score          int               `db:"score" yaml:"score"`
	Category       question.Category `db:"category" yaml:"category"`
	ElapsedMinutes float64           `db:"elapsed_minutes" yaml:"elapsed_minutes"`
	CreatedAt      time.Time         `db:"created_at" yaml:"created_at"`
}

// Store persists completed attempts. Append must be safe to retry: a
// failed call leaves no partial row behind.
type Store interface {
	Append(ctx context.Context, record Record) error
	// Query returns attempts, oldest first. An empty category or the
	// CategoryAll sentinel means no filter.
	Query(ctx context.Context, category question.Category) ([]Record, error)
}

package subm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrQuotaReached is returned by InsertWithinQuota when the author
	// already holds quota submissions in the interval.
	ErrQuotaReached = errors.New("submission quota reached")

	// ErrSlotConflict means a concurrent insert claimed the same slot.
	ErrSlotConflict = errors.New("submission slot already taken")
)

// QuotaReachedError wraps ErrQuotaReached with the count observed by the
// refused insert.
type QuotaReachedError struct {
	Count int
}

func (e *QuotaReachedError) Error() string {
	return fmt.Sprintf("%s: %d held", ErrQuotaReached, e.Count)
}

func (e *QuotaReachedError) Unwrap() error {
	return ErrQuotaReached
}

type SubmRepo interface {
	CountSubms(ctx context.Context, authorUUID uuid.UUID, competitionID string, intervalID int) (int, error)

	// InsertWithinQuota counts the author's submissions in s's interval and
	// inserts s only if the count is below quota. Count and insert happen
	// atomically with respect to other inserts for the same author,
	// competition and interval.
	InsertWithinQuota(ctx context.Context, s Subm, quota int) error

	// ListByAuthor returns newest first.
	ListByAuthor(ctx context.Context, authorUUID uuid.UUID, competitionID string) ([]Subm, error)
}

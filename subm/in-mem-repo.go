package subm

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type inMemSubmRepo struct {
	mu    sync.Mutex
	subms []Subm
}

func NewInMemSubmRepo() *inMemSubmRepo {
	return &inMemSubmRepo{}
}

func (r *inMemSubmRepo) count(authorUUID uuid.UUID, competitionID string, intervalID int) int {
	n := 0
	for _, s := range r.subms {
		if s.AuthorUUID == authorUUID && s.CompetitionID == competitionID && s.IntervalID == intervalID {
			n++
		}
	}
	return n
}

func (r *inMemSubmRepo) CountSubms(ctx context.Context, authorUUID uuid.UUID, competitionID string, intervalID int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count(authorUUID, competitionID, intervalID), nil
}

func (r *inMemSubmRepo) InsertWithinQuota(ctx context.Context, s Subm, quota int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := r.count(s.AuthorUUID, s.CompetitionID, s.IntervalID); n >= quota {
		return &QuotaReachedError{Count: n}
	}
	r.subms = append(r.subms, s)
	return nil
}

func (r *inMemSubmRepo) ListByAuthor(ctx context.Context, authorUUID uuid.UUID, competitionID string) ([]Subm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Subm
	for _, s := range r.subms {
		if s.AuthorUUID == authorUUID && s.CompetitionID == competitionID {
			res = append(res, s)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/ranking"
)

type RankingRepository struct {
	mu      sync.RWMutex
	entries map[string]map[string]ranking.Entry
	// order preserves first-scored order per group so ties list stably.
	order map[string][]string
}

func NewRankingRepository() *RankingRepository {
	return &RankingRepository{
		entries: make(map[string]map[string]ranking.Entry),
		order:   make(map[string][]string),
	}
}

func (r *RankingRepository) ApplyScore(_ context.Context, groupID, userID string, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.entries[groupID]
	if !ok {
		byUser = make(map[string]ranking.Entry)
		r.entries[groupID] = byUser
	}

	now := time.Now().UTC()
	e, exists := byUser[userID]
	if !exists {
		e = ranking.Entry{GroupID: groupID, UserID: userID}
		r.order[groupID] = append(r.order[groupID], userID)
	}

	e.TotalPoints += points
	e.TotalPredictions++
	if points > 0 {
		e.CorrectPredictions++
	}
	e.UpdatedAt = now
	byUser[userID] = e
	return nil
}

func (r *RankingRepository) ListByGroup(_ context.Context, groupID string) ([]ranking.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := r.entries[groupID]
	out := make([]ranking.Entry, 0, len(byUser))
	for _, userID := range r.order[groupID] {
		if e, ok := byUser[userID]; ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	return out, nil
}

func (r *RankingRepository) UpdateRanks(_ context.Context, groupID string, entries []ranking.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.entries[groupID]
	if !ok {
		return fmt.Errorf("no ranking entries for group %s", groupID)
	}

	now := time.Now().UTC()
	for _, updated := range entries {
		e, ok := byUser[updated.UserID]
		if !ok {
			return fmt.Errorf("ranking entry for user %s missing in group %s", updated.UserID, groupID)
		}
		e.Rank = updated.Rank
		e.PreviousRank = updated.PreviousRank
		e.UpdatedAt = now
		byUser[updated.UserID] = e
	}
	return nil
}

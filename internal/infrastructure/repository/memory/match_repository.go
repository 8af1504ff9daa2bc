package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/match"
)

type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	byID := make(map[string]match.Match, len(matches))
	for _, item := range matches {
		byID[item.ID] = item
	}

	return &MatchRepository{matches: byID}
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	return m, ok, nil
}

func (r *MatchRepository) ListByCompetition(_ context.Context, competitionID string) ([]match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.matches {
		if m.CompetitionID == competitionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].KickoffAt.Equal(out[j].KickoffAt) {
			return out[i].KickoffAt.Before(out[j].KickoffAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MatchRepository) Create(_ context.Context, m match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[m.ID]; exists {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	r.matches[m.ID] = m
	return nil
}

func (r *MatchRepository) UpdateResult(_ context.Context, matchID string, homeScore, awayScore int, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
	}

	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	r.matches[matchID] = m
	return nil
}

func (r *MatchRepository) UpdateStatus(_ context.Context, matchID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
	}

	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	r.matches[matchID] = m
	return nil
}

func (r *MatchRepository) ClaimScoring(_ context.Context, matchID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return false, fmt.Errorf("match %s not found", matchID)
	}
	if m.ScoredAt != nil {
		return false, nil
	}

	claimedAt := at
	m.ScoredAt = &claimedAt
	r.matches[matchID] = m
	return true, nil
}

func (r *MatchRepository) ReleaseScoring(_ context.Context, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.matches[matchID]
	if !ok {
		return fmt.Errorf("match %s not found", matchID)
	}

	m.ScoredAt = nil
	r.matches[matchID] = m
	return nil
}

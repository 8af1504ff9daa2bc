package memory

import (
	"context"
	"sync"

	"github.com/kickpool/prediction-league/internal/domain/competition"
)

type CompetitionRepository struct {
	mu           sync.RWMutex
	competitions []competition.Competition
	byID         map[string]competition.Competition
}

func NewCompetitionRepository(competitions []competition.Competition) *CompetitionRepository {
	byID := make(map[string]competition.Competition, len(competitions))
	for _, item := range competitions {
		byID[item.ID] = item
	}

	return &CompetitionRepository{
		competitions: competitions,
		byID:         byID,
	}
}

func (r *CompetitionRepository) List(_ context.Context) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0, len(r.competitions))
	out = append(out, r.competitions...)
	return out, nil
}

func (r *CompetitionRepository) GetByID(_ context.Context, competitionID string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[competitionID]
	return item, ok, nil
}

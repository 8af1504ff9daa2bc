package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kickpool/prediction-league/internal/domain/prediction"
)

type PredictionRepository struct {
	mu          sync.RWMutex
	predictions map[string]prediction.Prediction
	idByTriple  map[string]string
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{
		predictions: make(map[string]prediction.Prediction),
		idByTriple:  make(map[string]string),
	}
}

func tripleKey(userID, matchID, groupID string) string {
	return userID + "|" + matchID + "|" + groupID
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := tripleKey(p.UserID, p.MatchID, p.GroupID)
	if existingID, ok := r.idByTriple[key]; ok && existingID != p.ID {
		return fmt.Errorf("prediction for %s conflicts with %s", key, existingID)
	}

	r.predictions[p.ID] = p
	r.idByTriple[key] = p.ID
	return nil
}

func (r *PredictionRepository) GetByUserMatchGroup(_ context.Context, userID, matchID, groupID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.idByTriple[tripleKey(userID, matchID, groupID)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	p, ok := r.predictions[id]
	return p, ok, nil
}

func (r *PredictionRepository) ListByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.predictions {
		if p.MatchID == matchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PredictionRepository) ListByGroupAndUser(_ context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.predictions {
		if p.GroupID == groupID && p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *PredictionRepository) SetPoints(_ context.Context, predictionID string, points int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.predictions[predictionID]
	if !ok {
		return false, fmt.Errorf("prediction %s not found", predictionID)
	}
	if p.PointsEarned != nil {
		return false, nil
	}

	earned := points
	p.PointsEarned = &earned
	r.predictions[predictionID] = p
	return true, nil
}

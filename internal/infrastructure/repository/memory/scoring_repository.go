package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kickpool/prediction-league/internal/domain/scoring"
)

type ScoringRepository struct {
	mu    sync.RWMutex
	rules map[string]scoring.Rule
}

func NewScoringRepository() *ScoringRepository {
	return &ScoringRepository{rules: make(map[string]scoring.Rule)}
}

func (r *ScoringRepository) CreateRule(_ context.Context, rule scoring.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("scoring rule %s already exists", rule.ID)
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *ScoringRepository) UpdateRule(_ context.Context, rule scoring.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rules[rule.ID]
	if !ok || existing.GroupID != rule.GroupID {
		return fmt.Errorf("scoring rule %s not found in group %s", rule.ID, rule.GroupID)
	}

	rule.CreatedAt = existing.CreatedAt
	r.rules[rule.ID] = rule
	return nil
}

func (r *ScoringRepository) DeleteRule(_ context.Context, groupID, ruleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rules[ruleID]
	if !ok || existing.GroupID != groupID {
		return fmt.Errorf("scoring rule %s not found in group %s", ruleID, groupID)
	}

	delete(r.rules, ruleID)
	return nil
}

func (r *ScoringRepository) ListRulesByGroup(_ context.Context, groupID string) ([]scoring.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listForGroup(groupID), nil
}

func (r *ScoringRepository) ListRulesByGroups(_ context.Context, groupIDs []string) (map[string][]scoring.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]scoring.Rule, len(groupIDs))
	for _, groupID := range groupIDs {
		out[groupID] = r.listForGroup(groupID)
	}
	return out, nil
}

func (r *ScoringRepository) listForGroup(groupID string) []scoring.Rule {
	out := make([]scoring.Rule, 0)
	for _, rule := range r.rules {
		if rule.GroupID == groupID {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

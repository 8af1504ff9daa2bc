package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kickpool/prediction-league/internal/domain/competition"
)

// CompetitionService is a read-only view over the competition catalog.
type CompetitionService struct {
	competitionRepo competition.Repository
}

func NewCompetitionService(competitionRepo competition.Repository) *CompetitionService {
	return &CompetitionService{competitionRepo: competitionRepo}
}

func (s *CompetitionService) List(ctx context.Context) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.List")
	defer span.End()

	items, err := s.competitionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return items, nil
}

func (s *CompetitionService) GetByID(ctx context.Context, competitionID string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.GetByID")
	defer span.End()

	if strings.TrimSpace(competitionID) == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	item, exists, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}
	return item, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/domain/prediction"
	"github.com/kickpool/prediction-league/internal/platform/id"
)

type SubmitPredictionInput struct {
	UserID    string
	MatchID   string
	GroupID   string
	HomeScore int
	AwayScore int
}

// PredictionService owns prediction submission. Predictions are mutable only
// before kickoff and unique per (user, match, group).
type PredictionService struct {
	matchRepo      match.Repository
	groupRepo      group.Repository
	predictionRepo prediction.Repository
	idGenerator    id.Generator
	now            func() time.Time
}

func NewPredictionService(
	matchRepo match.Repository,
	groupRepo group.Repository,
	predictionRepo prediction.Repository,
	idGenerator id.Generator,
) *PredictionService {
	return &PredictionService{
		matchRepo:      matchRepo,
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		idGenerator:    idGenerator,
		now:            time.Now,
	}
}

func (s *PredictionService) Submit(ctx context.Context, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit")
	defer span.End()

	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.MatchID) == "" || strings.TrimSpace(input.GroupID) == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user, match and group ids are required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return prediction.Prediction{}, fmt.Errorf("%w: predicted scores cannot be negative", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get match for prediction: %w", err)
	}
	if !exists {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	now := s.now().UTC()
	if m.HasStarted(now) {
		return prediction.Prediction{}, fmt.Errorf("%w: match=%s already started", ErrPreconditionFailed, input.MatchID)
	}

	isMember, err := s.groupRepo.IsMember(ctx, input.GroupID, input.UserID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("check group membership: %w", err)
	}
	if !isMember {
		return prediction.Prediction{}, fmt.Errorf("%w: user=%s is not a member of group=%s", ErrUnauthorized, input.UserID, input.GroupID)
	}

	existing, found, err := s.predictionRepo.GetByUserMatchGroup(ctx, input.UserID, input.MatchID, input.GroupID)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("get existing prediction: %w", err)
	}

	item := prediction.Prediction{
		UserID:    input.UserID,
		MatchID:   input.MatchID,
		GroupID:   input.GroupID,
		HomeScore: input.HomeScore,
		AwayScore: input.AwayScore,
		UpdatedAt: now,
	}
	if found {
		if existing.IsScored() {
			return prediction.Prediction{}, fmt.Errorf("%w: prediction=%s is already scored", ErrConflict, existing.ID)
		}
		item.ID = existing.ID
		item.CreatedAt = existing.CreatedAt
	} else {
		newID, err := s.idGenerator.NewID()
		if err != nil {
			return prediction.Prediction{}, fmt.Errorf("generate prediction id: %w", err)
		}
		item.ID = newID
		item.CreatedAt = now
	}

	if err := s.predictionRepo.Upsert(ctx, item); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	return item, nil
}

func (s *PredictionService) ListMineByGroup(ctx context.Context, userID, groupID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMineByGroup")
	defer span.End()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(groupID) == "" {
		return nil, fmt.Errorf("%w: user and group ids are required", ErrInvalidInput)
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check group membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("%w: user=%s is not a member of group=%s", ErrUnauthorized, userID, groupID)
	}

	items, err := s.predictionRepo.ListByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return items, nil
}

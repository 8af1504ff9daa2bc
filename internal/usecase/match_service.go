package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/platform/id"
)

type CreateMatchInput struct {
	CompetitionID string
	HomeTeam      string
	AwayTeam      string
	KickoffAt     time.Time
}

type SetMatchResultInput struct {
	MatchID   string
	HomeScore int
	AwayScore int
	Status    string
}

// MatchService owns the fixture catalog and result entry. Scoring propagation
// is ScoringService's job; SetResult only records the outcome.
type MatchService struct {
	matchRepo       match.Repository
	competitionRepo competition.Repository
	idGenerator     id.Generator
	now             func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	competitionRepo competition.Repository,
	idGenerator id.Generator,
) *MatchService {
	return &MatchService{
		matchRepo:       matchRepo,
		competitionRepo: competitionRepo,
		idGenerator:     idGenerator,
		now:             time.Now,
	}
}

func (s *MatchService) Create(ctx context.Context, input CreateMatchInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Create")
	defer span.End()

	homeTeam := strings.TrimSpace(input.HomeTeam)
	awayTeam := strings.TrimSpace(input.AwayTeam)
	if homeTeam == "" || awayTeam == "" {
		return match.Match{}, fmt.Errorf("%w: home and away teams are required", ErrInvalidInput)
	}
	if strings.EqualFold(homeTeam, awayTeam) {
		return match.Match{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidInput)
	}
	if input.KickoffAt.IsZero() {
		return match.Match{}, fmt.Errorf("%w: kickoff time is required", ErrInvalidInput)
	}

	_, exists, err := s.competitionRepo.GetByID(ctx, input.CompetitionID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: competition=%s", ErrNotFound, input.CompetitionID)
	}

	matchID, err := s.idGenerator.NewID()
	if err != nil {
		return match.Match{}, fmt.Errorf("generate match id: %w", err)
	}

	now := s.now().UTC()
	m := match.Match{
		ID:            matchID,
		CompetitionID: input.CompetitionID,
		HomeTeam:      homeTeam,
		AwayTeam:      awayTeam,
		KickoffAt:     input.KickoffAt.UTC(),
		Status:        match.StatusScheduled,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.matchRepo.Create(ctx, m); err != nil {
		return match.Match{}, fmt.Errorf("create match: %w", err)
	}
	return m, nil
}

func (s *MatchService) GetByID(ctx context.Context, matchID string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.GetByID")
	defer span.End()

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	return m, nil
}

func (s *MatchService) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListByCompetition")
	defer span.End()

	if strings.TrimSpace(competitionID) == "" {
		return nil, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	matches, err := s.matchRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

// SetResult records the final (or in-progress) score and moves the status
// machine forward. Scores must be present for FINISHED and LIVE.
func (s *MatchService) SetResult(ctx context.Context, input SetMatchResultInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SetResult")
	defer span.End()

	if strings.TrimSpace(input.MatchID) == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return match.Match{}, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}

	status := match.NormalizeStatus(input.Status)
	switch status {
	case match.StatusLive, match.StatusFinished:
	default:
		return match.Match{}, fmt.Errorf("%w: result status must be %s or %s", ErrInvalidInput, match.StatusLive, match.StatusFinished)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, input.MatchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match for result: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, input.MatchID)
	}

	if !match.CanTransition(m.Status, status) {
		return match.Match{}, fmt.Errorf("%w: match=%s cannot move %s -> %s", ErrPreconditionFailed, m.ID, match.NormalizeStatus(m.Status), status)
	}

	if err := s.matchRepo.UpdateResult(ctx, m.ID, input.HomeScore, input.AwayScore, status); err != nil {
		return match.Match{}, fmt.Errorf("update match result: %w", err)
	}

	homeScore := input.HomeScore
	awayScore := input.AwayScore
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.Status = status
	m.UpdatedAt = s.now().UTC()
	return m, nil
}

// SetStatus handles score-less transitions: going LIVE, POSTPONED or
// CANCELLED.
func (s *MatchService) SetStatus(ctx context.Context, matchID, status string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.SetStatus")
	defer span.End()

	status = match.NormalizeStatus(status)
	switch status {
	case match.StatusLive, match.StatusPostponed, match.StatusCancelled:
	default:
		return match.Match{}, fmt.Errorf("%w: status %s requires a result", ErrInvalidInput, status)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match for status change: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}

	if !match.CanTransition(m.Status, status) {
		return match.Match{}, fmt.Errorf("%w: match=%s cannot move %s -> %s", ErrPreconditionFailed, m.ID, match.NormalizeStatus(m.Status), status)
	}

	if err := s.matchRepo.UpdateStatus(ctx, m.ID, status); err != nil {
		return match.Match{}, fmt.Errorf("update match status: %w", err)
	}

	m.Status = status
	m.UpdatedAt = s.now().UTC()
	return m, nil
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/infrastructure/repository/memory"
	"github.com/kickpool/prediction-league/internal/platform/id"
)

func newPredictionService(t *testing.T, matches []match.Match) (*PredictionService, *memory.GroupRepository, *memory.PredictionRepository) {
	t.Helper()

	groupRepo := memory.NewGroupRepository([]group.Group{
		{ID: "g1", CompetitionID: "comp-1", OwnerUserID: "alice", Name: "g1", InviteCode: "inv-g1"},
	})
	if err := groupRepo.AddMember(context.Background(), group.Member{GroupID: "g1", UserID: "alice"}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	predictionRepo := memory.NewPredictionRepository()
	service := NewPredictionService(
		memory.NewMatchRepository(matches),
		groupRepo,
		predictionRepo,
		id.NewRandomGenerator(),
	)
	return service, groupRepo, predictionRepo
}

func scheduledMatch(matchID string, kickoff time.Time) match.Match {
	return match.Match{
		ID:            matchID,
		CompetitionID: "comp-1",
		HomeTeam:      "Home FC",
		AwayTeam:      "Away FC",
		KickoffAt:     kickoff,
		Status:        match.StatusScheduled,
	}
}

func TestPredictionService_Submit_CreatesAndUpdatesBeforeKickoff(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, _, _ := newPredictionService(t, []match.Match{scheduledMatch("m1", now.Add(2*time.Hour))})
	service.now = func() time.Time { return now }

	created, err := service.Submit(ctx, SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 2, AwayScore: 1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created prediction must have an id")
	}

	updated, err := service.Submit(ctx, SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 0, AwayScore: 0,
	})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("resubmit must keep the id: got=%s want=%s", updated.ID, created.ID)
	}
	if updated.HomeScore != 0 || updated.AwayScore != 0 {
		t.Fatalf("resubmit must replace the score line: got=%d-%d", updated.HomeScore, updated.AwayScore)
	}

	mine, err := service.ListMineByGroup(ctx, "alice", "g1")
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("resubmit must not create a second row: got=%d", len(mine))
	}
}

func TestPredictionService_Submit_RejectsAfterKickoff(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, _, _ := newPredictionService(t, []match.Match{scheduledMatch("m1", now.Add(-time.Minute))})
	service.now = func() time.Time { return now }

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 1, AwayScore: 0,
	})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestPredictionService_Submit_RejectsAtExactKickoff(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	m := scheduledMatch("m1", now)
	service, _, _ := newPredictionService(t, []match.Match{m})
	service.now = func() time.Time { return now }

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 1, AwayScore: 0,
	})
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("kickoff instant counts as started, got %v", err)
	}
}

func TestPredictionService_Submit_RejectsNonMember(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, _, _ := newPredictionService(t, []match.Match{scheduledMatch("m1", now.Add(time.Hour))})
	service.now = func() time.Time { return now }

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "mallory", MatchID: "m1", GroupID: "g1", HomeScore: 1, AwayScore: 0,
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPredictionService_Submit_RejectsNegativeScores(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, _, _ := newPredictionService(t, []match.Match{scheduledMatch("m1", now.Add(time.Hour))})
	service.now = func() time.Time { return now }

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: -1, AwayScore: 0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPredictionService_Submit_RejectsUpdateOfScoredPrediction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	service, _, predictionRepo := newPredictionService(t, []match.Match{scheduledMatch("m1", now.Add(time.Hour))})
	service.now = func() time.Time { return now }

	created, err := service.Submit(ctx, SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 2, AwayScore: 1,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := predictionRepo.SetPoints(ctx, created.ID, 5); err != nil {
		t.Fatalf("set points: %v", err)
	}

	_, err = service.Submit(ctx, SubmitPredictionInput{
		UserID: "alice", MatchID: "m1", GroupID: "g1", HomeScore: 0, AwayScore: 0,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPredictionService_Submit_MatchNotFound(t *testing.T) {
	service, _, _ := newPredictionService(t, nil)

	_, err := service.Submit(context.Background(), SubmitPredictionInput{
		UserID: "alice", MatchID: "missing", GroupID: "g1", HomeScore: 1, AwayScore: 0,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPredictionService_ListMineByGroup_RequiresMembership(t *testing.T) {
	service, _, _ := newPredictionService(t, nil)

	_, err := service.ListMineByGroup(context.Background(), "mallory", "g1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

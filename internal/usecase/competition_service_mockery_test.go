package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	competitionmock "github.com/kickpool/prediction-league/internal/mocks/domain/competition"
)

func TestCompetitionService_List_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	competitionRepo := competitionmock.NewRepository(t)
	service := NewCompetitionService(competitionRepo)

	expected := []competition.Competition{
		{ID: "eng-premier-league-2025", Name: "Premier League", Season: "2025/2026"},
		{ID: "idn-liga-1-2025", Name: "Liga 1 Indonesia", Season: "2025/2026"},
	}

	competitionRepo.
		On("List", mock.Anything).
		Return(expected, nil).
		Once()

	got, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list competitions: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("unexpected competition count: got=%d want=%d", len(got), len(expected))
	}
	if got[0].ID != expected[0].ID {
		t.Fatalf("unexpected competition id: got=%s want=%s", got[0].ID, expected[0].ID)
	}
}

func TestCompetitionService_GetByID_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	competitionRepo := competitionmock.NewRepository(t)
	service := NewCompetitionService(competitionRepo)

	repoErr := errors.New("connection reset")
	competitionRepo.
		On("GetByID", mock.Anything, "comp-1").
		Return(competition.Competition{}, false, repoErr).
		Once()

	_, err := service.GetByID(ctx, "comp-1")
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repository error, got %v", err)
	}
}

func TestCompetitionService_GetByID_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	competitionRepo := competitionmock.NewRepository(t)
	service := NewCompetitionService(competitionRepo)

	competitionRepo.
		On("GetByID", mock.Anything, "missing").
		Return(competition.Competition{}, false, nil).
		Once()

	_, err := service.GetByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

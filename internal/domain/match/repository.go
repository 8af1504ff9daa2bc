package match

import (
	"context"
	"time"
)

type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Match, error)
	Create(ctx context.Context, m Match) error
	UpdateResult(ctx context.Context, matchID string, homeScore, awayScore int, status string) error
	UpdateStatus(ctx context.Context, matchID, status string) error

	// ClaimScoring atomically marks the match as scored. It returns false when
	// another finalization already holds or completed the claim.
	ClaimScoring(ctx context.Context, matchID string, at time.Time) (bool, error)
	// ReleaseScoring clears the claim so a failed finalization can be retried.
	ReleaseScoring(ctx context.Context, matchID string) error
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kickpool/prediction-league/internal/domain/match"
	qb "github.com/kickpool/prediction-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("public_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListByCompetition(ctx context.Context, competitionID string) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("competition_public_id", competitionID)).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by competition query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches by competition: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) Create(ctx context.Context, m match.Match) error {
	const query = `
INSERT INTO matches (public_id, competition_public_id, home_team, away_team, kickoff_at, status)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.CompetitionID, m.HomeTeam, m.AwayTeam, m.KickoffAt, m.Status,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("match %s already exists: %w", m.ID, err)
		}
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *MatchRepository) UpdateResult(ctx context.Context, matchID string, homeScore, awayScore int, status string) error {
	const query = `
UPDATE matches
SET home_score = $2,
    away_score = $3,
    status = $4,
    updated_at = NOW()
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, matchID, homeScore, awayScore, status)
	if err != nil {
		return fmt.Errorf("update match result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match result rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	return nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, matchID, status string) error {
	const query = `
UPDATE matches
SET status = $2,
    updated_at = NOW()
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, matchID, status)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match status rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s not found", matchID)
	}
	return nil
}

// ClaimScoring sets scored_at only when it is still NULL. Zero rows affected
// means another finalization won the claim.
func (r *MatchRepository) ClaimScoring(ctx context.Context, matchID string, at time.Time) (bool, error) {
	const query = `
UPDATE matches
SET scored_at = $2,
    updated_at = NOW()
WHERE public_id = $1
  AND scored_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, matchID, at)
	if err != nil {
		return false, fmt.Errorf("claim match scoring: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim match scoring rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *MatchRepository) ReleaseScoring(ctx context.Context, matchID string) error {
	const query = `
UPDATE matches
SET scored_at = NULL,
    updated_at = NOW()
WHERE public_id = $1`

	if _, err := r.db.ExecContext(ctx, query, matchID); err != nil {
		return fmt.Errorf("release match scoring: %w", err)
	}
	return nil
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:            row.PublicID,
		CompetitionID: row.CompetitionID,
		HomeTeam:      row.HomeTeam,
		AwayTeam:      row.AwayTeam,
		KickoffAt:     row.KickoffAt,
		HomeScore:     row.HomeScore,
		AwayScore:     row.AwayScore,
		Status:        row.Status,
		ScoredAt:      row.ScoredAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

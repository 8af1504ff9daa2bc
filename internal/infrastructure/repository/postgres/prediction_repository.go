package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kickpool/prediction-league/internal/domain/prediction"
	qb "github.com/kickpool/prediction-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Upsert inserts the prediction or replaces the score line of the existing
// row for the same (user, match, group) triple. points_earned is never
// touched here; scoring owns it.
func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) error {
	const query = `
INSERT INTO predictions (public_id, user_id, match_public_id, group_public_id, home_score, away_score)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, match_public_id, group_public_id)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.MatchID, p.GroupID, p.HomeScore, p.AwayScore,
	); err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) GetByUserMatchGroup(ctx context.Context, userID, matchID, groupID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("match_public_id", matchID),
			qb.Eq("group_public_id", groupID),
		).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build select prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}

	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByMatch(ctx context.Context, matchID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(qb.Eq("match_public_id", matchID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by match query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by match: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

func (r *PredictionRepository) ListByGroupAndUser(ctx context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by group and user query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by group and user: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

// SetPoints persists earned points only for a still-unscored row. Zero rows
// affected means a prior run already scored it.
func (r *PredictionRepository) SetPoints(ctx context.Context, predictionID string, points int) (bool, error) {
	const query = `
UPDATE predictions
SET points_earned = $2,
    updated_at = NOW()
WHERE public_id = $1
  AND points_earned IS NULL`

	result, err := r.db.ExecContext(ctx, query, predictionID, points)
	if err != nil {
		return false, fmt.Errorf("set prediction points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set prediction points rows affected: %w", err)
	}
	return affected > 0, nil
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:           row.PublicID,
		UserID:       row.UserID,
		MatchID:      row.MatchID,
		GroupID:      row.GroupID,
		HomeScore:    row.HomeScore,
		AwayScore:    row.AwayScore,
		PointsEarned: row.PointsEarned,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

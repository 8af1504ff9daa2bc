package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kickpool/prediction-league/internal/domain/ranking"
	qb "github.com/kickpool/prediction-league/internal/platform/querybuilder"
)

type RankingRepository struct {
	db *sqlx.DB
}

func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// ApplyScore lazily creates the entry and applies the counters as additive
// upsert increments, so concurrent scorers of different matches cannot lose
// updates.
func (r *RankingRepository) ApplyScore(ctx context.Context, groupID, userID string, points int) error {
	correct := 0
	if points > 0 {
		correct = 1
	}

	const query = `
INSERT INTO group_rankings (group_public_id, user_id, total_points, total_predictions, correct_predictions)
VALUES ($1, $2, $3, 1, $4)
ON CONFLICT (group_public_id, user_id)
DO UPDATE SET
    total_points = group_rankings.total_points + EXCLUDED.total_points,
    total_predictions = group_rankings.total_predictions + 1,
    correct_predictions = group_rankings.correct_predictions + EXCLUDED.correct_predictions,
    updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, groupID, userID, points, correct); err != nil {
		return fmt.Errorf("apply score to ranking: %w", err)
	}
	return nil
}

func (r *RankingRepository) ListByGroup(ctx context.Context, groupID string) ([]ranking.Entry, error) {
	query, args, err := qb.Select("*").From("group_rankings").
		Where(qb.Eq("group_public_id", groupID)).
		OrderBy("total_points DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rankings query: %w", err)
	}

	var rows []rankingEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rankings: %w", err)
	}

	out := make([]ranking.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ranking.Entry{
			GroupID:            row.GroupID,
			UserID:             row.UserID,
			TotalPoints:        row.TotalPoints,
			TotalPredictions:   row.TotalPredictions,
			CorrectPredictions: row.CorrectPredictions,
			Rank:               row.Rank,
			PreviousRank:       row.PreviousRank,
			UpdatedAt:          row.UpdatedAt,
		})
	}
	return out, nil
}

func (r *RankingRepository) UpdateRanks(ctx context.Context, groupID string, entries []ranking.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for rank update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const query = `
UPDATE group_rankings
SET rank = $3,
    previous_rank = $4,
    updated_at = NOW()
WHERE group_public_id = $1
  AND user_id = $2`

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, groupID, entry.UserID, entry.Rank, entry.PreviousRank); err != nil {
			return fmt.Errorf("update rank group=%s user=%s: %w", groupID, entry.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rank update tx: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kickpool/prediction-league/internal/domain/scoring"
	qb "github.com/kickpool/prediction-league/internal/platform/querybuilder"
)

type ScoringRepository struct {
	db *sqlx.DB
}

func NewScoringRepository(db *sqlx.DB) *ScoringRepository {
	return &ScoringRepository{db: db}
}

func (r *ScoringRepository) CreateRule(ctx context.Context, rule scoring.Rule) error {
	const query = `
INSERT INTO scoring_rules (public_id, group_public_id, category, description, points)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.GroupID, string(rule.Category), rule.Description, rule.Points,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("scoring rule %s already exists: %w", rule.ID, err)
		}
		return fmt.Errorf("insert scoring rule: %w", err)
	}
	return nil
}

func (r *ScoringRepository) UpdateRule(ctx context.Context, rule scoring.Rule) error {
	query, args, err := qb.Update("scoring_rules").
		Set("category", string(rule.Category)).
		Set("description", rule.Description).
		Set("points", rule.Points).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", rule.ID),
			qb.Eq("group_public_id", rule.GroupID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update scoring rule query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update scoring rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scoring rule rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scoring rule %s not found in group %s", rule.ID, rule.GroupID)
	}
	return nil
}

func (r *ScoringRepository) DeleteRule(ctx context.Context, groupID, ruleID string) error {
	const query = `
DELETE FROM scoring_rules
WHERE public_id = $1
  AND group_public_id = $2`

	result, err := r.db.ExecContext(ctx, query, ruleID, groupID)
	if err != nil {
		return fmt.Errorf("delete scoring rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scoring rule rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scoring rule %s not found in group %s", ruleID, groupID)
	}
	return nil
}

func (r *ScoringRepository) ListRulesByGroup(ctx context.Context, groupID string) ([]scoring.Rule, error) {
	query, args, err := qb.Select("*").From("scoring_rules").
		Where(qb.Eq("group_public_id", groupID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select scoring rules query: %w", err)
	}

	var rows []scoringRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scoring rules: %w", err)
	}

	out := make([]scoring.Rule, 0, len(rows))
	for _, row := range rows {
		out = append(out, ruleFromRow(row))
	}
	return out, nil
}

func (r *ScoringRepository) ListRulesByGroups(ctx context.Context, groupIDs []string) (map[string][]scoring.Rule, error) {
	out := make(map[string][]scoring.Rule, len(groupIDs))
	if len(groupIDs) == 0 {
		return out, nil
	}

	values := make([]any, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		values = append(values, groupID)
	}

	query, args, err := qb.Select("*").From("scoring_rules").
		Where(qb.In("group_public_id", values)).
		OrderBy("group_public_id", "created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select scoring rules by groups query: %w", err)
	}

	var rows []scoringRuleTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scoring rules by groups: %w", err)
	}

	for _, row := range rows {
		out[row.GroupID] = append(out[row.GroupID], ruleFromRow(row))
	}
	return out, nil
}

func ruleFromRow(row scoringRuleTableModel) scoring.Rule {
	return scoring.Rule{
		ID:          row.PublicID,
		GroupID:     row.GroupID,
		Category:    scoring.Category(row.Category),
		Description: row.Description,
		Points:      row.Points,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kickpool/prediction-league/internal/domain/group"
	qb "github.com/kickpool/prediction-league/internal/platform/querybuilder"
)

type GroupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g group.Group) error {
	const query = `
INSERT INTO groups (public_id, competition_public_id, owner_user_id, name, invite_code)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query,
		g.ID, g.CompetitionID, g.OwnerUserID, g.Name, g.InviteCode,
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group %s already exists: %w", g.ID, err)
		}
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (group.Group, bool, error) {
	return r.getOne(ctx, qb.Eq("public_id", groupID))
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (group.Group, bool, error) {
	return r.getOne(ctx, qb.Eq("invite_code", inviteCode))
}

func (r *GroupRepository) getOne(ctx context.Context, condition qb.Condition) (group.Group, bool, error) {
	query, args, err := qb.Select("*").From("groups").
		Where(condition).
		ToSQL()
	if err != nil {
		return group.Group{}, false, fmt.Errorf("build select group query: %w", err)
	}

	var row groupTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Group{}, false, nil
		}
		return group.Group{}, false, fmt.Errorf("get group: %w", err)
	}

	return groupFromRow(row), true, nil
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]group.Group, error) {
	const query = `
SELECT g.*
FROM groups g
JOIN group_members gm ON gm.group_public_id = g.public_id
WHERE gm.user_id = $1
ORDER BY g.created_at, g.id`

	var rows []groupTableModel
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("select groups by user: %w", err)
	}

	out := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupFromRow(row))
	}
	return out, nil
}

func (r *GroupRepository) UpdateName(ctx context.Context, groupID, ownerUserID, name string) error {
	query, args, err := qb.Update("groups").
		Set("name", name).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("public_id", groupID),
			qb.Eq("owner_user_id", ownerUserID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update group name query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update group name: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update group name rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("group %s not found or not owned by %s", groupID, ownerUserID)
	}
	return nil
}

func (r *GroupRepository) AddMember(ctx context.Context, m group.Member) error {
	const query = `
INSERT INTO group_members (group_public_id, user_id, total_points)
VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, m.GroupID, m.UserID, m.TotalPoints); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s is already a member of group %s: %w", m.UserID, m.GroupID, err)
		}
		return fmt.Errorf("insert group member: %w", err)
	}
	return nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1
    FROM group_members
    WHERE group_public_id = $1
      AND user_id = $2
)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, groupID, userID); err != nil {
		return false, fmt.Errorf("check group membership: %w", err)
	}
	return exists, nil
}

func (r *GroupRepository) GetMember(ctx context.Context, groupID, userID string) (group.Member, bool, error) {
	query, args, err := qb.Select("*").From("group_members").
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return group.Member{}, false, fmt.Errorf("build select group member query: %w", err)
	}

	var row groupMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return group.Member{}, false, nil
		}
		return group.Member{}, false, fmt.Errorf("get group member: %w", err)
	}

	return group.Member{
		GroupID:     row.GroupID,
		UserID:      row.UserID,
		TotalPoints: row.TotalPoints,
		JoinedAt:    row.JoinedAt,
		UpdatedAt:   row.UpdatedAt,
	}, true, nil
}

// IncrementMemberPoints adds delta in a single UPDATE so concurrent scoring
// runs never lose increments to a read-modify-write race.
func (r *GroupRepository) IncrementMemberPoints(ctx context.Context, groupID, userID string, delta int) error {
	const query = `
UPDATE group_members
SET total_points = total_points + $3,
    updated_at = NOW()
WHERE group_public_id = $1
  AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, groupID, userID, delta)
	if err != nil {
		return fmt.Errorf("increment member points: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment member points rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s is not a member of group %s", userID, groupID)
	}
	return nil
}

func groupFromRow(row groupTableModel) group.Group {
	return group.Group{
		ID:            row.PublicID,
		CompetitionID: row.CompetitionID,
		OwnerUserID:   row.OwnerUserID,
		Name:          row.Name,
		InviteCode:    row.InviteCode,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

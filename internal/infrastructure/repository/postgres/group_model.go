package postgres

import "time"

type groupTableModel struct {
	ID            int64     `db:"id"`
	PublicID      string    `db:"public_id"`
	CompetitionID string    `db:"competition_public_id"`
	OwnerUserID   string    `db:"owner_user_id"`
	Name          string    `db:"name"`
	InviteCode    string    `db:"invite_code"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type groupMemberTableModel struct {
	ID          int64     `db:"id"`
	GroupID     string    `db:"group_public_id"`
	UserID      string    `db:"user_id"`
	TotalPoints int       `db:"total_points"`
	JoinedAt    time.Time `db:"joined_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

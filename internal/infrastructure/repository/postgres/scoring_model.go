package postgres

import "time"

type scoringRuleTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	GroupID     string    `db:"group_public_id"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Points      int       `db:"points"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

package postgres

import "time"

type predictionTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	UserID       string    `db:"user_id"`
	MatchID      string    `db:"match_public_id"`
	GroupID      string    `db:"group_public_id"`
	HomeScore    int       `db:"home_score"`
	AwayScore    int       `db:"away_score"`
	PointsEarned *int      `db:"points_earned"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

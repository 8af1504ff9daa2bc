package postgres

import "time"

type matchTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	CompetitionID string     `db:"competition_public_id"`
	HomeTeam      string     `db:"home_team"`
	AwayTeam      string     `db:"away_team"`
	KickoffAt     time.Time  `db:"kickoff_at"`
	HomeScore     *int       `db:"home_score"`
	AwayScore     *int       `db:"away_score"`
	Status        string     `db:"status"`
	ScoredAt      *time.Time `db:"scored_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

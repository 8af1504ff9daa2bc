package postgres

import "time"

type rankingEntryTableModel struct {
	ID                 int64     `db:"id"`
	GroupID            string    `db:"group_public_id"`
	UserID             string    `db:"user_id"`
	TotalPoints        int       `db:"total_points"`
	TotalPredictions   int       `db:"total_predictions"`
	CorrectPredictions int       `db:"correct_predictions"`
	Rank               int       `db:"rank"`
	PreviousRank       *int      `db:"previous_rank"`
	UpdatedAt          time.Time `db:"updated_at"`
}

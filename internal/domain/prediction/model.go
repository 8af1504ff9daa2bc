package prediction

import "time"

// Prediction is a user's forecasted score line for a match within one group.
// PointsEarned stays nil until the match is finalized and scored; the nil
// check doubles as the per-prediction idempotency guard.
type Prediction struct {
	ID           string
	UserID       string
	MatchID      string
	GroupID      string
	HomeScore    int
	AwayScore    int
	PointsEarned *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Prediction) IsScored() bool {
	return p.PointsEarned != nil
}

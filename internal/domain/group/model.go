package group

import "time"

// Group is a private prediction pool attached to one competition.
type Group struct {
	ID            string
	CompetitionID string
	OwnerUserID   string
	Name          string
	InviteCode    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Member carries the cumulative point total for one user in one group. The
// total is incremented per scored prediction and never recomputed from raw
// predictions in the hot path.
type Member struct {
	GroupID     string
	UserID      string
	TotalPoints int
	JoinedAt    time.Time
	UpdatedAt   time.Time
}

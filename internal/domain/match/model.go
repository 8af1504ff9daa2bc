package match

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
)

// Match is one fixture users predict on. ScoredAt marks that prediction
// scoring already ran for this match; it is the idempotency guard for
// finalization.
type Match struct {
	ID            string
	CompetitionID string
	HomeTeam      string
	AwayTeam      string
	KickoffAt     time.Time
	HomeScore     *int
	AwayScore     *int
	Status        string
	ScoredAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinished
}

// IsTerminalStatus reports whether no further status transition is allowed.
func IsTerminalStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransition validates the SCHEDULED -> LIVE -> FINISHED machine.
// POSTPONED and CANCELLED are reachable only from SCHEDULED and are terminal.
func CanTransition(from, to string) bool {
	from = NormalizeStatus(from)
	to = NormalizeStatus(to)
	if from == to {
		return false
	}

	switch from {
	case StatusScheduled:
		switch to {
		case StatusLive, StatusFinished, StatusPostponed, StatusCancelled:
			return true
		}
	case StatusLive:
		return to == StatusFinished
	}
	return false
}

func (m Match) HasFinalScore() bool {
	return IsFinishedStatus(m.Status) && m.HomeScore != nil && m.AwayScore != nil
}

func (m Match) HasStarted(now time.Time) bool {
	if NormalizeStatus(m.Status) != StatusScheduled {
		return true
	}
	return !m.KickoffAt.IsZero() && !now.Before(m.KickoffAt)
}

package ranking

import "time"

type Movement string

const (
	MovementUp   Movement = "up"
	MovementDown Movement = "down"
	MovementSame Movement = "same"
	MovementNew  Movement = "new"
)

// Entry is the denormalized leaderboard row for one user in one group. It is
// created lazily on the user's first scored prediction in the group.
type Entry struct {
	GroupID            string
	UserID             string
	TotalPoints        int
	TotalPredictions   int
	CorrectPredictions int
	Rank               int
	PreviousRank       *int
	UpdatedAt          time.Time
}

// MovementOf derives the rank movement from the previous-rank bookkeeping.
// Delta = previousRank - rank, so positive means the user climbed.
func (e Entry) MovementOf() Movement {
	if e.PreviousRank == nil {
		return MovementNew
	}
	switch {
	case *e.PreviousRank > e.Rank:
		return MovementUp
	case *e.PreviousRank < e.Rank:
		return MovementDown
	default:
		return MovementSame
	}
}

// AssignRanks writes competition ranks into entries, which must already be
// sorted by TotalPoints descending. Tied totals share the rank of the first
// tied entry; the next distinct total gets its 1-based list position, so
// totals [10,10,7] rank as [1,1,3]. The rank held before this call is
// preserved in PreviousRank (nil for rows never ranked).
func AssignRanks(entries []Entry) {
	for i := range entries {
		if entries[i].Rank > 0 {
			previous := entries[i].Rank
			entries[i].PreviousRank = &previous
		} else {
			entries[i].PreviousRank = nil
		}

		if i > 0 && entries[i].TotalPoints == entries[i-1].TotalPoints {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

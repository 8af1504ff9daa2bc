package ranking

import "context"

type Repository interface {
	// ApplyScore upserts the entry for (groupID, userID): a missing row is
	// created with the initial counters, an existing row gets atomic
	// storage-level increments (points added, predictions +1, correct +1 when
	// points > 0).
	ApplyScore(ctx context.Context, groupID, userID string, points int) error

	// ListByGroup returns all entries for the group ordered by TotalPoints
	// descending (ties in stable storage order).
	ListByGroup(ctx context.Context, groupID string) ([]Entry, error)

	// UpdateRanks persists Rank and PreviousRank for the given entries.
	UpdateRanks(ctx context.Context, groupID string, entries []Entry) error
}

package ranking

import "testing"

func entryTotals(totals ...int) []Entry {
	out := make([]Entry, 0, len(totals))
	for i, total := range totals {
		out = append(out, Entry{UserID: string(rune('a' + i)), TotalPoints: total})
	}
	return out
}

func TestAssignRanks_TiesShareRankAndNextSkips(t *testing.T) {
	entries := entryTotals(10, 10, 7)
	AssignRanks(entries)

	want := []int{1, 1, 3}
	for i, entry := range entries {
		if entry.Rank != want[i] {
			t.Fatalf("rank[%d]: got=%d want=%d", i, entry.Rank, want[i])
		}
	}

	entries = entryTotals(10, 10, 7, 7)
	AssignRanks(entries)
	want = []int{1, 1, 3, 3}
	for i, entry := range entries {
		if entry.Rank != want[i] {
			t.Fatalf("rank[%d] with tied tail: got=%d want=%d", i, entry.Rank, want[i])
		}
	}
}

func TestAssignRanks_RecordsPreviousRank(t *testing.T) {
	entries := entryTotals(12, 9)
	AssignRanks(entries)
	if entries[0].PreviousRank != nil || entries[1].PreviousRank != nil {
		t.Fatalf("fresh entries must have nil previous rank")
	}

	// Second recomputation after the order flipped.
	entries[0], entries[1] = entries[1], entries[0]
	entries[0].TotalPoints = 15
	AssignRanks(entries)

	if entries[0].Rank != 1 || entries[0].PreviousRank == nil || *entries[0].PreviousRank != 2 {
		t.Fatalf("climber: rank=%d previous=%v", entries[0].Rank, entries[0].PreviousRank)
	}
	if entries[1].Rank != 2 || entries[1].PreviousRank == nil || *entries[1].PreviousRank != 1 {
		t.Fatalf("faller: rank=%d previous=%v", entries[1].Rank, entries[1].PreviousRank)
	}
}

func TestMovementOf(t *testing.T) {
	two := 2
	one := 1

	cases := []struct {
		name  string
		entry Entry
		want  Movement
	}{
		{"new", Entry{Rank: 3}, MovementNew},
		{"up", Entry{Rank: 1, PreviousRank: &two}, MovementUp},
		{"down", Entry{Rank: 2, PreviousRank: &one}, MovementDown},
		{"same", Entry{Rank: 1, PreviousRank: &one}, MovementSame},
	}

	for _, tc := range cases {
		if got := tc.entry.MovementOf(); got != tc.want {
			t.Fatalf("%s: got=%s want=%s", tc.name, got, tc.want)
		}
	}
}

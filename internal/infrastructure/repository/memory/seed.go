package memory

import (
	"time"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/match"
)

const (
	CompetitionIDPremierLeague  = "eng-premier-league-2025"
	CompetitionIDLiga1Indonesia = "idn-liga-1-2025"
)

func SeedCompetitions() []competition.Competition {
	return []competition.Competition{
		{
			ID:     CompetitionIDPremierLeague,
			Name:   "Premier League",
			Season: "2025/2026",
		},
		{
			ID:     CompetitionIDLiga1Indonesia,
			Name:   "Liga 1 Indonesia",
			Season: "2025/2026",
		},
	}
}

func SeedMatches(now time.Time) []match.Match {
	kickoff := now.Add(48 * time.Hour).Truncate(time.Hour)
	return []match.Match{
		{
			ID:            "eng-2025-gw01-ars-liv",
			CompetitionID: CompetitionIDPremierLeague,
			HomeTeam:      "Arsenal",
			AwayTeam:      "Liverpool",
			KickoffAt:     kickoff,
			Status:        match.StatusScheduled,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "eng-2025-gw01-mci-che",
			CompetitionID: CompetitionIDPremierLeague,
			HomeTeam:      "Manchester City",
			AwayTeam:      "Chelsea",
			KickoffAt:     kickoff.Add(2 * time.Hour),
			Status:        match.StatusScheduled,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "idn-2025-w01-psj-psb",
			CompetitionID: CompetitionIDLiga1Indonesia,
			HomeTeam:      "Persija Jakarta",
			AwayTeam:      "Persib Bandung",
			KickoffAt:     kickoff.Add(24 * time.Hour),
			Status:        match.StatusScheduled,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

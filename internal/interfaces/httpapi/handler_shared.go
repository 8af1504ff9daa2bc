package httpapi

import (
	"context"
	"time"

	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/domain/prediction"
	"github.com/kickpool/prediction-league/internal/domain/scoring"
	"github.com/kickpool/prediction-league/internal/usecase"
)

type createGroupRequest struct {
	CompetitionID string `json:"competition_id" validate:"required"`
	Name          string `json:"name" validate:"required,max=64"`
}

type updateGroupRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type joinGroupByInviteRequest struct {
	InviteCode string `json:"invite_code" validate:"required,min=4,max=64"`
}

type upsertRuleRequest struct {
	Category    string `json:"category" validate:"omitempty,max=32"`
	Description string `json:"description" validate:"required,max=200"`
	Points      int    `json:"points" validate:"gte=0"`
}

type submitPredictionRequest struct {
	MatchID   string `json:"match_id" validate:"required"`
	HomeScore int    `json:"home_score" validate:"gte=0"`
	AwayScore int    `json:"away_score" validate:"gte=0"`
}

type createMatchRequest struct {
	CompetitionID string `json:"competition_id" validate:"required"`
	HomeTeam      string `json:"home_team" validate:"required,max=100"`
	AwayTeam      string `json:"away_team" validate:"required,max=100"`
	KickoffAtUTC  string `json:"kickoff_at_utc" validate:"required"`
}

type setMatchResultRequest struct {
	HomeScore int    `json:"home_score" validate:"gte=0"`
	AwayScore int    `json:"away_score" validate:"gte=0"`
	Status    string `json:"status" validate:"required"`
}

type setMatchStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type finalizeScoringRequest struct {
	MatchID string `json:"match_id" validate:"required"`
}

type competitionDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Season string `json:"season"`
}

type matchDTO struct {
	ID            string  `json:"id"`
	CompetitionID string  `json:"competition_id"`
	HomeTeam      string  `json:"home_team"`
	AwayTeam      string  `json:"away_team"`
	KickoffAtUTC  string  `json:"kickoff_at_utc"`
	HomeScore     *int    `json:"home_score,omitempty"`
	AwayScore     *int    `json:"away_score,omitempty"`
	Status        string  `json:"status"`
	ScoredAtUTC   *string `json:"scored_at_utc,omitempty"`
}

type groupDTO struct {
	ID            string `json:"id"`
	CompetitionID string `json:"competition_id"`
	OwnerUserID   string `json:"owner_user_id"`
	Name          string `json:"name"`
	InviteCode    string `json:"invite_code"`
	CreatedAtUTC  string `json:"created_at_utc"`
	UpdatedAtUTC  string `json:"updated_at_utc"`
}

type ruleDTO struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

type predictionDTO struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	MatchID      string `json:"match_id"`
	GroupID      string `json:"group_id"`
	HomeScore    int    `json:"home_score"`
	AwayScore    int    `json:"away_score"`
	PointsEarned *int   `json:"points_earned,omitempty"`
	CreatedAtUTC string `json:"created_at_utc"`
	UpdatedAtUTC string `json:"updated_at_utc"`
}

type leaderboardRowDTO struct {
	Rank               int    `json:"rank"`
	UserID             string `json:"user_id"`
	TotalPoints        int    `json:"total_points"`
	TotalPredictions   int    `json:"total_predictions"`
	CorrectPredictions int    `json:"correct_predictions"`
	PreviousRank       *int   `json:"previous_rank,omitempty"`
	Movement           string `json:"movement"`
}

type finalizeScoringResultDTO struct {
	MatchID           string `json:"match_id"`
	PredictionsScored int    `json:"predictions_scored"`
}

func competitionToDTO(v competition.Competition) competitionDTO {
	return competitionDTO{
		ID:     v.ID,
		Name:   v.Name,
		Season: v.Season,
	}
}

func matchToDTO(ctx context.Context, v match.Match) matchDTO {
	ctx, span := startSpan(ctx, "httpapi.matchToDTO")
	defer span.End()

	dto := matchDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		HomeTeam:      v.HomeTeam,
		AwayTeam:      v.AwayTeam,
		KickoffAtUTC:  v.KickoffAt.UTC().Format(time.RFC3339),
		HomeScore:     v.HomeScore,
		AwayScore:     v.AwayScore,
		Status:        v.Status,
	}
	if v.ScoredAt != nil {
		scoredAt := v.ScoredAt.UTC().Format(time.RFC3339)
		dto.ScoredAtUTC = &scoredAt
	}
	return dto
}

func groupToDTO(ctx context.Context, v group.Group) groupDTO {
	ctx, span := startSpan(ctx, "httpapi.groupToDTO")
	defer span.End()

	return groupDTO{
		ID:            v.ID,
		CompetitionID: v.CompetitionID,
		OwnerUserID:   v.OwnerUserID,
		Name:          v.Name,
		InviteCode:    v.InviteCode,
		CreatedAtUTC:  v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC:  v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ruleToDTO(v scoring.Rule) ruleDTO {
	return ruleDTO{
		ID:          v.ID,
		GroupID:     v.GroupID,
		Category:    string(v.Category),
		Description: v.Description,
		Points:      v.Points,
	}
}

func predictionToDTO(ctx context.Context, v prediction.Prediction) predictionDTO {
	ctx, span := startSpan(ctx, "httpapi.predictionToDTO")
	defer span.End()

	return predictionDTO{
		ID:           v.ID,
		UserID:       v.UserID,
		MatchID:      v.MatchID,
		GroupID:      v.GroupID,
		HomeScore:    v.HomeScore,
		AwayScore:    v.AwayScore,
		PointsEarned: v.PointsEarned,
		CreatedAtUTC: v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAtUTC: v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func leaderboardRowToDTO(v usecase.LeaderboardRow) leaderboardRowDTO {
	return leaderboardRowDTO{
		Rank:               v.Rank,
		UserID:             v.UserID,
		TotalPoints:        v.TotalPoints,
		TotalPredictions:   v.TotalPredictions,
		CorrectPredictions: v.CorrectPredictions,
		PreviousRank:       v.PreviousRank,
		Movement:           string(v.Movement),
	}
}

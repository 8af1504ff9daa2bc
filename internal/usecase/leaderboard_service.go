package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/ranking"
	"github.com/kickpool/prediction-league/internal/platform/cache"
)

// LeaderboardRow is one ranked member with the movement derived from the
// previous rank snapshot.
type LeaderboardRow struct {
	Rank               int
	UserID             string
	TotalPoints        int
	TotalPredictions   int
	CorrectPredictions int
	PreviousRank       *int
	Movement           ranking.Movement
}

// LeaderboardService serves the per-group standings. Reads are cached with a
// short TTL; the finalize flow calls Invalidate for every reranked group so
// fresh standings are readable immediately instead of waiting out the TTL.
type LeaderboardService struct {
	groupRepo   group.Repository
	rankingRepo ranking.Repository
	cache       *cache.Store
}

func NewLeaderboardService(
	groupRepo group.Repository,
	rankingRepo ranking.Repository,
	cacheStore *cache.Store,
) *LeaderboardService {
	return &LeaderboardService{
		groupRepo:   groupRepo,
		rankingRepo: rankingRepo,
		cache:       cacheStore,
	}
}

// ListByGroup returns the group leaderboard ordered by rank. The caller must
// be a member of the group.
func (s *LeaderboardService) ListByGroup(ctx context.Context, userID, groupID string) ([]LeaderboardRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.ListByGroup")
	defer span.End()

	if strings.TrimSpace(userID) == "" || strings.TrimSpace(groupID) == "" {
		return nil, fmt.Errorf("%w: user and group ids are required", ErrInvalidInput)
	}

	_, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: group=%s", ErrNotFound, groupID)
	}

	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check group membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("%w: user=%s is not a member of group=%s", ErrUnauthorized, userID, groupID)
	}

	if s.cache == nil {
		return s.loadRows(ctx, groupID)
	}

	value, err := s.cache.GetOrLoad(ctx, "leaderboard:"+groupID, func(ctx context.Context) (any, error) {
		return s.loadRows(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}

	rows, ok := value.([]LeaderboardRow)
	if !ok {
		return s.loadRows(ctx, groupID)
	}
	return rows, nil
}

// Invalidate drops the cached leaderboard for a group. Called after scoring
// so the next read reflects the new ranks immediately.
func (s *LeaderboardService) Invalidate(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, "leaderboard:"+groupID)
}

func (s *LeaderboardService) loadRows(ctx context.Context, groupID string) ([]LeaderboardRow, error) {
	entries, err := s.rankingRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list rankings group=%s: %w", groupID, err)
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:               e.Rank,
			UserID:             e.UserID,
			TotalPoints:        e.TotalPoints,
			TotalPredictions:   e.TotalPredictions,
			CorrectPredictions: e.CorrectPredictions,
			PreviousRank:       e.PreviousRank,
			Movement:           e.MovementOf(),
		})
	}
	return rows, nil
}

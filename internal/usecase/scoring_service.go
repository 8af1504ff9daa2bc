package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/domain/prediction"
	"github.com/kickpool/prediction-league/internal/domain/ranking"
	"github.com/kickpool/prediction-league/internal/domain/scoring"
	"github.com/kickpool/prediction-league/internal/platform/logging"
	"github.com/kickpool/prediction-league/internal/platform/resilience"
)

const defaultRerankWorkers = 4

// ScoringCompletedEvent is the outcome a caller may broadcast to live
// subscribers once a match has been scored.
type ScoringCompletedEvent struct {
	MatchID           string    `json:"match_id"`
	PredictionsScored int       `json:"predictions_scored"`
	GroupsReranked    int       `json:"groups_reranked"`
	CompletedAt       time.Time `json:"completed_at"`
}

// ScoringEmitter hands the completion signal to an external transport.
// Delivery mechanics are not this service's concern.
type ScoringEmitter interface {
	PublishScoringCompleted(ctx context.Context, event ScoringCompletedEvent) error
}

type FinalizeResult struct {
	MatchID           string
	PredictionsScored int
	GroupIDs          []string
}

// ScoringService propagates a finalized match result into prediction points,
// member totals and per-group rankings.
type ScoringService struct {
	matchRepo      match.Repository
	predictionRepo prediction.Repository
	groupRepo      group.Repository
	scoringRepo    scoring.Repository
	rankingRepo    ranking.Repository
	emitter        ScoringEmitter
	logger         *logging.Logger
	groupLocks     *resilience.KeyedMutex
	finalizeFlight resilience.SingleFlight
	now            func() time.Time
	rerankWorkers  int
}

func NewScoringService(
	matchRepo match.Repository,
	predictionRepo prediction.Repository,
	groupRepo group.Repository,
	scoringRepo scoring.Repository,
	rankingRepo ranking.Repository,
	emitter ScoringEmitter,
	logger *logging.Logger,
) *ScoringService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ScoringService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		groupRepo:      groupRepo,
		scoringRepo:    scoringRepo,
		rankingRepo:    rankingRepo,
		emitter:        emitter,
		logger:         logger,
		groupLocks:     resilience.NewKeyedMutex(),
		now:            time.Now,
		rerankWorkers:  defaultRerankWorkers,
	}
}

// SetRerankWorkers bounds the rerank worker pool. Values below 1 keep the
// current setting.
func (s *ScoringService) SetRerankWorkers(n int) {
	if n >= 1 {
		s.rerankWorkers = n
	}
}

// FinalizeMatchScoring scores every pending prediction for a finished match,
// propagates the points into member totals and the ranking cache, and
// recomputes ranks for every group the match touched.
//
// The operation is idempotent from the caller's perspective: a match that was
// already scored yields a no-op success with PredictionsScored=0. A failed
// run releases the scoring claim so an external retry can resume; predictions
// persisted before the failure are skipped on resume via the unset-points
// guard, so totals are never double-counted, and every group with a
// prediction on the match is reranked again so the resumed run leaves no
// stale ranks behind.
func (s *ScoringService) FinalizeMatchScoring(ctx context.Context, matchID string) (FinalizeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.FinalizeMatchScoring")
	defer span.End()

	if matchID == "" {
		return FinalizeResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	value, err, _ := s.finalizeFlight.Do("scoring:finalize:"+matchID, func() (any, error) {
		return s.finalizeOnce(ctx, matchID)
	})
	if err != nil {
		return FinalizeResult{}, err
	}

	result, ok := value.(FinalizeResult)
	if !ok {
		return FinalizeResult{MatchID: matchID}, nil
	}
	return result, nil
}

func (s *ScoringService) finalizeOnce(ctx context.Context, matchID string) (FinalizeResult, error) {
	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("get match for scoring: %w", err)
	}
	if !exists {
		return FinalizeResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, matchID)
	}
	if !match.IsFinishedStatus(m.Status) {
		return FinalizeResult{}, fmt.Errorf("%w: match=%s status=%s is not finished", ErrPreconditionFailed, matchID, match.NormalizeStatus(m.Status))
	}
	if m.HomeScore == nil || m.AwayScore == nil {
		return FinalizeResult{}, fmt.Errorf("%w: match=%s has no final score", ErrPreconditionFailed, matchID)
	}

	now := s.now().UTC()
	claimed, err := s.matchRepo.ClaimScoring(ctx, matchID, now)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("claim scoring for match=%s: %w", matchID, err)
	}
	if !claimed {
		s.logger.InfoContext(ctx, "match already scored, skipping", "match_id", matchID)
		return FinalizeResult{MatchID: matchID}, nil
	}

	result, err := s.scoreMatch(ctx, m, now)
	if err != nil {
		if releaseErr := s.matchRepo.ReleaseScoring(ctx, matchID); releaseErr != nil {
			s.logger.ErrorContext(ctx, "release scoring claim failed", "match_id", matchID, "error", releaseErr)
		}
		return FinalizeResult{}, err
	}

	return result, nil
}

func (s *ScoringService) scoreMatch(ctx context.Context, m match.Match, now time.Time) (FinalizeResult, error) {
	predictions, err := s.predictionRepo.ListByMatch(ctx, m.ID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("list predictions for match=%s: %w", m.ID, err)
	}

	groupIDs := distinctGroupIDs(predictions)
	rulesByGroup, err := s.scoringRepo.ListRulesByGroups(ctx, groupIDs)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("list scoring rules for match=%s: %w", m.ID, err)
	}
	ruleSetByGroup := make(map[string]scoring.RuleSet, len(groupIDs))
	for _, groupID := range groupIDs {
		ruleSetByGroup[groupID] = scoring.NewRuleSet(rulesByGroup[groupID])
	}

	scored := 0
	for _, p := range predictions {
		if p.IsScored() {
			continue
		}

		points := scoring.ComputePoints(p.HomeScore, p.AwayScore, *m.HomeScore, *m.AwayScore, ruleSetByGroup[p.GroupID])

		applied, err := s.predictionRepo.SetPoints(ctx, p.ID, points)
		if err != nil {
			return FinalizeResult{}, fmt.Errorf("set points prediction=%s match=%s: %w", p.ID, m.ID, err)
		}
		if !applied {
			// Scored by an earlier partial run; its increments are in place.
			continue
		}

		if err := s.groupRepo.IncrementMemberPoints(ctx, p.GroupID, p.UserID, points); err != nil {
			return FinalizeResult{}, fmt.Errorf("increment member points group=%s user=%s: %w", p.GroupID, p.UserID, err)
		}
		if err := s.rankingRepo.ApplyScore(ctx, p.GroupID, p.UserID, points); err != nil {
			return FinalizeResult{}, fmt.Errorf("apply score to ranking group=%s user=%s: %w", p.GroupID, p.UserID, err)
		}

		scored++
	}

	// Rerank every group with a prediction on this match, not only the groups
	// scored in this run: a resumed run skips predictions persisted before an
	// earlier failure, and those groups still need their ranks recomputed.
	// Rerank is idempotent, so groups that were already ranked stay correct.
	sort.Strings(groupIDs)
	if err := s.rerankGroups(ctx, groupIDs); err != nil {
		return FinalizeResult{}, err
	}

	result := FinalizeResult{MatchID: m.ID, PredictionsScored: scored, GroupIDs: groupIDs}
	s.logger.InfoContext(ctx, "match scoring completed",
		"match_id", m.ID,
		"predictions_scored", scored,
		"groups_reranked", len(groupIDs),
	)

	s.emitCompleted(ctx, ScoringCompletedEvent{
		MatchID:           m.ID,
		PredictionsScored: scored,
		GroupsReranked:    len(groupIDs),
		CompletedAt:       now,
	})

	return result, nil
}

// rerankGroups recomputes ranks for each touched group. Groups are disjoint
// state, so they rerank in parallel on a bounded worker pool; each group's
// read-rank-write sequence runs under that group's lock.
func (s *ScoringService) rerankGroups(ctx context.Context, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return nil
	}
	if len(groupIDs) == 1 {
		return s.rerankGroup(ctx, groupIDs[0])
	}

	workers := s.rerankWorkers
	if workers <= 0 {
		workers = defaultRerankWorkers
	}
	if workers > len(groupIDs) {
		workers = len(groupIDs)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("create rerank worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, groupID := range groupIDs {
		groupID := groupID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.rerankGroup(ctx, groupID); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit rerank group=%s: %w", groupID, submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	return firstErr
}

func (s *ScoringService) rerankGroup(ctx context.Context, groupID string) error {
	unlock := s.groupLocks.Lock(groupID)
	defer unlock()

	entries, err := s.rankingRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list rankings group=%s: %w", groupID, err)
	}
	if len(entries) == 0 {
		return nil
	}

	ranking.AssignRanks(entries)

	if err := s.rankingRepo.UpdateRanks(ctx, groupID, entries); err != nil {
		return fmt.Errorf("update ranks group=%s: %w", groupID, err)
	}
	return nil
}

func (s *ScoringService) emitCompleted(ctx context.Context, event ScoringCompletedEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.PublishScoringCompleted(ctx, event); err != nil {
		// Broadcast is best-effort: scoring already committed.
		s.logger.WarnContext(ctx, "publish scoring completed failed", "match_id", event.MatchID, "error", err)
	}
}

func distinctGroupIDs(predictions []prediction.Prediction) []string {
	seen := make(map[string]struct{}, len(predictions))
	out := make([]string, 0, len(predictions))
	for _, p := range predictions {
		if _, ok := seen[p.GroupID]; ok {
			continue
		}
		seen[p.GroupID] = struct{}{}
		out = append(out, p.GroupID)
	}
	return out
}

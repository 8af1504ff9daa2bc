package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/kickpool/prediction-league/internal/domain/user"
	"github.com/kickpool/prediction-league/internal/infrastructure/repository/memory"
	"github.com/kickpool/prediction-league/internal/platform/cache"
	"github.com/kickpool/prediction-league/internal/platform/id"
	"github.com/kickpool/prediction-league/internal/usecase"
)

const testInternalJobToken = "test-internal-token"

type mapVerifier map[string]user.Principal

func (v mapVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	principal, ok := v[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	competitionRepo := memory.NewCompetitionRepository(memory.SeedCompetitions())
	matchRepo := memory.NewMatchRepository(nil)
	groupRepo := memory.NewGroupRepository(nil)
	predictionRepo := memory.NewPredictionRepository()
	scoringRepo := memory.NewScoringRepository()
	rankingRepo := memory.NewRankingRepository()
	idGen := id.NewRandomGenerator()

	handler := NewHandler(
		usecase.NewCompetitionService(competitionRepo),
		usecase.NewMatchService(matchRepo, competitionRepo, idGen),
		usecase.NewGroupService(competitionRepo, groupRepo, scoringRepo, idGen),
		usecase.NewPredictionService(matchRepo, groupRepo, predictionRepo, idGen),
		usecase.NewLeaderboardService(groupRepo, rankingRepo, cache.NewStore(time.Minute)),
		usecase.NewScoringService(matchRepo, predictionRepo, groupRepo, scoringRepo, rankingRepo, nil, nil),
		nil,
	)

	verifier := mapVerifier{
		"alice-token": {UserID: "alice"},
		"bob-token":   {UserID: "bob"},
	}

	return NewRouter(handler, verifier, nil, []string{"*"}, testInternalJobToken)
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, internal bool, payload string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if internal {
		req.Header.Set("X-Internal-Job-Token", testInternalJobToken)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v (body=%s)", err, rec.Body.String())
	}
	if err := sonic.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("unmarshal data: %v (body=%s)", err, rec.Body.String())
	}
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", false, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_ListCompetitionsIsPublic(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/competitions", "", false, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body=%s)", rec.Code, rec.Body.String())
	}

	var items []competitionDTO
	decodeData(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("competitions = %d, want 2", len(items))
	}
}

func TestRouter_GroupsRequireAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/groups", "", false, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/groups", "bogus-token", false, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for unknown token", rec.Code)
	}
}

func TestRouter_InternalRoutesRequireJobToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/internal/jobs/finalize-scoring", "", false, `{"match_id":"m1"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// Walks the whole happy path through the public surface: group creation,
// joining by invite, fixture entry, predictions, result entry, scoring and
// the final leaderboard.
func TestRouter_PredictionRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/groups", "alice-token", false,
		`{"competition_id":"`+memory.CompetitionIDPremierLeague+`","name":"Office Pool"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var createdGroup groupDTO
	decodeData(t, rec, &createdGroup)
	if createdGroup.InviteCode == "" {
		t.Fatal("expected invite code on created group")
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/groups/join", "bob-token", false,
		`{"invite_code":"`+createdGroup.InviteCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join group status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	kickoff := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	rec = doJSON(t, router, http.MethodPost, "/v1/internal/matches", "", true,
		`{"competition_id":"`+memory.CompetitionIDPremierLeague+`","home_team":"Arsenal","away_team":"Chelsea","kickoff_at_utc":"`+kickoff+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create match status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var createdMatch matchDTO
	decodeData(t, rec, &createdMatch)

	rec = doJSON(t, router, http.MethodPost, "/v1/groups/"+createdGroup.ID+"/predictions", "alice-token", false,
		`{"match_id":"`+createdMatch.ID+`","home_score":2,"away_score":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("alice prediction status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/groups/"+createdGroup.ID+"/predictions", "bob-token", false,
		`{"match_id":"`+createdMatch.ID+`","home_score":0,"away_score":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("bob prediction status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPut, "/v1/internal/matches/"+createdMatch.ID+"/result", "", true,
		`{"home_score":2,"away_score":1,"status":"FINISHED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set result status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/internal/jobs/finalize-scoring", "", true,
		`{"match_id":"`+createdMatch.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize scoring status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var finalize finalizeScoringResultDTO
	decodeData(t, rec, &finalize)
	if finalize.PredictionsScored != 2 {
		t.Fatalf("predictions scored = %d, want 2", finalize.PredictionsScored)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/groups/"+createdGroup.ID+"/leaderboard", "alice-token", false, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var rows []leaderboardRowDTO
	decodeData(t, rec, &rows)
	if len(rows) != 2 {
		t.Fatalf("leaderboard rows = %d, want 2", len(rows))
	}
	if rows[0].UserID != "alice" || rows[0].Rank != 1 || rows[0].TotalPoints != 5 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].UserID != "bob" || rows[1].Rank != 2 || rows[1].TotalPoints != 0 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/internal/jobs/finalize-scoring", "", true,
		`{"match_id":"`+createdMatch.ID+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("refinalize status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &finalize)
	if finalize.PredictionsScored != 0 {
		t.Fatalf("refinalize scored = %d, want 0", finalize.PredictionsScored)
	}
}

func TestRouter_SubmitPredictionRejectsNegativeScore(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/groups", "alice-token", false,
		`{"competition_id":"`+memory.CompetitionIDPremierLeague+`","name":"Office Pool"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create group status = %d", rec.Code)
	}
	var createdGroup groupDTO
	decodeData(t, rec, &createdGroup)

	rec = doJSON(t, router, http.MethodPost, "/v1/groups/"+createdGroup.ID+"/predictions", "alice-token", false,
		`{"match_id":"some-match","home_score":-1,"away_score":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body=%s)", rec.Code, rec.Body.String())
	}
}

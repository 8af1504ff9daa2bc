package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/kickpool/prediction-league/external/broadcast"
	"github.com/kickpool/prediction-league/internal/config"
	"github.com/kickpool/prediction-league/internal/domain/competition"
	"github.com/kickpool/prediction-league/internal/domain/group"
	"github.com/kickpool/prediction-league/internal/domain/match"
	"github.com/kickpool/prediction-league/internal/domain/prediction"
	"github.com/kickpool/prediction-league/internal/domain/ranking"
	"github.com/kickpool/prediction-league/internal/domain/scoring"
	"github.com/kickpool/prediction-league/internal/infrastructure/account"
	"github.com/kickpool/prediction-league/internal/infrastructure/repository/memory"
	"github.com/kickpool/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/kickpool/prediction-league/internal/interfaces/httpapi"
	"github.com/kickpool/prediction-league/internal/platform/cache"
	idgen "github.com/kickpool/prediction-league/internal/platform/id"
	"github.com/kickpool/prediction-league/internal/platform/resilience"
	"github.com/kickpool/prediction-league/internal/usecase"
)

type repositories struct {
	competition competition.Repository
	match       match.Repository
	group       group.Repository
	prediction  prediction.Repository
	scoring     scoring.Repository
	ranking     ranking.Repository
}

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	repos, err := buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	idGenerator := idgen.NewRandomGenerator()

	var leaderboardCache *cache.Store
	if cfg.CacheEnabled {
		leaderboardCache = cache.NewStore(cfg.CacheTTL)
	}

	var emitter usecase.ScoringEmitter
	if cfg.WebhookEnabled {
		emitter = broadcast.NewWebhookPublisher(broadcast.WebhookPublisherConfig{
			SubscriberURLs: cfg.WebhookSubscriberURLs,
			Timeout:        cfg.WebhookTimeout,
			MaxRetries:     cfg.WebhookMaxRetries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	competitionSvc := usecase.NewCompetitionService(repos.competition)
	matchSvc := usecase.NewMatchService(repos.match, repos.competition, idGenerator)
	groupSvc := usecase.NewGroupService(repos.competition, repos.group, repos.scoring, idGenerator)
	predictionSvc := usecase.NewPredictionService(repos.match, repos.group, repos.prediction, idGenerator)
	leaderboardSvc := usecase.NewLeaderboardService(repos.group, repos.ranking, leaderboardCache)
	scoringSvc := usecase.NewScoringService(repos.match, repos.prediction, repos.group, repos.scoring, repos.ranking, emitter, nil)
	scoringSvc.SetRerankWorkers(cfg.RerankWorkers)

	accountClient := account.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		cfg.AccountBaseURL,
		cfg.AccountIntrospectPath,
		buildAccountBreaker(cfg),
		logger,
	)

	handler := httpapi.NewHandler(
		competitionSvc,
		matchSvc,
		groupSvc,
		predictionSvc,
		leaderboardSvc,
		scoringSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, accountClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

func buildRepositories(cfg config.Config) (repositories, error) {
	if cfg.UseMemoryRepos {
		return repositories{
			competition: memory.NewCompetitionRepository(memory.SeedCompetitions()),
			match:       memory.NewMatchRepository(memory.SeedMatches(time.Now().UTC())),
			group:       memory.NewGroupRepository(nil),
			prediction:  memory.NewPredictionRepository(),
			scoring:     memory.NewScoringRepository(),
			ranking:     memory.NewRankingRepository(),
		}, nil
	}

	db, err := otelsqlx.Open("postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, fmt.Errorf("open database: %w", err)
	}

	return repositories{
		competition: postgres.NewCompetitionRepository(db),
		match:       postgres.NewMatchRepository(db),
		group:       postgres.NewGroupRepository(db),
		prediction:  postgres.NewPredictionRepository(db),
		scoring:     postgres.NewScoringRepository(db),
		ranking:     postgres.NewRankingRepository(db),
	}, nil
}

func buildAccountBreaker(cfg config.Config) *resilience.CircuitBreaker {
	if !cfg.AccountCircuitEnabled {
		return nil
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: cfg.AccountCircuitFailureCount,
		OpenTimeout:      cfg.AccountCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
	})
	return resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq)
}

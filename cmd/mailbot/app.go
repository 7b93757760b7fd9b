package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mailbot/internal/config"
	"github.com/kailas-cloud/mailbot/internal/db"
	dbRedis "github.com/kailas-cloud/mailbot/internal/db/redis"
	logpkg "github.com/kailas-cloud/mailbot/internal/logger"
	"github.com/kailas-cloud/mailbot/internal/metrics"
	"github.com/kailas-cloud/mailbot/internal/repository/mailstore"
	"github.com/kailas-cloud/mailbot/internal/repository/matchstore"
	"github.com/kailas-cloud/mailbot/internal/repository/vectorindex"
	"github.com/kailas-cloud/mailbot/internal/retry"
	gmailTransport "github.com/kailas-cloud/mailbot/internal/transport/gmail"
	openaiTransport "github.com/kailas-cloud/mailbot/internal/transport/openai"
	botuc "github.com/kailas-cloud/mailbot/internal/usecase/bot"
	classifyuc "github.com/kailas-cloud/mailbot/internal/usecase/classify"
	healthuc "github.com/kailas-cloud/mailbot/internal/usecase/health"
	startupuc "github.com/kailas-cloud/mailbot/internal/usecase/startup"
)

// app is the composition root shared by serve, run, and reindex.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	store  *dbRedis.Store

	embedder *openaiTransport.Embedder
	mailer   *gmailTransport.Client

	mailIndex  *vectorindex.Index
	matchIndex *vectorindex.Index
	mailRepo   *mailstore.Repo

	startup *startupuc.Service
	health  *healthuc.Service
	bot     *botuc.Service
}

// newApp loads config, connects the store, and wires the full pipeline.
func newApp(ctx context.Context) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Info("starting mailbot",
		zap.String("env", env),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("chat_model", cfg.Chat.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("connected to vector store")

	metrics.Register()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	chat := openaiTransport.NewChat(&openaiTransport.ChatConfig{
		APIKey:      cfg.Chat.APIKey,
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		Temperature: float32(cfg.Chat.Temperature),
		MaxTokens:   cfg.Chat.MaxTokens,
		Logger:      logger,
	})

	mailer, err := gmailTransport.NewClient(ctx, &gmailTransport.Config{
		CredentialsFile: cfg.Mail.CredentialsFile,
		TokenFile:       cfg.Mail.TokenFile,
		Logger:          logger,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create mail client: %w", err)
	}

	retryPolicy := retry.Policy{
		Attempts: cfg.Retry.Attempts,
		Delay:    time.Duration(cfg.Retry.DelaySec) * time.Second,
	}
	readyTimeout := time.Duration(cfg.Index.ReadyTimeoutSec) * time.Second

	mailIndex := vectorindex.New(store, cfg.Index.MailName, cfg.Embedding.Dimensions,
		db.DistanceMetric(cfg.Index.Metric), logger).
		WithRetry(retryPolicy).
		WithReadiness(time.Second, readyTimeout).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)
	matchIndex := vectorindex.New(store, cfg.Index.MatchName, cfg.Embedding.Dimensions,
		db.DistanceMetric(cfg.Index.Metric), logger).
		WithRetry(retryPolicy).
		WithReadiness(time.Second, readyTimeout).
		WithHNSW(cfg.Index.HNSWM, cfg.Index.HNSWEFConstruct)

	mailRepo := mailstore.New(mailIndex, cfg.Index.MailNamespace).
		WithWeights(cfg.Search.SubjectWeight, cfg.Search.ContentWeight).
		WithTopK(cfg.Search.TopK)
	matchRepo := matchstore.New(matchIndex, embedder)

	classifier := classifyuc.New(chat, logger)

	startupSvc := startupuc.New([]startupuc.Target{
		{Name: cfg.Index.MailName, Init: mailIndex},
		{Name: cfg.Index.MatchName, Init: matchIndex},
	}, logger)

	healthSvc := healthuc.New(store, embedder, startupSvc)

	botSvc := botuc.New(mailer, embedder, mailRepo, matchRepo, classifier, startupSvc, logger).
		WithWeights(cfg.Search.SubjectWeight, cfg.Search.ContentWeight).
		WithThreshold(cfg.Search.ConfidenceThreshold).
		WithRetry(retryPolicy)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		embedder:   embedder,
		mailer:     mailer,
		mailIndex:  mailIndex,
		matchIndex: matchIndex,
		mailRepo:   mailRepo,
		startup:    startupSvc,
		health:     healthSvc,
		bot:        botSvc,
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

func (a *app) pollInterval() time.Duration {
	return time.Duration(a.cfg.Mail.PollIntervalSec) * time.Second
}

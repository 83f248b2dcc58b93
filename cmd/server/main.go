package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/programme-lv/contest/conf"
	"github.com/programme-lv/contest/http"
	"github.com/programme-lv/contest/s3bucket"
	"github.com/programme-lv/contest/settings"
	settingshttp "github.com/programme-lv/contest/settings/http"
	"github.com/programme-lv/contest/subm"
	submhttp "github.com/programme-lv/contest/subm/http"
	"github.com/programme-lv/contest/timeline"
	timelinehttp "github.com/programme-lv/contest/timeline/http"
	"github.com/programme-lv/contest/tracing"
)

var version = "dev"

func main() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("failed to load .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := conf.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg conf.Config) error {
	// a malformed timeline is a startup failure, never a runtime one
	tl, err := timeline.Load(cfg.TimelinePath)
	if err != nil {
		return err
	}
	slog.Info("timeline loaded",
		"competition_id", tl.CompetitionID(),
		"intervals", len(tl.Intervals()))

	shutdownTracing, err := tracing.Setup(ctx, "proglv-contest", cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	var awsCfg aws.Config
	if cfg.NeedsAws() {
		awsCfg, err = config.LoadDefaultConfig(ctx, config.WithRegion("eu-central-1"))
		if err != nil {
			return err
		}
	}

	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		connStr, err := cfg.Postgres.ConnString(ctx, awsCfg)
		if err != nil {
			return err
		}
		pool, err = pgxpool.New(ctx, connStr)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var snapshotRepo settings.SnapshotRepo
	switch cfg.SettingsStore {
	case conf.StorePostgres:
		snapshotRepo = settings.NewPgSnapshotRepo(pool)
	case conf.StoreDynamoDb:
		snapshotRepo = settings.NewDynamoDbSnapshotTable(dynamodb.NewFromConfig(awsCfg), cfg.DynamoSettingsTable)
	default:
		snapshotRepo = settings.NewInMemSnapshotRepo()
	}

	var submRepo subm.SubmRepo
	switch cfg.SubmStore {
	case conf.StorePostgres:
		submRepo = subm.NewPgSubmRepo(pool)
	default:
		submRepo = subm.NewInMemSubmRepo()
	}

	var payloads subm.PayloadStore = subm.NewInMemPayloadStore()
	if cfg.S3SubmBucket != "" {
		payloads = subm.NewS3PayloadStore(s3bucket.NewS3Bucket(awsCfg, cfg.S3SubmBucket))
	}

	var events subm.EventPublisher = subm.NewLogPublisher(slog.Default())
	if cfg.SubmQueueUrl != "" {
		events = subm.NewSqsPublisher(sqs.NewFromConfig(awsCfg), cfg.SubmQueueUrl)
	}

	synchronizer := settings.NewSynchronizer(tl, snapshotRepo, cfg.MaxSubmissionsPerInterval)

	// reconcile once at startup so the admin view is fresh
	if res, err := synchronizer.Sync(ctx, timeline.Clock()); err != nil {
		slog.Warn("initial settings sync failed", "error", err)
	} else {
		slog.Info("initial settings sync", "message", res.Message())
	}

	submSrvc := subm.NewSubmSrvc(tl, synchronizer, submRepo, payloads, events, timeline.Clock)

	server := http.NewHttpServer(
		http.Options{
			JwtKey:         []byte(cfg.JwtKey),
			AllowedOrigins: cfg.AllowedOrigins,
			AppEnv:         cfg.AppEnv,
			Version:        version,
			RequestTimeout: cfg.RequestTimeout,
		},
		timelinehttp.NewTimelineHttpHandler(tl, timeline.Clock),
		settingshttp.NewSettingsHttpHandler(synchronizer, timeline.Clock),
		submhttp.NewSubmHttpHandler(submSrvc),
	)

	return server.Start(ctx, cfg.Address)
}

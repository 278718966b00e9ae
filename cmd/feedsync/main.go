package main

import (
	"context"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/config"
	"github.com/dsyryh/feedsync/internal/repository/ledger"
	"github.com/dsyryh/feedsync/internal/repository/mongodb"
	"github.com/dsyryh/feedsync/internal/repository/sheets"
	"github.com/dsyryh/feedsync/internal/repository/xlsx"
	"github.com/dsyryh/feedsync/internal/scheduler"
	"github.com/dsyryh/feedsync/internal/service/archive"
	"github.com/dsyryh/feedsync/internal/service/extract"
	"github.com/dsyryh/feedsync/internal/service/feed"
	"github.com/dsyryh/feedsync/internal/service/pipeline"
	"github.com/dsyryh/feedsync/internal/service/reconcile"
	"github.com/dsyryh/feedsync/internal/service/sheetsync"
	"github.com/dsyryh/feedsync/pkg/clients/github"
	"github.com/dsyryh/feedsync/pkg/clients/mailbox"
	"github.com/dsyryh/feedsync/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mailClient := mailbox.NewClient(cfg.Mail, cfg.Dirs.SaveDir, baseLogger.Named("client.mail"))
	reader := xlsx.NewReader()
	stockExtractor := extract.NewStockExtractor(reader, cfg.Rules.Aliases, baseLogger.Named("svc.stock"))

	var priceSource pipeline.PriceSource
	switch cfg.Rules.PriceSource {
	case config.PriceSourceSheets:
		sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		syncSvc := sheetsync.NewService(sheetsRepo, cfg.Sheets.SheetName, cfg.Rules.Aliases, cfg.Rules.Brand, baseLogger.Named("svc.sheetsync"))
		priceSource = pipeline.NewSheetPriceSource(syncSvc)
	default:
		normalizer := extract.NewPriceNormalizer(reader, cfg.Rules.Brand, baseLogger.Named("svc.price"))
		priceSource = pipeline.NewArchivePriceSource(normalizer)
	}

	var store feed.ContentStore
	if cfg.Feed.GitHubToken != "" && cfg.Feed.GitHubRepo != "" {
		store = github.NewClient(cfg.Feed.GitHubRepo, cfg.Feed.GitHubToken)
	} else {
		baseLogger.Warn("github settings missing, feed will only be written locally")
	}

	var reports pipeline.ReportStore
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reports = mongoRepo
	}

	pipe := pipeline.New(pipeline.Deps{
		Mail:       mailClient,
		Archive:    archive.NewExtractor(),
		Stock:      stockExtractor,
		Prices:     priceSource,
		Reconciler: reconcile.New(cfg.Rules.MarkupFactor, cfg.Rules.StockCap, cfg.Rules.MultiplicityPhrase, baseLogger.Named("svc.reconcile")),
		Publisher:  feed.NewPublisher(store, cfg.Feed.RemotePath, cfg.Dirs.ResultDir, cfg.Feed.CSVHeader, baseLogger.Named("svc.feed")),
		Ledger:     ledger.New(cfg.Ledger.Path),
		Reports:    reports,
		ExtractDir: cfg.Dirs.SaveDir,
	}, baseLogger.Named("pipeline"))

	switch cfg.Scheduler.Mode {
	case config.RunModeCron:
		sched := scheduler.NewScheduler(cfg.Scheduler.CronSchedule, pipe, baseLogger.Named("scheduler"))
		if err := sched.Start(); err != nil {
			baseLogger.Fatal("failed to start scheduler", zap.Error(err))
		}
		defer sched.Stop()

		<-ctx.Done()
		baseLogger.Info("shutdown signal received")
	default:
		if err := pipe.Run(ctx); err != nil {
			baseLogger.Fatal("feed update failed", zap.Error(err))
		}
	}
}

package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/internal/service/feed"
	"github.com/dsyryh/feedsync/pkg/clients/mailbox"
)

// MailClient retrieves the newest matching vendor archive.
type MailClient interface {
	FindAttachment(ctx context.Context) (archivePath, subject string, err error)
}

// ArchiveExtractor unpacks a downloaded archive.
type ArchiveExtractor interface {
	Extract(path, destDir string) ([]string, error)
}

// StockSource builds the normalized stock table from extracted files.
type StockSource interface {
	Extract(files []string) ([]models.StockRecord, error)
}

// PriceSource produces priced product rows; depending on the configured mode
// it may first propagate the stock table to an external system.
type PriceSource interface {
	Products(ctx context.Context, files []string, stock []models.StockRecord) ([]models.ProductRecord, error)
}

// Reconciler merges prices with stock and applies the business transforms.
type Reconciler interface {
	Reconcile(products []models.ProductRecord, stock []models.StockRecord) []models.ProductRecord
}

// Publisher pushes the final record set to the hosted feed.
type Publisher interface {
	Publish(ctx context.Context, records []models.ProductRecord) (feed.Result, error)
}

// Ledger gates and records completed runs.
type Ledger interface {
	IsProcessed(identity string) (bool, error)
	MarkProcessed(identity, fingerprint string) error
}

// ReportStore archives run outcomes. Optional.
type ReportStore interface {
	SaveRunReport(ctx context.Context, report models.RunReport) error
}

// Deps wires all collaborators into the orchestration pipeline.
type Deps struct {
	Mail       MailClient
	Archive    ArchiveExtractor
	Stock      StockSource
	Prices     PriceSource
	Reconciler Reconciler
	Publisher  Publisher
	Ledger     Ledger
	Reports    ReportStore
	ExtractDir string
}

// Pipeline implements the feed-update workflow: fetch, gate, extract,
// reconcile, publish, mark.
type Pipeline struct {
	mail       MailClient
	archive    ArchiveExtractor
	stock      StockSource
	prices     PriceSource
	reconciler Reconciler
	publisher  Publisher
	ledger     Ledger
	reports    ReportStore
	extractDir string
	now        func() time.Time
	logger     *zap.Logger
}

// New constructs the orchestration component.
func New(deps Deps, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		mail:       deps.Mail,
		archive:    deps.Archive,
		stock:      deps.Stock,
		prices:     deps.Prices,
		reconciler: deps.Reconciler,
		publisher:  deps.Publisher,
		ledger:     deps.Ledger,
		reports:    deps.Reports,
		extractDir: deps.ExtractDir,
		now:        time.Now,
		logger:     logger,
	}
}

// Run executes one complete feed update. The ledger is written only after
// every stage succeeded, so a failed run is retried from scratch by the next
// invocation; that is the system's only retry mechanism.
func (p *Pipeline) Run(ctx context.Context) error {
	startedAt := p.now()

	archivePath, subject, err := p.mail.FindAttachment(ctx)
	if err != nil {
		if errors.Is(err, mailbox.ErrNoMail) {
			p.logger.Info("no new vendor mail, nothing to do")
			return nil
		}
		return fmt.Errorf("find attachment: %w", err)
	}

	identity := filepath.Base(archivePath)
	if identity == "" || identity == "." {
		identity = subject
	}

	processed, err := p.ledger.IsProcessed(identity)
	if err != nil {
		return fmt.Errorf("check ledger: %w", err)
	}
	if processed {
		p.logger.Info("archive already processed, skipping", zap.String("identity", identity))
		return nil
	}

	files, err := p.archive.Extract(archivePath, p.extractDir)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	p.logger.Info("archive extracted", zap.String("archive", identity), zap.Int("files", len(files)))

	stock, err := p.stock.Extract(files)
	if err != nil {
		return fmt.Errorf("extract stock: %w", err)
	}

	products, err := p.prices.Products(ctx, files, stock)
	if err != nil {
		return fmt.Errorf("load price source: %w", err)
	}

	final := p.reconciler.Reconcile(products, stock)

	result, err := p.publisher.Publish(ctx, final)
	if err != nil {
		return fmt.Errorf("publish feed: %w", err)
	}

	if err := p.ledger.MarkProcessed(identity, fileFingerprint(archivePath)); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	p.logger.Info("run completed",
		zap.String("identity", identity),
		zap.Int("records", len(final)),
		zap.String("result", string(result)))

	p.saveReport(ctx, models.RunReport{
		Subject:    subject,
		Archive:    identity,
		Products:   len(final),
		Outcome:    string(result),
		StartedAt:  startedAt,
		FinishedAt: p.now(),
	})

	return nil
}

// saveReport archives the run outcome best-effort; a failing archive never
// fails a run that already published.
func (p *Pipeline) saveReport(ctx context.Context, report models.RunReport) {
	if p.reports == nil {
		return
	}
	if err := p.reports.SaveRunReport(ctx, report); err != nil {
		p.logger.Warn("failed to archive run report", zap.Error(err))
	}
}

// fileFingerprint returns the first 8 hex characters of the archive's MD5,
// matching the ledger entries written by earlier versions of this tool.
func fileFingerprint(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "unknown"
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(h.Sum(nil))[:8]
}

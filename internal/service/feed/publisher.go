package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/pkg/clients/github"
)

// Result describes the outcome of a publish attempt.
type Result string

const (
	// ResultPublished means the remote feed was created or updated.
	ResultPublished Result = "published"
	// ResultUnchanged means the freshly generated feed matched the remote
	// content byte for byte, so no write was performed.
	ResultUnchanged Result = "unchanged"
	// ResultSkipped means no content store is configured; artifacts were
	// written locally only.
	ResultSkipped Result = "skipped"
)

// ContentStore is the hosted-file-store collaborator: content get/put with
// optimistic revision tracking.
type ContentStore interface {
	GetContent(ctx context.Context, path string) (data []byte, revision string, err error)
	PutContent(ctx context.Context, path string, data []byte, message, revision string) error
}

// Publisher serializes the reconciled record set and pushes it to the content
// store when it differs from what is already published.
type Publisher struct {
	store      ContentStore
	remotePath string
	resultDir  string
	csvHeader  bool
	now        func() time.Time
	logger     *zap.Logger
}

// NewPublisher wires a feed publisher. store may be nil; publishing is then
// skipped and only local artifacts are produced.
func NewPublisher(store ContentStore, remotePath, resultDir string, csvHeader bool, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		store:      store,
		remotePath: remotePath,
		resultDir:  resultDir,
		csvHeader:  csvHeader,
		now:        time.Now,
		logger:     logger,
	}
}

// Publish writes both artifacts into the result directory and performs a
// single best-effort remote publish of the CSV. A stale revision surfaces as
// a conflict error; nothing is retried within the run.
func (p *Publisher) Publish(ctx context.Context, records []models.ProductRecord) (Result, error) {
	csvData, err := EncodeCSV(records, p.csvHeader)
	if err != nil {
		return "", err
	}
	xlsxData, err := EncodeXLSX(records)
	if err != nil {
		return "", err
	}

	if err := p.writeLocal(csvData, xlsxData); err != nil {
		return "", err
	}

	if p.store == nil {
		p.logger.Warn("content store not configured, feed written locally only")
		return ResultSkipped, nil
	}

	// The remote copy is stored without the BOM; comparison normalizes both
	// sides so a BOM difference alone never triggers an upload.
	payload := StripBOM(csvData)

	existing, revision, err := p.store.GetContent(ctx, p.remotePath)
	switch {
	case errors.Is(err, github.ErrNotFound):
		revision = ""
	case err != nil:
		return "", fmt.Errorf("fetch current feed: %w", err)
	default:
		if bytes.Equal(StripBOM(existing), payload) {
			p.logger.Info("feed unchanged, skipping upload")
			return ResultUnchanged, nil
		}
		p.logger.Info("feed changed",
			zap.Int("old_bytes", len(existing)), zap.Int("new_bytes", len(payload)))
	}

	message := fmt.Sprintf("Feed update %s", p.now().Format("2006-01-02 15:04"))
	if err := p.store.PutContent(ctx, p.remotePath, payload, message, revision); err != nil {
		return "", fmt.Errorf("upload feed: %w", err)
	}

	p.logger.Info("feed published", zap.String("path", p.remotePath), zap.Int("records", len(records)))
	return ResultPublished, nil
}

func (p *Publisher) writeLocal(csvData, xlsxData []byte) error {
	if err := os.MkdirAll(p.resultDir, 0o755); err != nil {
		return fmt.Errorf("create result dir: %w", err)
	}

	base := filepath.Base(p.remotePath)
	csvPath := filepath.Join(p.resultDir, base)
	xlsxPath := filepath.Join(p.resultDir, strings.TrimSuffix(base, filepath.Ext(base))+".xlsx")

	if err := os.WriteFile(csvPath, csvData, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	if err := os.WriteFile(xlsxPath, xlsxData, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", xlsxPath, err)
	}

	p.logger.Info("local artifacts written", zap.String("csv", csvPath), zap.String("xlsx", xlsxPath))
	return nil
}

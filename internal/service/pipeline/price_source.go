package pipeline

import (
	"context"
	"fmt"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/internal/service/extract"
	"github.com/dsyryh/feedsync/internal/service/sheetsync"
)

// ArchivePriceSource reads prices out of the price list shipped inside the
// vendor archive. The stock table plays no role here.
type ArchivePriceSource struct {
	normalizer *extract.PriceNormalizer
}

// NewArchivePriceSource wraps the archive price normalizer.
func NewArchivePriceSource(normalizer *extract.PriceNormalizer) *ArchivePriceSource {
	return &ArchivePriceSource{normalizer: normalizer}
}

// Products implements PriceSource.
func (s *ArchivePriceSource) Products(_ context.Context, files []string, _ []models.StockRecord) ([]models.ProductRecord, error) {
	return s.normalizer.Normalize(files)
}

// SheetPriceSource pushes the stock table into the externally-owned
// spreadsheet and then reads the sheet back as the priced source of truth.
type SheetPriceSource struct {
	svc *sheetsync.Service
}

// NewSheetPriceSource wraps the sheet-sync service.
func NewSheetPriceSource(svc *sheetsync.Service) *SheetPriceSource {
	return &SheetPriceSource{svc: svc}
}

// Products implements PriceSource.
func (s *SheetPriceSource) Products(ctx context.Context, _ []string, stock []models.StockRecord) ([]models.ProductRecord, error) {
	if err := s.svc.PushStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("push stock to sheet: %w", err)
	}
	return s.svc.PricedProducts(ctx)
}

package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

// Reconciler merges priced products with the stock table and applies the
// business transforms: markup, multiplicity, stock cap and zero-stock
// exclusion.
type Reconciler struct {
	markup             decimal.Decimal
	stockCap           int
	multiplicityPhrase string
	logger             *zap.Logger
}

// New builds a reconciler. multiplicityPhrase is matched case-insensitively
// against product names; matching products get multiplicity 2, the rest 1.
func New(markup decimal.Decimal, stockCap int, multiplicityPhrase string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		markup:             markup,
		stockCap:           stockCap,
		multiplicityPhrase: strings.ToLower(multiplicityPhrase),
		logger:             logger,
	}
}

// Reconcile left-joins products to stock on article (missing stock counts as
// zero), applies the price markup rounded to two places half away from zero,
// collapses duplicate articles to the first-seen row with quantities summed,
// caps quantities and drops rows left with zero stock. Output keeps the
// first-seen article order of the input so published diffs stay meaningful.
func (r *Reconciler) Reconcile(products []models.ProductRecord, stock []models.StockRecord) []models.ProductRecord {
	onHand := make(map[string]int, len(stock))
	for _, s := range stock {
		onHand[s.Article] = s.Quantity
	}

	index := make(map[string]int, len(products))
	merged := make([]models.ProductRecord, 0, len(products))

	for _, p := range products {
		quantity := onHand[p.Article]

		if i, seen := index[p.Article]; seen {
			// Duplicate source rows keep the first name/brand/price and only
			// contribute stock.
			merged[i].Quantity += quantity
			continue
		}

		record := models.ProductRecord{
			Article:      p.Article,
			Name:         p.Name,
			Brand:        p.Brand,
			Price:        p.Price.Mul(r.markup).Round(2),
			Quantity:     quantity,
			Multiplicity: r.multiplicity(p.Name),
		}
		index[p.Article] = len(merged)
		merged = append(merged, record)
	}

	final := make([]models.ProductRecord, 0, len(merged))
	for _, rec := range merged {
		if rec.Quantity <= 0 {
			continue
		}
		if rec.Quantity > r.stockCap {
			rec.Quantity = r.stockCap
		}
		final = append(final, rec)
	}

	r.logger.Info("reconciled feed",
		zap.Int("priced", len(products)),
		zap.Int("stocked", len(stock)),
		zap.Int("published", len(final)))

	return final
}

func (r *Reconciler) multiplicity(name string) int {
	if r.multiplicityPhrase != "" && strings.Contains(strings.ToLower(name), r.multiplicityPhrase) {
		return 2
	}
	return 1
}

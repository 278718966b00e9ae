package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/internal/service/tables"
)

// The vendor price list has a fixed shape: a five-row preamble followed by
// wide rows where only three columns matter.
const (
	priceFileToken   = "прайс"
	pricePreambleLen = 5
	priceArticleCol  = 0
	priceNameCol     = 5
	pricePriceCol    = 13
)

// PriceNormalizer turns the vendor price list into partial product records
// (article, name, brand, price); quantity and multiplicity are filled in
// during reconciliation.
type PriceNormalizer struct {
	reader TableReader
	brand  string
	logger *zap.Logger
}

// NewPriceNormalizer wires a price normalizer instance. brand is the constant
// brand literal stamped onto every row of this feed.
func NewPriceNormalizer(reader TableReader, brand string, logger *zap.Logger) *PriceNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceNormalizer{reader: reader, brand: brand, logger: logger}
}

// Normalize locates the price workbook and extracts normalized product rows.
// Unlike stock, a missing price list leaves nothing to publish, so locate
// failures propagate.
func (n *PriceNormalizer) Normalize(files []string) ([]models.ProductRecord, error) {
	path, err := tables.Locate(files, priceFileToken)
	if err != nil {
		return nil, err
	}

	table, err := n.reader.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load price table: %w", err)
	}

	n.logger.Info("loading price list", zap.String("file", path))

	var products []models.ProductRecord
	for i, row := range table.Rows {
		if i < pricePreambleLen {
			continue
		}
		if priceArticleCol >= len(row) || pricePriceCol >= len(row) {
			continue
		}

		article := strings.TrimSpace(row[priceArticleCol])
		if article == "" || strings.EqualFold(article, "nan") {
			continue
		}

		price, err := ParsePrice(row[pricePriceCol])
		if err != nil {
			continue
		}

		name := ""
		if priceNameCol < len(row) {
			name = CleanName(article, row[priceNameCol])
		}

		products = append(products, models.ProductRecord{
			Article: article,
			Name:    name,
			Brand:   n.brand,
			Price:   price,
		})
	}

	n.logger.Info("price list loaded", zap.Int("rows", len(products)))
	return products, nil
}

// CleanName strips the article-number prefix vendors duplicate into the name
// field and removes the quote and comma characters that would break the
// published CSV.
func CleanName(article, raw string) string {
	name := strings.TrimSpace(raw)
	if strings.HasPrefix(name, article) {
		name = strings.TrimSpace(name[len(article):])
	}
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, ",", "")
	return name
}

// ParsePrice parses a price cell, tolerating comma decimal separators and
// embedded spaces. Empty and negative values are rejected.
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse price %q: %w", raw, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative price %q", raw)
	}
	return price, nil
}

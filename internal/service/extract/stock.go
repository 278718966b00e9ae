package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/internal/service/tables"
)

// stockFileToken identifies the inventory workbook inside the archive.
const stockFileToken = "остатки"

// TableReader loads a workbook into a raw table.
type TableReader interface {
	ReadTable(path string) (*models.RawTable, error)
}

// StockExtractor produces the normalized stock table from the files extracted
// out of a vendor archive.
type StockExtractor struct {
	reader  TableReader
	aliases models.ColumnAliases
	logger  *zap.Logger
}

// NewStockExtractor wires a stock extractor instance.
func NewStockExtractor(reader TableReader, aliases models.ColumnAliases, logger *zap.Logger) *StockExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockExtractor{reader: reader, aliases: aliases, logger: logger}
}

// Extract locates the stock workbook, finds its header row, resolves the
// article and quantity columns and builds the deduplicated stock table.
// A missing stock file is a recoverable no-data condition: the extractor
// returns an empty table and logs a warning. An ambiguous file match is an
// error; guessing between inventory exports is worse than failing.
func (e *StockExtractor) Extract(files []string) ([]models.StockRecord, error) {
	path, err := tables.Locate(files, stockFileToken)
	if err != nil {
		if errors.Is(err, tables.ErrNoMatch) {
			e.logger.Warn("stock file not found, continuing with empty stock table")
			return nil, nil
		}
		return nil, err
	}

	table, err := e.reader.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("load stock table: %w", err)
	}

	headerRow, err := tables.FindHeaderRow(table.Rows, e.articleLabel(), tables.DefaultHeaderProbe)
	if err != nil {
		e.logger.Warn("stock header row not found, continuing with empty stock table",
			zap.String("file", path), zap.Error(err))
		return nil, nil
	}

	columns := tables.Resolve(table.Rows[headerRow], e.aliases)
	articleCol, okArticle := columns[models.RoleArticle]
	quantityCol, okQuantity := columns[models.RoleQuantity]
	if !okArticle || !okQuantity {
		e.logger.Warn("stock columns not resolved, continuing with empty stock table",
			zap.String("file", path),
			zap.Bool("article", okArticle), zap.Bool("quantity", okQuantity))
		return nil, nil
	}

	e.logger.Info("loading stock",
		zap.String("file", path), zap.Int("header_row", headerRow),
		zap.Int("article_col", articleCol), zap.Int("quantity_col", quantityCol))

	index := make(map[string]int)
	var records []models.StockRecord

	for _, row := range table.Rows[headerRow+1:] {
		if articleCol >= len(row) {
			continue
		}

		article := strings.TrimSpace(row[articleCol])
		if article == "" || strings.EqualFold(article, "nan") {
			continue
		}

		quantity := 0
		if quantityCol < len(row) {
			quantity = coerceQuantity(row[quantityCol])
		}

		if i, seen := index[article]; seen {
			records[i].Quantity += quantity
			continue
		}
		index[article] = len(records)
		records = append(records, models.StockRecord{Article: article, Quantity: quantity})
	}

	e.logger.Info("stock table loaded", zap.Int("articles", len(records)))
	return records, nil
}

func (e *StockExtractor) articleLabel() string {
	if aliases := e.aliases[models.RoleArticle]; len(aliases) > 0 {
		return aliases[0]
	}
	return "артикул"
}

// coerceQuantity parses an on-hand figure, defaulting to zero on anything
// non-numeric and clamping negatives (some exports mark shortages that way).
func coerceQuantity(raw string) int {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value < 0 {
		return 0
	}
	return int(value)
}

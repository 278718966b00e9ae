package sheetsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dsyryh/feedsync/internal/domain/models"
	"github.com/dsyryh/feedsync/internal/repository/sheets"
	"github.com/dsyryh/feedsync/internal/service/extract"
	"github.com/dsyryh/feedsync/internal/service/tables"
)

// ErrColumnsUnresolved indicates the external spreadsheet changed shape and
// the required columns could not be found.
var ErrColumnsUnresolved = errors.New("sheet columns unresolved")

// Service drives the spreadsheet price-source mode: stock quantities are
// pushed into the externally-owned sheet, which is then re-read as the priced
// source of truth.
type Service struct {
	repo      sheets.Repository
	sheetName string
	aliases   models.ColumnAliases
	brand     string
	logger    *zap.Logger
}

// NewService wires a sheet-sync service instance. brand is the fallback when
// the sheet has no brand column.
func NewService(repo sheets.Repository, sheetName string, aliases models.ColumnAliases, brand string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		sheetName: sheetName,
		aliases:   aliases,
		brand:     brand,
		logger:    logger,
	}
}

// PushStock writes the extracted stock quantities into the sheet's quantity
// column, row by row. Articles absent from the stock table are set to zero so
// stale figures never survive an update.
func (s *Service) PushStock(ctx context.Context, stock []models.StockRecord) error {
	table, headerRow, columns, err := s.readResolved(ctx, models.RoleArticle, models.RoleQuantity)
	if err != nil {
		return err
	}

	onHand := make(map[string]int, len(stock))
	for _, rec := range stock {
		onHand[rec.Article] = rec.Quantity
	}

	articleCol := columns[models.RoleArticle]
	quantityCol := columns[models.RoleQuantity]
	updated := 0

	for i := headerRow + 1; i < len(table.Rows); i++ {
		row := table.Rows[i]
		if articleCol >= len(row) {
			continue
		}
		article := strings.TrimSpace(row[articleCol])
		if article == "" {
			continue
		}

		if err := s.repo.UpdateCell(ctx, s.sheetName, i, quantityCol, onHand[article]); err != nil {
			return fmt.Errorf("push stock for %s: %w", article, err)
		}
		updated++
	}

	s.logger.Info("stock pushed to sheet", zap.String("sheet", s.sheetName), zap.Int("rows", updated))
	return nil
}

// PricedProducts re-reads the sheet and builds normalized product rows from
// it, applying the same article trimming and name cleanup as the archive
// price source.
func (s *Service) PricedProducts(ctx context.Context) ([]models.ProductRecord, error) {
	table, headerRow, columns, err := s.readResolved(ctx, models.RoleArticle, models.RolePrice)
	if err != nil {
		return nil, err
	}

	articleCol := columns[models.RoleArticle]
	priceCol := columns[models.RolePrice]
	nameCol, hasName := columns[models.RoleName]
	brandCol, hasBrand := columns[models.RoleBrand]

	var products []models.ProductRecord
	for _, row := range table.Rows[headerRow+1:] {
		if articleCol >= len(row) || priceCol >= len(row) {
			continue
		}

		article := strings.TrimSpace(row[articleCol])
		if article == "" {
			continue
		}

		price, err := extract.ParsePrice(row[priceCol])
		if err != nil {
			continue
		}

		name := ""
		if hasName && nameCol < len(row) {
			name = extract.CleanName(article, row[nameCol])
		}

		brand := s.brand
		if hasBrand && brandCol < len(row) {
			if b := strings.TrimSpace(row[brandCol]); b != "" {
				brand = b
			}
		}

		products = append(products, models.ProductRecord{
			Article: article,
			Name:    name,
			Brand:   brand,
			Price:   price,
		})
	}

	s.logger.Info("sheet price source loaded", zap.String("sheet", s.sheetName), zap.Int("rows", len(products)))
	return products, nil
}

func (s *Service) readResolved(ctx context.Context, required ...models.Role) (*models.RawTable, int, map[models.Role]int, error) {
	table, err := s.repo.ReadSheet(ctx, s.sheetName)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("read sheet %s: %w", s.sheetName, err)
	}

	label := "артикул"
	if aliases := s.aliases[models.RoleArticle]; len(aliases) > 0 {
		label = aliases[0]
	}

	headerRow, err := tables.FindHeaderRow(table.Rows, label, tables.DefaultHeaderProbe)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("sheet %s: %w", s.sheetName, err)
	}

	columns := tables.Resolve(table.Rows[headerRow], s.aliases)
	for _, role := range required {
		if _, ok := columns[role]; !ok {
			return nil, 0, nil, fmt.Errorf("%w: sheet %s is missing a %s column", ErrColumnsUnresolved, s.sheetName, role)
		}
	}

	return table, headerRow, columns, nil
}

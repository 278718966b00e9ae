package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/dsyryh/feedsync/internal/config"
	"github.com/dsyryh/feedsync/internal/domain/models"
)

// Repository defines the spreadsheet-service operations the pipeline needs:
// read a whole sheet as a raw table and update single cells.
type Repository interface {
	ReadSheet(ctx context.Context, sheetName string) (*models.RawTable, error)
	UpdateCell(ctx context.Context, sheetName string, rowIndex, colIndex int, value interface{}) error
}

// GoogleSheetRepository implements the Repository interface using the official
// Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// ReadSheet fetches every populated cell of the named sheet as strings.
func (r *GoogleSheetRepository) ReadSheet(ctx context.Context, sheetName string) (*models.RawTable, error) {
	if sheetName == "" {
		return nil, fmt.Errorf("sheetName must not be empty")
	}

	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, sheetName).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = fmt.Sprint(cell)
		}
		rows[i] = cells
	}

	return &models.RawTable{Source: sheetName, Rows: rows}, nil
}

// UpdateCell overwrites a single cell; rowIndex and colIndex are zero-based.
func (r *GoogleSheetRepository) UpdateCell(ctx context.Context, sheetName string, rowIndex, colIndex int, value interface{}) error {
	if sheetName == "" {
		return fmt.Errorf("sheetName must not be empty")
	}
	if rowIndex < 0 || colIndex < 0 {
		return fmt.Errorf("cell indices must be non-negative")
	}

	cellRange := fmt.Sprintf("%s!%s%d", sheetName, columnName(colIndex), rowIndex+1)
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	call := r.service.Spreadsheets.Values.Update(r.spreadsheetID, cellRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update cell %s: %w", cellRange, err)
	}

	r.logger.Debug("cell updated", zap.String("range", cellRange))
	return nil
}

// columnName converts a zero-based column index to A1 notation (0 -> A,
// 25 -> Z, 26 -> AA).
func columnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}

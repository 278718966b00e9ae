package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

// utf8BOM prefixes the CSV artifact; the downstream consumer expects it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// feedHeaders are the localized column labels, in published column order.
var feedHeaders = []string{"№ детали", "Наименование", "Марка", "Цена", "Количество", "Партионность"}

// EncodeCSV serializes the record set into the CSV artifact: UTF-8 with BOM,
// comma separator, prices with two places and a comma decimal separator.
// The header row is optional; the default feed ships without one.
func EncodeCSV(records []models.ProductRecord, withHeader bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if withHeader {
		if err := w.Write(feedHeaders); err != nil {
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	for _, rec := range records {
		price := strings.Replace(rec.Price.StringFixed(2), ".", ",", 1)
		row := []string{
			rec.Article,
			rec.Name,
			rec.Brand,
			price,
			strconv.Itoa(rec.Quantity),
			strconv.Itoa(rec.Multiplicity),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row for %s: %w", rec.Article, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// EncodeXLSX serializes the record set into the spreadsheet artifact. Unlike
// the CSV, it always carries the header row and keeps prices numeric with a
// literal decimal point.
func EncodeXLSX(records []models.ProductRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)

	for col, header := range feedHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header %s: %w", header, err)
		}
	}

	for i, rec := range records {
		row := i + 2
		price, _ := rec.Price.Round(2).Float64()
		values := []interface{}{rec.Article, rec.Name, rec.Brand, price, rec.Quantity, rec.Multiplicity}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// StripBOM removes a leading byte-order marker so remote and local artifacts
// compare equal regardless of who wrote the BOM.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

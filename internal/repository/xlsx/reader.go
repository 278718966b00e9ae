package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

// Reader loads .xlsx workbooks into raw tables.
type Reader struct{}

// NewReader builds a workbook reader.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTable reads the first sheet of the workbook at path. Cell values come
// back as formatted strings; rows keep their trailing cells trimmed the way
// the underlying library returns them.
func (r *Reader) ReadTable(path string) (*models.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, path, err)
	}

	return &models.RawTable{Source: path, Rows: rows}, nil
}

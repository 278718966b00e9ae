package feed

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

func sampleRecords() []models.ProductRecord {
	return []models.ProductRecord{
		{
			Article:      "A1",
			Name:         "Диск тормозной передний",
			Brand:        "AVTOPRIBOR",
			Price:        decimal.RequireFromString("120"),
			Quantity:     5,
			Multiplicity: 2,
		},
		{
			Article:      "B2",
			Name:         "Фильтр",
			Brand:        "AVTOPRIBOR",
			Price:        decimal.RequireFromString("33.5"),
			Quantity:     1,
			Multiplicity: 1,
		},
	}
}

func TestEncodeCSVWithoutHeader(t *testing.T) {
	t.Parallel()

	got, err := EncodeCSV(sampleRecords(), false)
	if err != nil {
		t.Fatalf("EncodeCSV returned error: %v", err)
	}

	want := "\xEF\xBB\xBF" +
		"A1,Диск тормозной передний,AVTOPRIBOR,\"120,00\",5,2\n" +
		"B2,Фильтр,AVTOPRIBOR,\"33,50\",1,1\n"
	if string(got) != want {
		t.Fatalf("unexpected csv:\n%q\nwant:\n%q", got, want)
	}
}

func TestEncodeCSVWithHeader(t *testing.T) {
	t.Parallel()

	got, err := EncodeCSV(sampleRecords()[:1], true)
	if err != nil {
		t.Fatalf("EncodeCSV returned error: %v", err)
	}

	want := "\xEF\xBB\xBF" +
		"№ детали,Наименование,Марка,Цена,Количество,Партионность\n" +
		"A1,Диск тормозной передний,AVTOPRIBOR,\"120,00\",5,2\n"
	if string(got) != want {
		t.Fatalf("unexpected csv:\n%q\nwant:\n%q", got, want)
	}
}

func TestEncodeCSVStartsWithBOM(t *testing.T) {
	t.Parallel()

	got, err := EncodeCSV(nil, false)
	if err != nil {
		t.Fatalf("EncodeCSV returned error: %v", err)
	}
	if !bytes.HasPrefix(got, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatalf("csv must start with UTF-8 BOM, got % x", got[:min(len(got), 3)])
	}
	if len(StripBOM(got)) != 0 {
		t.Fatalf("empty record set must encode to BOM only, got %q", got)
	}
}

func TestEncodeXLSXRoundTrips(t *testing.T) {
	t.Parallel()

	data, err := EncodeXLSX(sampleRecords())
	if err != nil {
		t.Fatalf("EncodeXLSX returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open generated workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read generated workbook: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}

	wantHeader := []string{"№ детали", "Наименование", "Марка", "Цена", "Количество", "Партионность"}
	for i, label := range wantHeader {
		if rows[0][i] != label {
			t.Fatalf("header col %d = %q, want %q", i, rows[0][i], label)
		}
	}

	if rows[1][0] != "A1" || rows[1][3] != "120" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[2][3] != "33.5" {
		t.Fatalf("price must keep a literal decimal point, got %q", rows[2][3])
	}
}

func TestStripBOM(t *testing.T) {
	t.Parallel()

	if got := StripBOM([]byte("\xEF\xBB\xBFabc")); string(got) != "abc" {
		t.Fatalf("expected BOM stripped, got %q", got)
	}
	if got := StripBOM([]byte("abc")); string(got) != "abc" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

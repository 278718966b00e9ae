package tables

import (
	"errors"
	"testing"
)

func TestLocateSingleMatch(t *testing.T) {
	t.Parallel()

	files := []string{
		"downloads/Прайс-лист.xlsx",
		"downloads/Остатки и доступность товаров.xlsx",
		"downloads/readme.txt",
	}

	got, err := Locate(files, "остатки")
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if got != "downloads/Остатки и доступность товаров.xlsx" {
		t.Fatalf("unexpected file: %s", got)
	}
}

func TestLocateNoMatch(t *testing.T) {
	t.Parallel()

	_, err := Locate([]string{"downloads/Прайс-лист.xlsx"}, "остатки")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestLocateExtensionFiltered(t *testing.T) {
	t.Parallel()

	_, err := Locate([]string{"downloads/остатки.csv"}, "остатки")
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch for wrong extension, got %v", err)
	}
}

func TestLocateAmbiguous(t *testing.T) {
	t.Parallel()

	files := []string{
		"downloads/остатки-январь.xlsx",
		"downloads/остатки-февраль.xlsx",
	}

	_, err := Locate(files, "остатки")
	if !errors.Is(err, ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestFindHeaderRowFirstRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Артикул", "В наличии"},
		{"A1", "5"},
	}

	idx, err := FindHeaderRow(rows, "артикул", DefaultHeaderProbe)
	if err != nil {
		t.Fatalf("FindHeaderRow returned error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected row 0, got %d", idx)
	}
}

func TestFindHeaderRowAtProbeEdge(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 16)
	for i := range rows {
		rows[i] = []string{"Остатки и доступность товаров", ""}
	}
	rows[14] = []string{"Артикул", "Сейчас"}

	idx, err := FindHeaderRow(rows, "артикул", 15)
	if err != nil {
		t.Fatalf("FindHeaderRow returned error: %v", err)
	}
	if idx != 14 {
		t.Fatalf("expected row 14, got %d", idx)
	}
}

func TestFindHeaderRowBeyondProbe(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 20)
	for i := range rows {
		rows[i] = []string{"преамбула"}
	}
	rows[15] = []string{"Артикул"}

	_, err := FindHeaderRow(rows, "артикул", 15)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("expected ErrHeaderNotFound, got %v", err)
	}
}

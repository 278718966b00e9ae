package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func defaultReconciler() *Reconciler {
	return New(dec("1.2"), 10, "диск тормозной", nil)
}

func TestReconcileMarkupRounding(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Фильтр", Brand: "AVTOPRIBOR", Price: dec("100.00")},
		{Article: "B2", Name: "Фильтр", Brand: "AVTOPRIBOR", Price: dec("99.995")},
	}
	stock := []models.StockRecord{{Article: "A1", Quantity: 1}, {Article: "B2", Quantity: 1}}

	got := New(dec("1.2"), 10, "", nil).Reconcile(products[:1], stock)
	if len(got) != 1 || !got[0].Price.Equal(dec("120.00")) {
		t.Fatalf("expected 120.00 at factor 1.2, got %+v", got)
	}

	// Rounding is half away from zero: 99.995 pins to 100.00 at factor 1.
	got = New(dec("1"), 10, "", nil).Reconcile(products[1:], stock)
	if len(got) != 1 || !got[0].Price.Equal(dec("100.00")) {
		t.Fatalf("expected 100.00 at factor 1, got %+v", got)
	}
}

func TestReconcileMultiplicityRule(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Тормозной диск передний", Price: dec("10")},
		{Article: "B2", Name: "Диск тормозной задний", Price: dec("10")},
		{Article: "C3", Name: "Фильтр масляный", Price: dec("10")},
	}
	stock := []models.StockRecord{
		{Article: "A1", Quantity: 1},
		{Article: "B2", Quantity: 1},
		{Article: "C3", Quantity: 1},
	}

	got := defaultReconciler().Reconcile(products, stock)
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}

	// The trigger phrase is an exact substring match, word order included.
	want := map[string]int{"A1": 1, "B2": 2, "C3": 1}
	for _, rec := range got {
		if rec.Multiplicity != want[rec.Article] {
			t.Fatalf("article %s: multiplicity %d, want %d", rec.Article, rec.Multiplicity, want[rec.Article])
		}
	}
}

func TestReconcileStockCapAndZeroFilter(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Много", Price: dec("10")},
		{Article: "B2", Name: "Ноль", Price: dec("10")},
	}
	stock := []models.StockRecord{
		{Article: "A1", Quantity: 37},
		{Article: "B2", Quantity: 0},
	}

	got := defaultReconciler().Reconcile(products, stock)
	if len(got) != 1 {
		t.Fatalf("zero-stock row must be excluded, got %+v", got)
	}
	if got[0].Article != "A1" || got[0].Quantity != 10 {
		t.Fatalf("expected A1 capped to 10, got %+v", got[0])
	}
}

func TestReconcileLeftJoinDefault(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Есть на складе", Price: dec("10")},
		{Article: "X9", Name: "Нет на складе", Price: dec("10")},
	}
	stock := []models.StockRecord{{Article: "A1", Quantity: 2}}

	got := defaultReconciler().Reconcile(products, stock)
	if len(got) != 1 || got[0].Article != "A1" {
		t.Fatalf("article without stock must default to zero and be filtered, got %+v", got)
	}
}

func TestReconcileDuplicateArticlesCollapse(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Первое имя", Price: dec("10")},
		{Article: "B2", Name: "Другая деталь", Price: dec("20")},
		{Article: "A1", Name: "Второе имя", Price: dec("99")},
	}
	stock := []models.StockRecord{
		{Article: "A1", Quantity: 3},
		{Article: "B2", Quantity: 1},
	}

	got := defaultReconciler().Reconcile(products, stock)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	// First-seen order and first-seen attributes win; duplicate rows sum
	// their joined quantities.
	if got[0].Article != "A1" || got[0].Name != "Первое имя" || !got[0].Price.Equal(dec("12")) {
		t.Fatalf("unexpected collapsed record: %+v", got[0])
	}
	if got[0].Quantity != 6 {
		t.Fatalf("expected summed quantity 6, got %d", got[0].Quantity)
	}
	if got[1].Article != "B2" {
		t.Fatalf("expected B2 second, got %+v", got[1])
	}
}

func TestReconcileEndToEndScenario(t *testing.T) {
	t.Parallel()

	products := []models.ProductRecord{
		{Article: "A1", Name: "Name A", Brand: "Brand", Price: dec("10.00")},
		{Article: "A2", Name: "Name B", Brand: "Brand", Price: dec("20.00")},
	}
	stock := []models.StockRecord{
		{Article: "A1", Quantity: 5},
		{Article: "A2", Quantity: 0},
	}

	got := New(dec("1.2"), 10, "диск тормозной", nil).Reconcile(products, stock)
	if len(got) != 1 {
		t.Fatalf("expected exactly A1, got %+v", got)
	}
	rec := got[0]
	if rec.Article != "A1" || rec.Name != "Name A" || rec.Brand != "Brand" ||
		!rec.Price.Equal(dec("12.00")) || rec.Quantity != 5 || rec.Multiplicity != 1 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

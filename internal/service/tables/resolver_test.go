package tables

import (
	"testing"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

func TestResolveOrderStable(t *testing.T) {
	t.Parallel()

	labels := []string{"Артикул", "В наличии"}
	aliases := models.ColumnAliases{
		models.RoleArticle:  {"артикул"},
		models.RoleQuantity: {"в наличии", "сейчас"},
	}

	got := Resolve(labels, aliases)

	if got[models.RoleArticle] != 0 {
		t.Fatalf("article resolved to column %d, want 0", got[models.RoleArticle])
	}
	if got[models.RoleQuantity] != 1 {
		t.Fatalf("quantity resolved to column %d, want 1", got[models.RoleQuantity])
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	t.Parallel()

	labels := []string{"Доступно на складе", "Сейчас в наличии"}
	aliases := models.ColumnAliases{
		models.RoleQuantity: {"в наличии", "сейчас", "доступно"},
	}

	got := Resolve(labels, aliases)

	// Column order decides, not alias order.
	if got[models.RoleQuantity] != 0 {
		t.Fatalf("quantity resolved to column %d, want 0", got[models.RoleQuantity])
	}
}

func TestResolveMissingRoleAbsent(t *testing.T) {
	t.Parallel()

	labels := []string{"Артикул", "Комментарий"}
	got := Resolve(labels, models.DefaultAliases())

	if _, ok := got[models.RoleQuantity]; ok {
		t.Fatalf("quantity should be unresolved, got column %d", got[models.RoleQuantity])
	}
	if col, ok := got[models.RoleArticle]; !ok || col != 0 {
		t.Fatalf("article should resolve to column 0, got %v (ok=%v)", col, ok)
	}
}

package models

import "strings"

// RawTable holds an untyped rectangular slice of a spreadsheet as read from an
// .xlsx file or from the Google Sheets API. Rows are not guaranteed to have
// equal length; trailing empty cells may be absent.
type RawTable struct {
	Source string
	Rows   [][]string
}

// Role names a semantic column of the feed.
type Role string

const (
	RoleArticle      Role = "article"
	RoleQuantity     Role = "quantity"
	RolePrice        Role = "price"
	RoleName         Role = "name"
	RoleBrand        Role = "brand"
	RoleMultiplicity Role = "multiplicity"
)

// ColumnAliases maps a semantic role to the case-insensitive substrings that
// identify its header cell. The sets are configuration, not code: vendors
// rename columns between exports.
type ColumnAliases map[Role][]string

// DefaultAliases covers the header variants seen in vendor exports so far.
func DefaultAliases() ColumnAliases {
	return ColumnAliases{
		RoleArticle:  {"артикул"},
		RoleQuantity: {"в наличии", "сейчас", "доступно"},
		RolePrice:    {"цена"},
		RoleName:     {"наименование"},
		RoleBrand:    {"марка", "бренд"},
	}
}

// Matches reports whether the (already lower-cased) header label belongs to
// the role.
func (a ColumnAliases) Matches(role Role, label string) bool {
	for _, alias := range a[role] {
		if strings.Contains(label, alias) {
			return true
		}
	}
	return false
}

package table

import "strings"

// NormalizeName trims whitespace, lowercases and replaces spaces with
// underscores: " Monthly Charges " becomes "monthly_charges".
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// ColumnCount pairs a column name (or a label value) with a count.
type ColumnCount struct {
	Name  string
	Count int
}

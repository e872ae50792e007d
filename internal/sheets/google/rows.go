package google

import (
	"fmt"
	"strings"

	"finflow/internal/core"
)

// Row is one ledger line: date, type, category, amount, amount in words,
// description and transaction id, in columns A to G.
type Row struct {
	Date        string
	Type        string
	Category    string
	Amount      int64
	Words       string
	Description string
	ID          string
}

func headerRow() []any {
	return []any{"Ngày", "Loại", "Danh mục", "Số tiền", "Bằng chữ", "Mô tả", "ID"}
}

// RowFromTransaction formats t for the sheet. Category may be nil.
func RowFromTransaction(t core.Transaction) Row {
	r := Row{
		Date:        t.Date.Format("2006-01-02"),
		Type:        t.Type.Label(),
		Amount:      t.Amount.Dong,
		Words:       t.Amount.Words(),
		Description: t.Description,
		ID:          t.ID,
	}
	if t.Category != nil {
		r.Category = t.Category.Name
	}
	return r
}

// Values orders the fields as the sheet columns. A leading apostrophe
// keeps USER_ENTERED from reading free text as a formula.
func (r Row) Values() []any {
	return []any{r.Date, r.Type, r.Category, r.Amount, r.Words, literal(r.Description), r.ID}
}

func literal(s string) string {
	if s != "" && strings.ContainsAny(s[:1], "=+-@") {
		return "'" + s
	}
	return s
}

// rowOf finds id in a single-column value matrix and returns its 1-based
// row number, or 0.
func rowOf(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}

package core

import (
	"sort"
	"time"
)

// MonthStats holds the income/expense totals of a month.
type MonthStats struct {
	Period  Period
	Income  Money
	Expense Money
	Balance Money
}

// NewMonthStats derives the balance from income and expense.
func NewMonthStats(p Period, income, expense Money) MonthStats {
	return MonthStats{Period: p, Income: income, Expense: expense, Balance: income.Sub(expense)}
}

// DailyStat is one bar of the monthly chart.
type DailyStat struct {
	Day     int    // 1-31, used as chart label
	Date    string // YYYY-MM-DD
	Income  Money
	Expense Money
}

// CategoryTotal is the amount booked against one category in a month.
type CategoryTotal struct {
	Category Category
	Amount   Money
	Share    float64 // 0-100, relative to the type total
}

// BuildDailyStats returns one entry per day of the month, zero days
// included. Transactions outside the month are ignored; anything that is
// not income counts as expense.
func BuildDailyStats(p Period, txs []Transaction) []DailyStat {
	days := p.Days()
	out := make([]DailyStat, days)
	for i := range out {
		d := time.Date(p.Year, time.Month(p.Month), i+1, 0, 0, 0, 0, time.UTC)
		out[i] = DailyStat{Day: i + 1, Date: d.Format("2006-01-02")}
	}
	for _, t := range txs {
		if t.Date.IsZero() || t.Date.Year() != p.Year || int(t.Date.Month()) != p.Month {
			continue
		}
		entry := &out[t.Date.Day()-1]
		if t.IsIncome() {
			entry.Income = entry.Income.Add(t.Amount)
		} else {
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}
	return out
}

// SumTransactions totals income and expense over txs.
func SumTransactions(p Period, txs []Transaction) MonthStats {
	var income, expense Money
	for _, t := range txs {
		if t.IsIncome() {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	return NewMonthStats(p, income, expense)
}

// BuildCategoryTotals groups transactions of the given type by category,
// largest amount first.
func BuildCategoryTotals(txs []Transaction, typ TransactionType) []CategoryTotal {
	byID := map[string]*CategoryTotal{}
	var order []string
	var total Money
	for _, t := range txs {
		if t.IsIncome() != (typ == Income) {
			continue
		}
		ct, ok := byID[t.CategoryID]
		if !ok {
			ct = &CategoryTotal{Category: Category{ID: t.CategoryID, Type: typ}}
			if t.Category != nil {
				ct.Category = *t.Category
			}
			byID[t.CategoryID] = ct
			order = append(order, t.CategoryID)
		}
		ct.Amount = ct.Amount.Add(t.Amount)
		total = total.Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, id := range order {
		ct := *byID[id]
		if total.Dong > 0 {
			ct.Share = float64(ct.Amount.Dong) * 100 / float64(total.Dong)
		}
		out = append(out, ct)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount.Dong > out[j].Amount.Dong })
	return out
}

// MaxDaily returns the largest single-day income or expense, used to scale
// chart bars. It is at least 1.
func MaxDaily(days []DailyStat) int64 {
	var max int64 = 1
	for _, d := range days {
		if d.Income.Dong > max {
			max = d.Income.Dong
		}
		if d.Expense.Dong > max {
			max = d.Expense.Dong
		}
	}
	return max
}

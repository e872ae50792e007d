package core

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	maxDescriptionLen  = 200
	maxCategoryNameLen = 50
)

type (
	TransactionType string

	Category struct {
		ID        string
		Name      string
		Type      TransactionType
		Icon      string
		Color     string // #rrggbb, optional
		CreatedAt time.Time
	}

	Transaction struct {
		ID          string
		Amount      Money
		Description string
		CategoryID  string
		Category    *Category // populated by list queries
		Type        TransactionType
		Date        time.Time
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidColor        = errors.New("invalid color")
	ErrInvalidPeriod       = errors.New("invalid period")
	ErrEmptyName           = errors.New("empty category name")
	ErrEmptyCategory       = errors.New("empty category")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrNameTooLong         = errors.New("category name too long (max 50 characters)")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryInUse       = errors.New("category has transactions")
	ErrAmountOverflow      = errors.New("amount total overflows int64")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseTransactionType accepts "income" and "expense"; anything else is
// rejected.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

// Label returns the Vietnamese label shown in the UI.
func (t TransactionType) Label() string {
	if t == Income {
		return "Thu nhập"
	}
	return "Chi tiêu"
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len([]rune(name)) > maxCategoryNameLen {
		return ErrNameTooLong
	}
	if err := c.Type.Validate(); err != nil {
		return err
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len([]rune(t.Description)) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ApplyCategory copies the category's type onto the transaction. A
// category without a type books as an expense.
func (t *Transaction) ApplyCategory(c Category) {
	t.CategoryID = c.ID
	t.Type = c.Type
	if t.Type == "" {
		t.Type = Expense
	}
	cc := c
	t.Category = &cc
}

// IsIncome reports whether the transaction counts toward income. Every
// other type counts as an expense in aggregates.
func (t Transaction) IsIncome() bool {
	return t.Type == Income
}

// DefaultCategories returns the categories seeded into an empty store.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Ăn uống", Type: Expense, Icon: "Utensils", Color: "#ef4444"},
		{Name: "Di chuyển", Type: Expense, Icon: "Car", Color: "#3b82f6"},
		{Name: "Mua sắm", Type: Expense, Icon: "ShoppingBag", Color: "#f59e0b"},
		{Name: "Nhà cửa", Type: Expense, Icon: "Home", Color: "#10b981"},
		{Name: "Giải trí", Type: Expense, Icon: "Film", Color: "#8b5cf6"},
		{Name: "Sức khỏe", Type: Expense, Icon: "Heart", Color: "#ec4899"},
		{Name: "Lương", Type: Income, Icon: "Wallet", Color: "#22c55e"},
		{Name: "Đầu tư", Type: Income, Icon: "TrendingUp", Color: "#0ea5e9"},
		{Name: "Khác", Type: Expense, Icon: "MoreHorizontal", Color: "#64748b"},
	}
}

package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction amounts follow a sign convention: positive = income,
// negative = expense. Zero is tolerated but never expected.
type Transaction struct {
	ID           int64           `json:"id"`
	CompanyID    int64           `json:"company_id"`
	Date         time.Time       `json:"date"` // calendar date, midnight UTC
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Source       string          `json:"source"` // MANUAL | IMPORTED | SCANNED
	CategoryID   *int64          `json:"category_id"`
	CategoryName *string         `json:"category_name"` // joined on read, never written
	CreatedAt    time.Time       `json:"created_at"`
}

const (
	SourceManual   = "MANUAL"
	SourceImported = "IMPORTED"
	SourceScanned  = "SCANNED"
)

type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Category is consumed only by P&L aggregation; transactions never require one.
type Category struct {
	ID        int64        `json:"id"`
	CompanyID *int64       `json:"company_id"` // nil = global category
	Name      string       `json:"name"`
	Type      CategoryType `json:"type"`
}

// CategorySum is one row of the grouped aggregation used by reporting.
// Name falls back to "Uncategorized" for transactions without a category.
type CategorySum struct {
	Name   string
	Amount decimal.Decimal
}

package usecases

import (
	"context"
	"log"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/interfaces"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// CategoryBreakdown is one row of the P&L breakdown. Amount is always the
// absolute value; Type records which side of the ledger the raw sum fell on.
type CategoryBreakdown struct {
	CategoryName string                `json:"categoryName"`
	Amount       decimal.Decimal       `json:"amount"`
	Type         entities.CategoryType `json:"type"`
}

type PnLReport struct {
	Period       string              `json:"period"`
	StartDate    string              `json:"startDate"`
	EndDate      string              `json:"endDate"`
	TotalIncome  decimal.Decimal     `json:"totalIncome"`
	TotalExpense decimal.Decimal     `json:"totalExpense"`
	NetProfit    decimal.Decimal     `json:"netProfit"`
	Breakdown    []CategoryBreakdown `json:"breakdown"`
}

// ReportingUsecase computes cached profit-and-loss reports. Expenses are
// stored negative; reports display them positive.
type ReportingUsecase struct {
	txns  interfaces.TransactionStore
	cache *ReportCache
	clock interfaces.Clock
}

func NewReportingUsecase(txns interfaces.TransactionStore, cache *ReportCache, clock interfaces.Clock) *ReportingUsecase {
	return &ReportingUsecase{txns: txns, cache: cache, clock: clock}
}

// PnL resolves the period, serves from cache when possible, and computes
// and populates on a miss. The cache key is the literal period string.
func (uc *ReportingUsecase) PnL(ctx context.Context, companyID int64, period string) (*PnLReport, error) {
	if cached, ok := uc.cache.Get(companyID, period); ok {
		return cached, nil
	}

	start, end := uc.resolveDateRange(period)

	income, err := uc.txns.SumPositive(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	expenseRaw, err := uc.txns.SumNegative(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	expense := expenseRaw.Abs()

	sums, err := uc.txns.SumByCategory(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	breakdown := make([]CategoryBreakdown, 0, len(sums))
	for _, cs := range sums {
		rowType := entities.CategoryIncome
		if cs.Amount.IsNegative() {
			rowType = entities.CategoryExpense
		}
		breakdown = append(breakdown, CategoryBreakdown{
			CategoryName: cs.Name,
			Amount:       cs.Amount.Abs(),
			Type:         rowType,
		})
	}

	report := &PnLReport{
		Period:       period,
		StartDate:    start.Format(dateLayout),
		EndDate:      end.Format(dateLayout),
		TotalIncome:  income,
		TotalExpense: expense,
		NetProfit:    income.Sub(expense),
		Breakdown:    breakdown,
	}
	uc.cache.Put(companyID, period, report)
	return report, nil
}

// EvictCompany drops every cached report for the tenant. Called after any
// ledger write, before the HTTP response goes out.
func (uc *ReportingUsecase) EvictCompany(companyID int64) {
	uc.cache.EvictCompany(companyID)
}

// resolveDateRange maps a period key to an inclusive [start, end] range:
// "month", "quarter", "year", or a specific "YYYY-MM". Anything else warns
// and falls back to the current month.
func (uc *ReportingUsecase) resolveDateRange(period string) (time.Time, time.Time) {
	today := uc.clock.Now()

	switch period {
	case "month":
		return monthRange(today.Year(), today.Month())
	case "quarter":
		quarterStartMonth := time.Month((int(today.Month())-1)/3*3 + 1)
		start := time.Date(today.Year(), quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, -1)
	case "year":
		start := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(today.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		if parsed, err := time.Parse("2006-01", period); err == nil {
			return monthRange(parsed.Year(), parsed.Month())
		}
		log.Printf("reporting: unknown period %q, defaulting to current month", period)
		return monthRange(today.Year(), today.Month())
	}
}

func monthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

package repository

import (
	"context"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const txnColumns = `t.id, t.company_id, t.date, t.amount::text, t.description, t.source,
	t.category_id, c.name, t.created_at`

const txnFrom = ` FROM transactions t LEFT JOIN categories c ON t.category_id = c.id `

func scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	var t entities.Transaction
	var amount string
	err := row.Scan(&t.ID, &t.CompanyID, &t.Date, &amount, &t.Description,
		&t.Source, &t.CategoryID, &t.CategoryName, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByCompany returns the company's transactions, newest first by date.
func (r *TransactionRepository) ListByCompany(ctx context.Context, companyID int64) ([]entities.Transaction, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+txnColumns+txnFrom+"WHERE t.company_id = $1 ORDER BY t.date DESC, t.id DESC",
		companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := []entities.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

func (r *TransactionRepository) Create(ctx context.Context, txn *entities.Transaction) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO transactions (company_id, date, amount, description, source, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, txn.CompanyID, txn.Date, txn.Amount.String(), txn.Description, txn.Source, txn.CategoryID).
		Scan(&txn.ID, &txn.CreatedAt)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx,
		"SELECT "+txnColumns+txnFrom+"WHERE t.id = $1", id))
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	return err
}

func (r *TransactionRepository) sumWhere(ctx context.Context, cond string, companyID int64, start, end time.Time) (decimal.Decimal, error) {
	var sum string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text FROM transactions
		WHERE company_id = $1 AND date >= $2 AND date <= $3 AND `+cond,
		companyID, start, end).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(sum)
}

// SumPositive sums income (amount > 0) over the inclusive date range.
// Returns zero, not null, on empty input.
func (r *TransactionRepository) SumPositive(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "amount > 0", companyID, start, end)
}

// SumNegative sums expenses (amount < 0) over the inclusive date range.
// The result is negative; callers take the absolute value for display.
func (r *TransactionRepository) SumNegative(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error) {
	return r.sumWhere(ctx, "amount < 0", companyID, start, end)
}

// SumByCategory groups amounts by category name, NULL categories collapsing
// into "Uncategorized", ordered by descending sum.
func (r *TransactionRepository) SumByCategory(ctx context.Context, companyID int64, start, end time.Time) ([]entities.CategorySum, error) {
	rows, err := r.db.Query(ctx, `
		SELECT COALESCE(c.name, 'Uncategorized'), COALESCE(SUM(t.amount), 0)::text
		FROM transactions t LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.company_id = $1 AND t.date >= $2 AND t.date <= $3
		GROUP BY c.name
		ORDER BY SUM(t.amount) DESC
	`, companyID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := []entities.CategorySum{}
	for rows.Next() {
		var cs entities.CategorySum
		var amount string
		if err := rows.Scan(&cs.Name, &amount); err != nil {
			return nil, err
		}
		if cs.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		sums = append(sums, cs)
	}
	return sums, rows.Err()
}

func (r *TransactionRepository) Count(ctx context.Context, companyID int64, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE company_id = $1 AND date >= $2 AND date <= $3
	`, companyID, start, end).Scan(&count)
	return count, err
}

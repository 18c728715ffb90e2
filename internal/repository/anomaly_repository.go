package repository

import (
	"context"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AnomalyRepository struct {
	db *pgxpool.Pool
}

func NewAnomalyRepository(db *pgxpool.Pool) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

func scanAnomaly(row pgx.Row) (*entities.Anomaly, error) {
	var a entities.Anomaly
	var amount string
	err := row.Scan(&a.ID, &a.CompanyID, &a.TransactionID, &amount, &a.DetectedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	a.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnomalyRepository) Insert(ctx context.Context, a *entities.Anomaly) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO anomalies (company_id, transaction_id, amount, detected_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, a.CompanyID, a.TransactionID, a.Amount.String(), a.DetectedAt).Scan(&a.ID)
}

// ListByCompany returns the company's anomalies, newest first.
func (r *AnomalyRepository) ListByCompany(ctx context.Context, companyID int64) ([]entities.Anomaly, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, company_id, transaction_id, amount::text, detected_at
		FROM anomalies WHERE company_id = $1 ORDER BY detected_at DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	anomalies := []entities.Anomaly{}
	for rows.Next() {
		a, err := scanAnomaly(rows)
		if err != nil {
			return nil, err
		}
		anomalies = append(anomalies, *a)
	}
	return anomalies, rows.Err()
}

func (r *AnomalyRepository) FindByID(ctx context.Context, id int64) (*entities.Anomaly, error) {
	return scanAnomaly(r.db.QueryRow(ctx,
		"SELECT id, company_id, transaction_id, amount::text, detected_at FROM anomalies WHERE id = $1", id))
}

func (r *AnomalyRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM anomalies WHERE id = $1", id)
	return err
}

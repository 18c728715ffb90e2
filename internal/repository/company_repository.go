package repository

import (
	"context"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyRepository struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func scanCompany(row pgx.Row) (*entities.Company, error) {
	var c entities.Company
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Currency, &c.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) FindByID(ctx context.Context, id int64) (*entities.Company, error) {
	return scanCompany(r.db.QueryRow(ctx,
		"SELECT id, owner_id, name, currency, created_at FROM companies WHERE id = $1", id))
}

// FindFirstByOwner returns the owner's primary company — handlers bind the
// first one at token-issue time.
func (r *CompanyRepository) FindFirstByOwner(ctx context.Context, ownerID int64) (*entities.Company, error) {
	return scanCompany(r.db.QueryRow(ctx,
		"SELECT id, owner_id, name, currency, created_at FROM companies WHERE owner_id = $1 ORDER BY id LIMIT 1",
		ownerID))
}

func (r *CompanyRepository) ExistsWithOwner(ctx context.Context, companyID, ownerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM companies WHERE id = $1 AND owner_id = $2)",
		companyID, ownerID).Scan(&exists)
	return exists, err
}

package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Users Table (emails stored lower-cased; see repository.UserRepository)
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'USER',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			subscription_status VARCHAR(20) NOT NULL DEFAULT 'FREE',
			trial_started_at TIMESTAMPTZ,
			subscription_expires_at TIMESTAMPTZ,
			external_subscription_ref VARCHAR(255),
			ai_chats_used_today INT NOT NULL DEFAULT 0,
			ai_chat_reset_date DATE
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// Companies Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS companies (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			currency VARCHAR(10) NOT NULL DEFAULT 'USD',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create companies table: %w", err)
	}

	// Categories Table (company_id NULL = global category)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS categories (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT REFERENCES companies(id),
			name VARCHAR(100) NOT NULL,
			type VARCHAR(20) NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}

	// Transactions Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL REFERENCES companies(id),
			date DATE NOT NULL,
			amount NUMERIC(19, 4) NOT NULL,
			description VARCHAR(512) NOT NULL,
			source VARCHAR(50) NOT NULL DEFAULT 'MANUAL',
			category_id BIGINT REFERENCES categories(id),
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	if _, err = p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_txn_company ON transactions (company_id)"); err != nil {
		return err
	}
	if _, err = p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_txn_date ON transactions (company_id, date)"); err != nil {
		return err
	}

	// Anomalies Table (appended by the anomaly result consumer)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS anomalies (
			id BIGSERIAL PRIMARY KEY,
			company_id BIGINT NOT NULL,
			transaction_id BIGINT,
			amount NUMERIC(19, 4) NOT NULL,
			detected_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create anomalies table: %w", err)
	}
	if _, err = p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_anomaly_company ON anomalies (company_id)"); err != nil {
		return err
	}
	if _, err = p.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_anomaly_detected_at ON anomalies (detected_at)"); err != nil {
		return err
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}

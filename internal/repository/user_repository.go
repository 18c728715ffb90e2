package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, role, created_at,
	subscription_status, trial_started_at, subscription_expires_at,
	COALESCE(external_subscription_ref, ''), ai_chats_used_today, ai_chat_reset_date`

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt,
		&user.SubscriptionStatus, &user.TrialStartedAt, &user.SubscriptionExpiresAt,
		&user.ExternalSubscriptionRef, &user.AIChatsUsedToday, &user.AIChatResetDate)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1",
		strings.ToLower(email)))
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// CreateWithCompany inserts the user and their default company in one
// transaction. Both IDs and creation timestamps are filled on return.
func (r *UserRepository) CreateWithCompany(ctx context.Context, user *entities.User, company *entities.Company) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, subscription_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, strings.ToLower(user.Email), user.PasswordHash, user.Role, user.SubscriptionStatus).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entities.ErrEmailTaken
		}
		return err
	}
	user.Email = strings.ToLower(user.Email)

	company.OwnerID = user.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO companies (owner_id, name, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, company.OwnerID, company.Name, company.Currency).
		Scan(&company.ID, &company.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) Save(ctx context.Context, user *entities.User) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET
			password_hash = $2,
			role = $3,
			subscription_status = $4,
			trial_started_at = $5,
			subscription_expires_at = $6,
			external_subscription_ref = NULLIF($7, ''),
			ai_chats_used_today = $8,
			ai_chat_reset_date = $9
		WHERE id = $1
	`, user.ID, user.PasswordHash, user.Role, user.SubscriptionStatus,
		user.TrialStartedAt, user.SubscriptionExpiresAt, user.ExternalSubscriptionRef,
		user.AIChatsUsedToday, user.AIChatResetDate)
	return err
}

// UpdateWithLock serializes concurrent mutations of one user via a row
// lock: load FOR UPDATE, apply fn, persist, commit. fn returning an error
// aborts the transaction and the error is passed through unchanged.
func (r *UserRepository) UpdateWithLock(ctx context.Context, email string, fn func(*entities.User) error) (*entities.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	user, err := scanUser(tx.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1 FOR UPDATE",
		strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entities.ErrNotFound
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET
			subscription_status = $2,
			trial_started_at = $3,
			subscription_expires_at = $4,
			external_subscription_ref = NULLIF($5, ''),
			ai_chats_used_today = $6,
			ai_chat_reset_date = $7
		WHERE id = $1
	`, user.ID, user.SubscriptionStatus, user.TrialStartedAt, user.SubscriptionExpiresAt,
		user.ExternalSubscriptionRef, user.AIChatsUsedToday, user.AIChatResetDate)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

package interfaces

import (
	"context"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/shopspring/decimal"
)

// Clock abstracts wall-clock access so trial/quota/expiry logic is
// deterministic under test. That logic reads the time only through a Clock;
// the HTTP error envelope stamps its timestamp from time.Now directly.
type Clock interface {
	Now() time.Time
}

// UserStore is the credential store. FindByEmail returns (nil, nil) when
// the user does not exist.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	// CreateWithCompany inserts the user and their default company in a
	// single transaction, filling both IDs. Returns entities.ErrEmailTaken
	// on a duplicate email.
	CreateWithCompany(ctx context.Context, user *entities.User, company *entities.Company) error
	Save(ctx context.Context, user *entities.User) error
	// UpdateWithLock loads the user's row under a row lock, applies fn and
	// persists the result in one transaction. fn returning an error aborts
	// without writing; the error is passed through.
	UpdateWithLock(ctx context.Context, email string, fn func(*entities.User) error) (*entities.User, error)
}

// CompanyStore is the tenant store.
type CompanyStore interface {
	FindByID(ctx context.Context, id int64) (*entities.Company, error)
	FindFirstByOwner(ctx context.Context, ownerID int64) (*entities.Company, error)
	ExistsWithOwner(ctx context.Context, companyID, ownerID int64) (bool, error)
}

// TransactionStore is the ledger store. Aggregations return zero decimals,
// never null, on empty input; date ranges are inclusive on both ends.
type TransactionStore interface {
	ListByCompany(ctx context.Context, companyID int64) ([]entities.Transaction, error)
	Create(ctx context.Context, txn *entities.Transaction) error
	FindByID(ctx context.Context, id int64) (*entities.Transaction, error)
	Delete(ctx context.Context, id int64) error
	SumPositive(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error)
	SumNegative(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error)
	SumByCategory(ctx context.Context, companyID int64, start, end time.Time) ([]entities.CategorySum, error)
	Count(ctx context.Context, companyID int64, start, end time.Time) (int64, error)
}

// AnomalyStore persists detected anomalies per tenant.
type AnomalyStore interface {
	Insert(ctx context.Context, a *entities.Anomaly) error
	ListByCompany(ctx context.Context, companyID int64) ([]entities.Anomaly, error)
	FindByID(ctx context.Context, id int64) (*entities.Anomaly, error)
	Delete(ctx context.Context, id int64) error
}

// EventPublisher publishes JSON events to the broker. Publishing is
// best-effort: implementations log and swallow failures.
type EventPublisher interface {
	PublishNewTransactions(companyID int64, txnIDs []int64)
}

// RevocationStore is an ephemeral KV holding revoked tokens until their
// natural expiry. IsRevoked fails open: a store outage reports false.
type RevocationStore interface {
	Revoke(ctx context.Context, token string, ttl time.Duration)
	IsRevoked(ctx context.Context, token string) bool
}

// Mailer hands a rendered message to the external mail relay.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

package usecases

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Vedant-1724/Ai-Finance-Assistant/internal/entities"
	"github.com/shopspring/decimal"
)

// fixedClock returns a preset instant and can be advanced by tests.
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeUserStore is an in-memory UserStore. UpdateWithLock serializes via a
// mutex, mirroring the row lock of the real store.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[string]*entities.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*entities.User), nextID: 1}
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) CreateWithCompany(ctx context.Context, user *entities.User, company *entities.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, exists := s.users[email]; exists {
		return entities.ErrEmailTaken
	}
	user.ID = s.nextID
	user.Email = email
	s.nextID++
	company.ID = s.nextID
	company.OwnerID = user.ID
	s.nextID++
	copied := *user
	s.users[email] = &copied
	return nil
}

func (s *fakeUserStore) Save(ctx context.Context, user *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[strings.ToLower(user.Email)] = &copied
	return nil
}

func (s *fakeUserStore) UpdateWithLock(ctx context.Context, email string, fn func(*entities.User) error) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil, entities.ErrNotFound
	}
	working := *user
	if err := fn(&working); err != nil {
		return nil, err
	}
	s.users[strings.ToLower(email)] = &working
	copied := working
	return &copied, nil
}

func (s *fakeUserStore) put(user *entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == 0 {
		user.ID = s.nextID
		s.nextID++
	}
	s.users[strings.ToLower(user.Email)] = user
}

// fakeCompanyStore is an in-memory CompanyStore.
type fakeCompanyStore struct {
	mu        sync.Mutex
	companies map[int64]*entities.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{companies: make(map[int64]*entities.Company)}
}

func (s *fakeCompanyStore) put(c *entities.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[c.ID] = c
}

func (s *fakeCompanyStore) FindByID(ctx context.Context, id int64) (*entities.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *fakeCompanyStore) FindFirstByOwner(ctx context.Context, ownerID int64) (*entities.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first *entities.Company
	for _, c := range s.companies {
		if c.OwnerID == ownerID && (first == nil || c.ID < first.ID) {
			first = c
		}
	}
	if first == nil {
		return nil, nil
	}
	copied := *first
	return &copied, nil
}

func (s *fakeCompanyStore) ExistsWithOwner(ctx context.Context, companyID, ownerID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.companies[companyID]
	return ok && c.OwnerID == ownerID, nil
}

// fakeTransactionStore is an in-memory TransactionStore backing the
// reporting and write-path tests.
type fakeTransactionStore struct {
	mu     sync.Mutex
	txns   map[int64]*entities.Transaction
	nextID int64
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{txns: make(map[int64]*entities.Transaction), nextID: 1}
}

func (s *fakeTransactionStore) ListByCompany(ctx context.Context, companyID int64) ([]entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.Transaction{}
	for _, t := range s.txns {
		if t.CompanyID == companyID {
			out = append(out, *t)
		}
	}
	// newest first
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Date.After(out[i].Date) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) Create(ctx context.Context, txn *entities.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn.ID = s.nextID
	s.nextID++
	txn.CreatedAt = time.Now()
	copied := *txn
	s.txns[txn.ID] = &copied
	return nil
}

func (s *fakeTransactionStore) FindByID(ctx context.Context, id int64) (*entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTransactionStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.txns, id)
	return nil
}

func (s *fakeTransactionStore) inRange(t *entities.Transaction, companyID int64, start, end time.Time) bool {
	return t.CompanyID == companyID && !t.Date.Before(start) && !t.Date.After(end)
}

func (s *fakeTransactionStore) SumPositive(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, t := range s.txns {
		if s.inRange(t, companyID, start, end) && t.Amount.IsPositive() {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (s *fakeTransactionStore) SumNegative(ctx context.Context, companyID int64, start, end time.Time) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, t := range s.txns {
		if s.inRange(t, companyID, start, end) && t.Amount.IsNegative() {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (s *fakeTransactionStore) SumByCategory(ctx context.Context, companyID int64, start, end time.Time) ([]entities.CategorySum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byName := map[string]decimal.Decimal{}
	for _, t := range s.txns {
		if !s.inRange(t, companyID, start, end) {
			continue
		}
		name := "Uncategorized"
		if t.CategoryName != nil {
			name = *t.CategoryName
		}
		byName[name] = byName[name].Add(t.Amount)
	}
	out := []entities.CategorySum{}
	for name, sum := range byName {
		out = append(out, entities.CategorySum{Name: name, Amount: sum})
	}
	// descending by sum
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Amount.GreaterThan(out[i].Amount) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakeTransactionStore) Count(ctx context.Context, companyID int64, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, t := range s.txns {
		if s.inRange(t, companyID, start, end) {
			count++
		}
	}
	return count, nil
}

// fakeAnomalyStore records inserts for the anomaly loop tests.
type fakeAnomalyStore struct {
	mu        sync.Mutex
	anomalies []entities.Anomaly
	nextID    int64
	failNext  bool
}

func newFakeAnomalyStore() *fakeAnomalyStore {
	return &fakeAnomalyStore{nextID: 1}
}

func (s *fakeAnomalyStore) Insert(ctx context.Context, a *entities.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return context.DeadlineExceeded
	}
	a.ID = s.nextID
	s.nextID++
	s.anomalies = append(s.anomalies, *a)
	return nil
}

func (s *fakeAnomalyStore) ListByCompany(ctx context.Context, companyID int64) ([]entities.Anomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.Anomaly{}
	for _, a := range s.anomalies {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAnomalyStore) FindByID(ctx context.Context, id int64) (*entities.Anomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.anomalies {
		if a.ID == id {
			copied := a
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAnomalyStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.anomalies {
		if a.ID == id {
			s.anomalies = append(s.anomalies[:i], s.anomalies[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events [][]int64
}

func (p *fakePublisher) PublishNewTransactions(companyID int64, txnIDs []int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, txnIDs)
}

// fakeMailer records sent messages.
type fakeMailer struct {
	mu       sync.Mutex
	sent     []string // recipients
	subjects []string
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// fakeRevocation is an in-memory RevocationStore with real TTL handling
// against an injected clock.
type fakeRevocation struct {
	mu      sync.Mutex
	clock   *fixedClock
	revoked map[string]time.Time // expiry instants
}

func newFakeRevocation(clock *fixedClock) *fakeRevocation {
	return &fakeRevocation{clock: clock, revoked: make(map[string]time.Time)}
}

func (r *fakeRevocation) Revoke(ctx context.Context, token string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[token] = r.clock.Now().Add(ttl)
}

func (r *fakeRevocation) IsRevoked(ctx context.Context, token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry, ok := r.revoked[token]
	if !ok {
		return false
	}
	if r.clock.Now().After(expiry) {
		delete(r.revoked, token)
		return false
	}
	return true
}

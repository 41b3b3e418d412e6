package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockStore is an in-memory ledger store. It implements domain.TxManager and
// hands out repository views over the same data. WithinTx snapshots the data
// and restores it if fn fails, so atomicity can be asserted in tests.
type MockStore struct {
	mu sync.Mutex

	Users        map[uuid.UUID]*domain.User
	Accounts     map[uuid.UUID]*domain.Account
	Transactions map[uuid.UUID]*domain.Transaction
	Budgets      map[uuid.UUID]*domain.Budget

	// FailOn makes the named method return the error, e.g. "AdjustAccountBalance"
	FailOn map[string]error

	// Commits counts successful WithinTx calls
	Commits int

	Now func() time.Time
}

// NewMockStore creates an empty MockStore
func NewMockStore() *MockStore {
	return &MockStore{
		Users:        make(map[uuid.UUID]*domain.User),
		Accounts:     make(map[uuid.UUID]*domain.Account),
		Transactions: make(map[uuid.UUID]*domain.Transaction),
		Budgets:      make(map[uuid.UUID]*domain.Budget),
		FailOn:       make(map[string]error),
		Now:          time.Now,
	}
}

func (s *MockStore) fail(method string) error {
	if err, ok := s.FailOn[method]; ok {
		return err
	}
	return nil
}

// SetFailure makes method fail with err until cleared with a nil err
func (s *MockStore) SetFailure(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.FailOn, method)
		return
	}
	s.FailOn[method] = err
}

// --- seeding and inspection helpers ---

// AddUser stores a user, assigning an ID if missing
func (s *MockStore) AddUser(user *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	s.Users[u.ID] = &u
	return user
}

// AddAccount stores an account, assigning an ID if missing
func (s *MockStore) AddAccount(account *domain.Account) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	a := *account
	s.Accounts[a.ID] = &a
	return account
}

// AddTransaction stores a transaction, assigning an ID if missing
func (s *MockStore) AddTransaction(transaction *domain.Transaction) *domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	t := copyTransaction(transaction)
	s.Transactions[t.ID] = t
	return transaction
}

// AddBudget stores a budget, assigning an ID if missing
func (s *MockStore) AddBudget(budget *domain.Budget) *domain.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	b := copyBudget(budget)
	s.Budgets[b.ID] = b
	return budget
}

// Account returns a copy of the stored account, or nil
func (s *MockStore) Account(id uuid.UUID) *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Accounts[id]
	if !ok {
		return nil
	}
	c := *a
	return &c
}

// Transaction returns a copy of the stored transaction, or nil
func (s *MockStore) Transaction(id uuid.UUID) *domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Transactions[id]
	if !ok {
		return nil
	}
	return copyTransaction(t)
}

// Budget returns a copy of the stored budget, or nil
func (s *MockStore) Budget(id uuid.UUID) *domain.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Budgets[id]
	if !ok {
		return nil
	}
	return copyBudget(b)
}

// TransactionCount returns how many transactions are stored
func (s *MockStore) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Transactions)
}

// TransactionsByAccount returns copies of an account's transactions ordered by date
func (s *MockStore) TransactionsByAccount(accountID uuid.UUID) []*domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range s.Transactions {
		if t.AccountID == accountID {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func copyTransaction(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.Description != nil {
		v := *t.Description
		c.Description = &v
	}
	if t.ReceiptURL != nil {
		v := *t.ReceiptURL
		c.ReceiptURL = &v
	}
	if t.RecurringInterval != nil {
		v := *t.RecurringInterval
		c.RecurringInterval = &v
	}
	if t.NextRecurringDate != nil {
		v := *t.NextRecurringDate
		c.NextRecurringDate = &v
	}
	if t.LastProcessed != nil {
		v := *t.LastProcessed
		c.LastProcessed = &v
	}
	return &c
}

func copyBudget(b *domain.Budget) *domain.Budget {
	c := *b
	if b.LastAlertSent != nil {
		v := *b.LastAlertSent
		c.LastAlertSent = &v
	}
	return &c
}

type snapshot struct {
	accounts     map[uuid.UUID]*domain.Account
	transactions map[uuid.UUID]*domain.Transaction
	budgets      map[uuid.UUID]*domain.Budget
}

func (s *MockStore) snapshot() snapshot {
	snap := snapshot{
		accounts:     make(map[uuid.UUID]*domain.Account, len(s.Accounts)),
		transactions: make(map[uuid.UUID]*domain.Transaction, len(s.Transactions)),
		budgets:      make(map[uuid.UUID]*domain.Budget, len(s.Budgets)),
	}
	for id, a := range s.Accounts {
		c := *a
		snap.accounts[id] = &c
	}
	for id, t := range s.Transactions {
		snap.transactions[id] = copyTransaction(t)
	}
	for id, b := range s.Budgets {
		snap.budgets[id] = copyBudget(b)
	}
	return snap
}

func (s *MockStore) restore(snap snapshot) {
	s.Accounts = snap.accounts
	s.Transactions = snap.transactions
	s.Budgets = snap.budgets
}

// --- domain.TxManager ---

// WithinTx runs fn with the store locked and rolls back every write if fn fails
func (s *MockStore) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail("WithinTx"); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(&mockLedgerTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	if err := s.fail("Commit"); err != nil {
		s.restore(snap)
		return err
	}
	s.Commits++
	return nil
}

var _ domain.TxManager = (*MockStore)(nil)

// mockLedgerTx runs with MockStore.mu already held
type mockLedgerTx struct {
	s *MockStore
}

func (t *mockLedgerTx) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	if err := t.s.fail("CreateAccount"); err != nil {
		return nil, err
	}
	now := t.s.Now()
	a := *account
	a.ID = uuid.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	t.s.Accounts[a.ID] = &a
	out := a
	return &out, nil
}

func (t *mockLedgerTx) ClearDefaultAccounts(ctx context.Context, userID uuid.UUID) error {
	if err := t.s.fail("ClearDefaultAccounts"); err != nil {
		return err
	}
	for _, a := range t.s.Accounts {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}

func (t *mockLedgerTx) SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error) {
	if err := t.s.fail("SetDefaultAccount"); err != nil {
		return nil, err
	}
	a, ok := t.s.Accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	a.IsDefault = true
	a.UpdatedAt = t.s.Now()
	out := *a
	return &out, nil
}

func (t *mockLedgerTx) AdjustAccountBalance(ctx context.Context, userID, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	if err := t.s.fail("AdjustAccountBalance"); err != nil {
		return nil, err
	}
	a, ok := t.s.Accounts[accountID]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = t.s.Now()
	out := *a
	return &out, nil
}

func (t *mockLedgerTx) CreateTransaction(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	if err := t.s.fail("CreateTransaction"); err != nil {
		return nil, err
	}
	if a, ok := t.s.Accounts[transaction.AccountID]; !ok || a.UserID != transaction.UserID {
		return nil, fmt.Errorf("foreign key violation: %w", domain.ErrAccountNotFound)
	}
	now := t.s.Now()
	c := copyTransaction(transaction)
	c.ID = uuid.New()
	c.CreatedAt = now
	c.UpdatedAt = now
	t.s.Transactions[c.ID] = c
	return copyTransaction(c), nil
}

func (t *mockLedgerTx) GetTransactionForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	if err := t.s.fail("GetTransactionForUpdate"); err != nil {
		return nil, err
	}
	tx, ok := t.s.Transactions[id]
	if !ok || tx.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(tx), nil
}

func (t *mockLedgerTx) MarkRecurringProcessed(ctx context.Context, userID, id uuid.UUID, processedAt, nextRecurringDate time.Time) error {
	if err := t.s.fail("MarkRecurringProcessed"); err != nil {
		return err
	}
	tx, ok := t.s.Transactions[id]
	if !ok || tx.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	p, n := processedAt, nextRecurringDate
	tx.LastProcessed = &p
	tx.NextRecurringDate = &n
	tx.UpdatedAt = t.s.Now()
	return nil
}

func (t *mockLedgerTx) DeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Transaction, error) {
	if err := t.s.fail("DeleteTransactions"); err != nil {
		return nil, err
	}
	var deleted []*domain.Transaction
	for _, id := range ids {
		tx, ok := t.s.Transactions[id]
		if !ok || tx.UserID != userID {
			continue
		}
		deleted = append(deleted, copyTransaction(tx))
		delete(t.s.Transactions, id)
	}
	return deleted, nil
}

// --- repository views ---

// UserRepo returns a domain.UserRepository over the store
func (s *MockStore) UserRepo() *MockUserRepository { return &MockUserRepository{s: s} }

// AccountRepo returns a domain.AccountRepository over the store
func (s *MockStore) AccountRepo() *MockAccountRepository { return &MockAccountRepository{s: s} }

// TransactionRepo returns a domain.TransactionRepository over the store
func (s *MockStore) TransactionRepo() *MockTransactionRepository {
	return &MockTransactionRepository{s: s}
}

// BudgetRepo returns a domain.BudgetRepository over the store
func (s *MockStore) BudgetRepo() *MockBudgetRepository { return &MockBudgetRepository{s: s} }

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	s *MockStore
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u, ok := m.s.Users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.Users {
		if u.Auth0ID == auth0ID {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, imageURL *string) (*domain.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("CreateOrGetByAuth0ID"); err != nil {
		return nil, err
	}
	now := m.s.Now()
	for _, u := range m.s.Users {
		if u.Auth0ID == auth0ID {
			u.Email = email
			u.Name = name
			u.ImageURL = imageURL
			u.UpdatedAt = now
			c := *u
			return &c, nil
		}
	}
	u := &domain.User{
		ID:        uuid.New(),
		Auth0ID:   auth0ID,
		Email:     email,
		Name:      name,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.s.Users[u.ID] = u
	c := *u
	return &c, nil
}

var _ domain.UserRepository = (*MockUserRepository)(nil)

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	s *MockStore
}

func (m *MockAccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("GetAccountByID"); err != nil {
		return nil, err
	}
	a, ok := m.s.Accounts[id]
	if !ok || a.UserID != userID {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.AccountWithCount, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[uuid.UUID]int64)
	for _, t := range m.s.Transactions {
		counts[t.AccountID]++
	}
	var out []*domain.AccountWithCount
	for _, a := range m.s.Accounts {
		if a.UserID == userID {
			out = append(out, &domain.AccountWithCount{Account: *a, TransactionCount: counts[a.ID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockAccountRepository) GetDefault(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.Accounts {
		if a.UserID == userID && a.IsDefault {
			c := *a
			return &c, nil
		}
	}
	return nil, domain.ErrNoDefaultAccount
}

func (m *MockAccountRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, a := range m.s.Accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

var _ domain.AccountRepository = (*MockAccountRepository)(nil)

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	s *MockStore
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("GetTransactionByID"); err != nil {
		return nil, err
	}
	t, ok := m.s.Transactions[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrTransactionNotFound
	}
	return copyTransaction(t), nil
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]*domain.Transaction, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range m.s.Transactions {
		if t.UserID == userID && t.AccountID == accountID {
			out = append(out, copyTransaction(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *MockTransactionRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]domain.DueRecurring, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("ListDueRecurring"); err != nil {
		return nil, err
	}
	var out []domain.DueRecurring
	for _, t := range m.s.Transactions {
		if t.IsDue(now) {
			out = append(out, domain.DueRecurring{TransactionID: t.ID, UserID: t.UserID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TransactionID.String() < out[j].TransactionID.String() })
	return out, nil
}

func (m *MockTransactionRepository) SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("SumExpenses"); err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, t := range m.s.Transactions {
		if t.UserID != userID || t.AccountID != accountID || t.Type != domain.TransactionTypeExpense {
			continue
		}
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

var _ domain.TransactionRepository = (*MockTransactionRepository)(nil)

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	s *MockStore
}

func (m *MockBudgetRepository) Upsert(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Budget, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("UpsertBudget"); err != nil {
		return nil, err
	}
	now := m.s.Now()
	for _, b := range m.s.Budgets {
		if b.UserID == userID {
			b.Amount = amount
			b.UpdatedAt = now
			return copyBudget(b), nil
		}
	}
	b := &domain.Budget{ID: uuid.New(), UserID: userID, Amount: amount, CreatedAt: now, UpdatedAt: now}
	m.s.Budgets[b.ID] = b
	return copyBudget(b), nil
}

func (m *MockBudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Budget, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, b := range m.s.Budgets {
		if b.UserID == userID {
			return copyBudget(b), nil
		}
	}
	return nil, domain.ErrBudgetNotFound
}

func (m *MockBudgetRepository) ListAlertCandidates(ctx context.Context) ([]*domain.BudgetAlertCandidate, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("ListAlertCandidates"); err != nil {
		return nil, err
	}
	var out []*domain.BudgetAlertCandidate
	for _, b := range m.s.Budgets {
		u, ok := m.s.Users[b.UserID]
		if !ok {
			continue
		}
		c := &domain.BudgetAlertCandidate{
			Budget:    *copyBudget(b),
			UserEmail: u.Email,
			UserName:  u.Name,
		}
		for _, a := range m.s.Accounts {
			if a.UserID == b.UserID && a.IsDefault {
				id := a.ID
				c.DefaultAccountID = &id
				c.DefaultAccountName = a.Name
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Budget.CreatedAt.Before(out[j].Budget.CreatedAt) })
	return out, nil
}

func (m *MockBudgetRepository) ClaimAlert(ctx context.Context, budgetID uuid.UUID, alertedAt, monthStart, nextMonthStart time.Time) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.fail("ClaimAlert"); err != nil {
		return false, err
	}
	b, ok := m.s.Budgets[budgetID]
	if !ok {
		return false, nil
	}
	if b.LastAlertSent != nil && !b.LastAlertSent.Before(monthStart) && b.LastAlertSent.Before(nextMonthStart) {
		return false, nil
	}
	at := alertedAt
	b.LastAlertSent = &at
	b.UpdatedAt = at
	return true, nil
}

var _ domain.BudgetRepository = (*MockBudgetRepository)(nil)

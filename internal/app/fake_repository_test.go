package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corebank/settlement-service/internal/domain"
	"github.com/corebank/settlement-service/internal/store"
)

// fakeRepository is an in-memory store.Repository used by the orchestrator
// tests. Lookups serve what the test seeded; CommitSettlement records the
// commit for assertions.
type fakeRepository struct {
	accounts      map[string]*domain.Account
	tills         map[uuid.UUID]*domain.Account
	products      map[uuid.UUID]*domain.Product
	schedules     map[string]*domain.FeeSchedule
	holidays      map[string]bool
	waivers       []*domain.ChargeWaiver
	notifications []*domain.WithdrawalNotification
	transactions  []domain.Transaction

	commits   []*store.SettlementCommit
	commitErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accounts:  make(map[string]*domain.Account),
		tills:     make(map[uuid.UUID]*domain.Account),
		products:  make(map[uuid.UUID]*domain.Product),
		schedules: make(map[string]*domain.FeeSchedule),
		holidays:  make(map[string]bool),
	}
}

func scheduleKey(productID uuid.UUID, kind domain.OperationKind, holiday bool, legalForm domain.LegalForm) string {
	return fmt.Sprintf("%s|%s|%t|%s", productID, kind, holiday, legalForm)
}

func (f *fakeRepository) addSchedule(s *domain.FeeSchedule) {
	f.schedules[scheduleKey(s.ProductID, s.Kind, s.Holiday, s.LegalForm)] = s
}

func (f *fakeRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, ok := f.accounts[accountNumber]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeRepository) FindTillAccountByTeller(ctx context.Context, tellerID uuid.UUID) (*domain.Account, error) {
	till, ok := f.tills[tellerID]
	if !ok {
		return nil, store.ErrTillNotFound
	}
	return till, nil
}

func (f *fakeRepository) FindProductByID(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return product, nil
}

func (f *fakeRepository) FindFeeSchedule(ctx context.Context, productID uuid.UUID, kind domain.OperationKind, holiday bool, legalForm domain.LegalForm) (*domain.FeeSchedule, error) {
	schedule, ok := f.schedules[scheduleKey(productID, kind, holiday, legalForm)]
	if !ok {
		return nil, store.ErrFeeScheduleNotFound
	}
	return schedule, nil
}

func (f *fakeRepository) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	return f.holidays[date.Format("2006-01-02")], nil
}

func (f *fakeRepository) FindActiveWaiver(ctx context.Context, customerID uuid.UUID, at time.Time) (*domain.ChargeWaiver, error) {
	for _, w := range f.waivers {
		if w.CustomerID == customerID && w.ActiveAt(at) {
			return w, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindPendingNotification(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.WithdrawalNotification, error) {
	for _, n := range f.notifications {
		if n.AccountID == accountID && n.Status == "pending" && n.Amount >= amount {
			return n, nil
		}
	}
	return nil, nil
}

func (f *fakeRepository) FindTransactionsByAccountNumber(ctx context.Context, accountNumber string, limit, offset int) ([]domain.Transaction, error) {
	if _, ok := f.accounts[accountNumber]; !ok {
		return nil, store.ErrAccountNotFound
	}
	var rows []domain.Transaction
	for _, tx := range f.transactions {
		if tx.AccountNumber == accountNumber {
			rows = append(rows, tx)
		}
	}
	return rows, nil
}

func (f *fakeRepository) CommitSettlement(ctx context.Context, commit *store.SettlementCommit) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, commit)
	for _, tx := range commit.Transactions {
		f.transactions = append(f.transactions, *tx)
	}
	return nil
}

func (f *fakeRepository) lastCommit() *store.SettlementCommit {
	if len(f.commits) == 0 {
		return nil
	}
	return f.commits[len(f.commits)-1]
}

// seededWorld is the standard fixture: one active account, one teller with a
// funded till, and a savings product with a 1% deposit/withdrawal rate.
type seededWorld struct {
	repo     *fakeRepository
	engine   *Engine
	tellerID uuid.UUID
	account  *domain.Account
	till     *domain.Account
	product  *domain.Product
}

func seedWorld() *seededWorld {
	repo := newFakeRepository()
	engine := NewEngine([]byte("test-secret"), nil)
	tellerID := uuid.New()

	product := &domain.Product{
		ID:                     uuid.New(),
		Name:                   "Standard Savings",
		AllowDirectDeposit:     true,
		AllowInterBranch:       true,
		MinimumBalancePhysical: 1000,
		MinimumBalanceMoral:    5000,
		Commission: domain.CommissionShares{
			DestinationBranchPercent: decimal.RequireFromString("30"),
			HeadOfficePercent:        decimal.RequireFromString("20"),
			NetworkPercent:           decimal.RequireFromString("10"),
		},
		Limits: []domain.OperationLimit{
			{Kind: domain.OpDeposit, MinAmount: 100, MaxAmount: 10000000},
			{Kind: domain.OpWithdrawal, MinAmount: 100, MaxAmount: 10000000},
			{Kind: domain.OpTransferLocal, MinAmount: 100, MaxAmount: 10000000},
			{Kind: domain.OpTransferInterBranch, MinAmount: 100, MaxAmount: 10000000},
		},
	}
	repo.products[product.ID] = product

	account := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: "0001-000123",
		CustomerID:    uuid.New(),
		BranchID:      uuid.New(),
		ProductID:     product.ID,
		DisplayName:   "John Doe",
		LegalForm:     domain.LegalFormPhysical,
		Status:        domain.AccountActive,
		Balance:       50000,
	}
	engine.Guard().Reseal(account)
	repo.accounts[account.AccountNumber] = account

	till := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: "TILL-001",
		BranchID:      account.BranchID,
		Status:        domain.AccountActive,
		Balance:       200000,
	}
	engine.Guard().Reseal(till)
	repo.tills[tellerID] = till

	for _, kind := range []domain.OperationKind{domain.OpDeposit, domain.OpWithdrawal, domain.OpTransferLocal, domain.OpTransferInterBranch} {
		repo.addSchedule(&domain.FeeSchedule{
			ID:        uuid.New(),
			ProductID: product.ID,
			Kind:      kind,
			LegalForm: domain.LegalFormPhysical,
			Mode:      domain.FeeModeRate,
			Rate:      decimal.RequireFromString("1"),
		})
	}

	return &seededWorld{
		repo:     repo,
		engine:   engine,
		tellerID: tellerID,
		account:  account,
		till:     till,
		product:  product,
	}
}

// addReceiver seeds a second account on the given branch.
func (w *seededWorld) addReceiver(branchID uuid.UUID, status domain.AccountStatus) *domain.Account {
	receiver := &domain.Account{
		ID:            uuid.New(),
		AccountNumber: "0002-000456",
		CustomerID:    uuid.New(),
		BranchID:      branchID,
		ProductID:     w.product.ID,
		DisplayName:   "Jane Doe",
		LegalForm:     domain.LegalFormPhysical,
		Status:        status,
		Balance:       20000,
	}
	if status == domain.AccountPending {
		receiver.Balance = 0
	}
	w.engine.Guard().Reseal(receiver)
	w.repo.accounts[receiver.AccountNumber] = receiver
	return receiver
}

// fakeDirectory is an in-memory BranchDirectory for activation tests.
type fakeDirectory struct {
	customerName string
	branchName   string
	customerErr  error
	branchErr    error
}

func (d *fakeDirectory) CustomerName(ctx context.Context, customerID uuid.UUID) (string, error) {
	if d.customerErr != nil {
		return "", d.customerErr
	}
	return d.customerName, nil
}

func (d *fakeDirectory) BranchName(ctx context.Context, branchID uuid.UUID) (string, error) {
	if d.branchErr != nil {
		return "", d.branchErr
	}
	return d.branchName, nil
}

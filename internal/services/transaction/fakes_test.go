package transaction

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"walletledger/internal/models"
	"walletledger/internal/repositories"
	"walletledger/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// snapshotter is an in-memory store that can be rolled back.
type snapshotter interface {
	// snapshot captures the current state and returns a func restoring it.
	snapshot() func()
}

// fakeUoW runs fn in a session without a database. When fn fails every store
// is restored to its state before the run and the commit hooks are dropped.
type fakeUoW struct {
	stores []snapshotter
}

func (u *fakeUoW) Run(ctx context.Context, fn func(sess *repositories.Session) error) error {
	restores := make([]func(), 0, len(u.stores))
	for _, store := range u.stores {
		restores = append(restores, store.snapshot())
	}

	sess := repositories.NewSession(nil)
	if err := fn(sess); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	sess.Complete(ctx)
	return nil
}

type memTransactions struct {
	mu      sync.Mutex
	records map[string]models.Transaction
	updates int
}

func newMemTransactions() *memTransactions {
	return &memTransactions{records: make(map[string]models.Transaction)}
}

func (r *memTransactions) Create(_ context.Context, _ *repositories.Session, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.records[tx.TransactionID] = *tx
	return nil
}

func (r *memTransactions) GetByID(_ context.Context, _ *repositories.Session, id string) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.records[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	return &tx, nil
}

func (r *memTransactions) GetByWalletNumber(_ context.Context, walletNumber string, limit, offset int) ([]models.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, tx := range r.records {
		if tx.FromWallet == walletNumber || tx.ToWallet == walletNumber {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *memTransactions) GetByParentID(_ context.Context, parentID string) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Transaction
	for _, tx := range r.records {
		if tx.ParentTransactionID != nil && *tx.ParentTransactionID == parentID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memTransactions) UpdateStatus(_ context.Context, _ *repositories.Session, id string, status models.TransactionStatus, failureCode *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.records[id]
	if !ok {
		return repositories.ErrTransactionNotFound
	}
	tx.TransactionStatus = status
	if failureCode != nil {
		code := *failureCode
		tx.FailureCode = &code
	}
	r.records[id] = tx
	r.updates++
	return nil
}

func (r *memTransactions) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]models.Transaction, len(r.records))
	for id, tx := range r.records {
		saved[id] = tx
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.records = saved
	}
}

func (r *memTransactions) get(t *testing.T, id string) models.Transaction {
	t.Helper()
	tx, err := r.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	return *tx
}

type memWallets struct {
	mu      sync.Mutex
	wallets map[string]models.Wallet
	// numberErr is returned by GetByNumber when set.
	numberErr error
	// failWrites makes UpdateCurrencyAccounts fail for the given wallet ids.
	failWrites map[string]error
	writes     int
	// sessions holds the session of every successful account write.
	sessions []*repositories.Session
}

func newMemWallets() *memWallets {
	return &memWallets{
		wallets:    make(map[string]models.Wallet),
		failWrites: make(map[string]error),
	}
}

func (r *memWallets) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := make(map[string]models.Wallet, len(r.wallets))
	for id, w := range r.wallets {
		saved[id] = cloneWallet(w)
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.wallets = saved
	}
}

func cloneWallet(w models.Wallet) models.Wallet {
	w.CurrencyAccounts = append([]models.CurrencyAccount(nil), w.CurrencyAccounts...)
	return w
}

func (r *memWallets) Create(_ context.Context, _ *repositories.Session, w *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.ID]; ok {
		return repositories.ErrDuplicateWallet
	}
	r.wallets[w.ID] = cloneWallet(*w)
	return nil
}

func (r *memWallets) GetByID(_ context.Context, _ *repositories.Session, id string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	c := cloneWallet(w)
	return &c, nil
}

func (r *memWallets) GetByNumber(_ context.Context, _ *repositories.Session, number string) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numberErr != nil {
		return nil, r.numberErr
	}
	for _, w := range r.wallets {
		if w.WalletNumber == number {
			c := cloneWallet(w)
			return &c, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (r *memWallets) UpdateCurrencyAccounts(_ context.Context, sess *repositories.Session, walletID string, accounts []models.CurrencyAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failWrites[walletID]; err != nil {
		return err
	}
	w, ok := r.wallets[walletID]
	if !ok {
		return repositories.ErrWalletNotFound
	}
	w.CurrencyAccounts = append([]models.CurrencyAccount(nil), accounts...)
	r.wallets[walletID] = w
	r.writes++
	r.sessions = append(r.sessions, sess)
	return nil
}

// seed stores a wallet owned by id with number and the given balances. The
// first currency listed is the default.
func (r *memWallets) seed(id, number string, balances ...interface{}) {
	w := models.Wallet{ID: id, WalletNumber: number}
	for i := 0; i+1 < len(balances); i += 2 {
		w.CurrencyAccounts = append(w.CurrencyAccounts, models.CurrencyAccount{
			WalletID:  id,
			Currency:  balances[i].(string),
			Balance:   decimal.NewFromInt(int64(balances[i+1].(int))),
			IsDefault: i == 0,
		})
	}
	r.wallets[id] = w
}

func (r *memWallets) balance(t *testing.T, id, currency string) decimal.Decimal {
	t.Helper()
	w, err := r.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	account := w.Account(currency)
	require.NotNil(t, account, "wallet %s has no %s account", id, currency)
	return account.Balance
}

type memCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *memCache) GetWallet(context.Context, string) (*models.Wallet, error) { return nil, nil }
func (c *memCache) SetWallet(context.Context, *models.Wallet) error          { return nil }

func (c *memCache) InvalidateWallet(_ context.Context, walletID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, walletID)
	return nil
}

type memOutbox struct {
	mu     sync.Mutex
	nextID uint
	msgs   []models.OutboxMessage
	// err is returned by Add when set.
	err error
}

func (o *memOutbox) Add(_ context.Context, _ *repositories.Session, msg *models.OutboxMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.nextID++
	msg.ID = o.nextID
	msg.CreatedAt = time.Now()
	o.msgs = append(o.msgs, *msg)
	return nil
}

func (o *memOutbox) Pending(_ context.Context, cutoff time.Time, limit int) ([]models.OutboxMessage, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []models.OutboxMessage
	for _, msg := range o.msgs {
		if msg.CreatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (o *memOutbox) Delete(_ context.Context, id uint) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, msg := range o.msgs {
		if msg.ID == id {
			o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *memOutbox) snapshot() func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	saved := append([]models.OutboxMessage(nil), o.msgs...)
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.msgs = saved
	}
}

func (o *memOutbox) pending() []models.OutboxMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.OutboxMessage(nil), o.msgs...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	queued   []string
	statuses []models.TransactionStatusChanged
	err      error
}

func (p *recordingPublisher) PublishNewTransaction(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.queued = append(p.queued, id)
	return nil
}

func (p *recordingPublisher) PublishStatusChanged(_ context.Context, event models.TransactionStatusChanged) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.statuses = append(p.statuses, event)
	return nil
}

func (p *recordingPublisher) statusesFor(id string) []models.TransactionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.TransactionStatus
	for _, e := range p.statuses {
		if e.TransactionID == id {
			out = append(out, e.TransactionStatus)
		}
	}
	return out
}

// ledger wires the services over in-memory stores.
type ledger struct {
	transactions *memTransactions
	wallets      *memWallets
	outbox       *memOutbox
	cache        *memCache
	publisher    *recordingPublisher
	service      Service
	processor    *Processor
}

func newLedger() *ledger {
	l := &ledger{
		transactions: newMemTransactions(),
		wallets:      newMemWallets(),
		outbox:       &memOutbox{},
		cache:        &memCache{},
		publisher:    &recordingPublisher{},
	}
	uow := &fakeUoW{stores: []snapshotter{l.transactions, l.wallets, l.outbox}}
	walletSvc := wallet.NewService(l.wallets, uow, l.cache, wallet.Config{}, nil)
	l.service = NewService(l.transactions, l.outbox, uow, l.publisher, nil)
	l.processor = NewProcessor(ProcessorConfig{
		Transactions: l.transactions,
		UnitOfWork:   uow,
		Wallets:      walletSvc,
		Statuses:     l.service,
	})
	return l
}

// relay returns a relay that treats every stored message as due.
func (l *ledger) relay() *Relay {
	return NewRelay(RelayConfig{
		Outbox:    l.outbox,
		Publisher: l.publisher,
		Now:       func() time.Time { return time.Now().Add(time.Hour) },
	})
}

func (l *ledger) store(t *testing.T, tx *models.Transaction) *models.Transaction {
	t.Helper()
	require.NoError(t, l.transactions.Create(context.Background(), nil, tx))
	return tx
}

func request(target string, amount int64, currency string) models.TransactionRequest {
	return models.TransactionRequest{
		TargetWallet: target,
		Amount:       decimal.NewFromInt(amount),
		Currency:     currency,
	}
}

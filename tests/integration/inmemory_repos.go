package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is a shared in-memory database. Repos stage writes into a memTx;
// nothing becomes visible until Commit, mirroring the transactional guarantees
// the services rely on. Customer row locks serialize balance-affecting writes
// the way SELECT ... FOR UPDATE does.
type memStore struct {
	mu           sync.Mutex
	ledger       []domain.LedgerEntry
	transactions map[uuid.UUID]domain.Transaction
	redemptions  map[uuid.UUID]domain.Redemption
	outbox       map[uuid.UUID]domain.OutboxEvent
	customers    map[uuid.UUID]domain.Customer
	devices      map[uuid.UUID]domain.Device
	rewards      map[uuid.UUID]domain.Reward
	audits       []domain.AuditLog
	rowLocks     map[uuid.UUID]*sync.Mutex
	keyLocks     map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		transactions: make(map[uuid.UUID]domain.Transaction),
		redemptions:  make(map[uuid.UUID]domain.Redemption),
		outbox:       make(map[uuid.UUID]domain.OutboxEvent),
		customers:    make(map[uuid.UUID]domain.Customer),
		devices:      make(map[uuid.UUID]domain.Device),
		rewards:      make(map[uuid.UUID]domain.Reward),
		rowLocks:     make(map[uuid.UUID]*sync.Mutex),
		keyLocks:     make(map[string]*sync.Mutex),
	}
}

func (s *memStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	kl, ok := s.keyLocks[key]
	if !ok {
		kl = &sync.Mutex{}
		s.keyLocks[key] = kl
	}
	return kl
}

func (s *memStore) seedCustomer(c domain.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[c.ID] = c
}

func (s *memStore) seedDevice(d domain.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[d.ID] = d
}

func (s *memStore) seedReward(r domain.Reward) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[r.ID] = r
}

func (s *memStore) ledgerEntries(tenantID, customerID uuid.UUID) []domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range s.ledger {
		if e.TenantID == tenantID && e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) outboxEvents() []domain.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OutboxEvent, 0, len(s.outbox))
	for _, e := range s.outbox {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (s *memStore) auditEntries() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

// --- Transactor ---

type memTransactor struct {
	store *memStore
}

func newMemTransactor(store *memStore) *memTransactor {
	return &memTransactor{store: store}
}

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &memTx{store: t.store}, nil
}

// memTx stages writes and releases row locks on Commit/Rollback.
type memTx struct {
	store   *memStore
	mu      sync.Mutex
	staged  []func()
	unlocks []func()
	closed  bool
}

func (t *memTx) stage(apply func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.staged = append(t.staged, apply)
}

func (t *memTx) holdLock(unlock func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.unlocks = append(t.unlocks, unlock)
}

func (t *memTx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for _, apply := range t.staged {
		apply()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *memTx) finish() {
	t.staged = nil
	for _, unlock := range t.unlocks {
		unlock()
	}
	t.unlocks = nil
	t.closed = true
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- Ledger Repo ---

type memLedgerRepo struct {
	store *memStore
}

func newMemLedgerRepo(store *memStore) *memLedgerRepo {
	return &memLedgerRepo{store: store}
}

// Insert models the real repo's conflict-free upsert: a second writer for the
// same idempotency tuple blocks on a key lock until the first transaction
// finishes (Postgres parks the conflicting insert on the winner's index
// entry), then sees the committed row and reports a duplicate while its own
// transaction stays usable. The key lock is held until tx finish on success,
// like the winner's uncommitted index entry.
func (r *memLedgerRepo) Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	s := r.store
	kl := s.keyLock(entry.TenantID.String() + ":" + entry.IdempotencyKey + ":" + string(entry.OperationType))
	kl.Lock()

	s.mu.Lock()
	for _, e := range s.ledger {
		if e.TenantID == entry.TenantID && e.IdempotencyKey == entry.IdempotencyKey && e.OperationType == entry.OperationType {
			s.mu.Unlock()
			kl.Unlock()
			return ports.ErrDuplicateEntry
		}
	}
	stored := *entry
	mtx := tx.(*memTx)
	mtx.stage(func() {
		s.ledger = append(s.ledger, stored)
	})
	s.mu.Unlock()
	mtx.holdLock(kl.Unlock)
	return nil
}

func (r *memLedgerRepo) getByKey(tenantID uuid.UUID, key string, op domain.OperationType) *domain.LedgerEntry {
	for _, e := range r.store.ledger {
		if e.TenantID == tenantID && e.IdempotencyKey == key && e.OperationType == op {
			out := e
			return &out
		}
	}
	return nil
}

func (r *memLedgerRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.getByKey(tenantID, key, op), nil
}

func (r *memLedgerRepo) GetByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error) {
	return r.GetByIdempotencyKey(ctx, tenantID, key, op)
}

func (r *memLedgerRepo) sum(tenantID, customerID uuid.UUID) int64 {
	var total int64
	for _, e := range r.store.ledger {
		if e.TenantID == tenantID && e.CustomerID == customerID {
			total += e.Amount
		}
	}
	return total
}

func (r *memLedgerRepo) SumAmounts(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.sum(tenantID, customerID), nil
}

func (r *memLedgerRepo) SumAmountsTx(ctx context.Context, tx pgx.Tx, tenantID, customerID uuid.UUID) (int64, error) {
	return r.SumAmounts(ctx, tenantID, customerID)
}

func (r *memLedgerRepo) List(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []domain.LedgerEntry
	for _, e := range r.store.ledger {
		if e.TenantID == tenantID && e.CustomerID == customerID {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	if offset >= len(matched) {
		return []domain.LedgerEntry{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// --- Transaction Repo ---

type memTransactionRepo struct {
	store *memStore
}

func newMemTransactionRepo(store *memStore) *memTransactionRepo {
	return &memTransactionRepo{store: store}
}

func (r *memTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.transactions {
		if existing.TenantID == t.TenantID && existing.IdempotencyKey == t.IdempotencyKey {
			return ports.ErrDuplicateEntry
		}
	}
	stored := *t
	tx.(*memTx).stage(func() {
		s.transactions[stored.ID] = stored
	})
	return nil
}

func (r *memTransactionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.transactions[id]
	if !ok || t.TenantID != tenantID {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (r *memTransactionRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, t := range r.store.transactions {
		if t.TenantID == tenantID && t.IdempotencyKey == key {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) UpdateMetadata(ctx context.Context, tenantID, id uuid.UUID, meta *domain.TransactionMetadata) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.transactions[id]
	if !ok || t.TenantID != tenantID {
		return fmt.Errorf("no transaction %s", id)
	}
	t.Metadata = meta
	r.store.transactions[id] = t
	return nil
}

// --- Redemption Repo ---

type memRedemptionRepo struct {
	store *memStore
}

func newMemRedemptionRepo(store *memStore) *memRedemptionRepo {
	return &memRedemptionRepo{store: store}
}

func (r *memRedemptionRepo) Create(ctx context.Context, tx pgx.Tx, red *domain.Redemption) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.redemptions {
		if existing.TenantID == red.TenantID && existing.IdempotencyKey == red.IdempotencyKey {
			return ports.ErrDuplicateEntry
		}
	}
	stored := *red
	tx.(*memTx).stage(func() {
		s.redemptions[stored.ID] = stored
	})
	return nil
}

func (r *memRedemptionRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Redemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, red := range r.store.redemptions {
		if red.TenantID == tenantID && red.IdempotencyKey == key {
			out := red
			return &out, nil
		}
	}
	return nil, nil
}

// --- Outbox Repo ---

type memOutboxRepo struct {
	store *memStore
}

func newMemOutboxRepo(store *memStore) *memOutboxRepo {
	return &memOutboxRepo{store: store}
}

func (r *memOutboxRepo) Create(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error {
	s := r.store
	stored := *event
	tx.(*memTx).stage(func() {
		s.outbox[stored.ID] = stored
	})
	return nil
}

func (r *memOutboxRepo) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var pending []domain.OutboxEvent
	for _, e := range r.store.outbox {
		if e.Status == domain.OutboxStatusPending {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memOutboxRepo) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.outbox[id]
	if !ok {
		return fmt.Errorf("no outbox event %s", id)
	}
	e.Status = domain.OutboxStatusPublished
	e.PublishedAt = &publishedAt
	r.store.outbox[id] = e
	return nil
}

func (r *memOutboxRepo) IncrementRetry(ctx context.Context, id uuid.UUID, retryCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.outbox[id]
	if !ok {
		return fmt.Errorf("no outbox event %s", id)
	}
	e.RetryCount = retryCount
	r.store.outbox[id] = e
	return nil
}

func (r *memOutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.outbox[id]
	if !ok {
		return fmt.Errorf("no outbox event %s", id)
	}
	e.Status = domain.OutboxStatusFailed
	e.RetryCount = retryCount
	r.store.outbox[id] = e
	return nil
}

// --- Customer Repo ---

type memCustomerRepo struct {
	store *memStore
}

func newMemCustomerRepo(store *memStore) *memCustomerRepo {
	return &memCustomerRepo{store: store}
}

func (r *memCustomerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, nil
	}
	out := c
	return &out, nil
}

// LockForUpdate takes the customer's row lock for the duration of tx, so
// concurrent balance-affecting writes for one customer run one at a time.
func (r *memCustomerRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (*domain.Customer, error) {
	s := r.store
	s.mu.Lock()
	c, ok := s.customers[id]
	if !ok || c.TenantID != tenantID {
		s.mu.Unlock()
		return nil, nil
	}
	rowLock, ok := s.rowLocks[id]
	if !ok {
		rowLock = &sync.Mutex{}
		s.rowLocks[id] = rowLock
	}
	s.mu.Unlock()

	rowLock.Lock()
	tx.(*memTx).holdLock(rowLock.Unlock)

	out := c
	return &out, nil
}

// --- Device / Reward Repos ---

type memDeviceRepo struct {
	store *memStore
}

func newMemDeviceRepo(store *memStore) *memDeviceRepo {
	return &memDeviceRepo{store: store}
}

func (r *memDeviceRepo) GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Device, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.devices[id]
	if !ok || d.TenantID != tenantID || !d.Active {
		return nil, nil
	}
	out := d
	return &out, nil
}

type memRewardRepo struct {
	store *memStore
}

func newMemRewardRepo(store *memStore) *memRewardRepo {
	return &memRewardRepo{store: store}
}

func (r *memRewardRepo) GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reward, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rw, ok := r.store.rewards[id]
	if !ok || rw.TenantID != tenantID || !rw.Active {
		return nil, nil
	}
	out := rw
	return &out, nil
}

// --- Audit Repo ---

type memAuditRepo struct {
	store *memStore
}

func newMemAuditRepo(store *memStore) *memAuditRepo {
	return &memAuditRepo{store: store}
}

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

// --- Capturing publisher for dispatcher tests ---

type capturePublisher struct {
	mu           sync.Mutex
	published    []publishedMsg
	failuresLeft int // first N publishes fail, simulating a flaky broker
}

type publishedMsg struct {
	subject string
	data    []byte
}

func (p *capturePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return fmt.Errorf("injected publish failure")
	}
	p.published = append(p.published, publishedMsg{subject: subject, data: data})
	return nil
}

func (p *capturePublisher) messages() []publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedMsg, len(p.published))
	copy(out, p.published)
	return out
}

package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/usecase"
)

var errForeignTransaction = errors.New("memory: transaction does not belong to this store")

// Store holds the projection read models. Transactions are serialized and
// buffer their writes until Commit.
type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	ledgers   map[string]*domain.LedgerView
	order     []string
	dashboard *domain.Dashboard
	cursors   map[string]usecase.ProjectionCursor
	now       func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		ledgers: make(map[string]*domain.LedgerView),
		cursors: make(map[string]usecase.ProjectionCursor),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Tx is a pending set of writes.
type Tx struct {
	store     *Store
	ledgers   map[string]*domain.LedgerView
	order     []string
	dashboard *domain.Dashboard
	cursors   map[string]uint64
	done      bool
}

// Begin implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txMu.Lock()
	return &Tx{
		store:   s,
		ledgers: make(map[string]*domain.LedgerView),
		cursors: make(map[string]uint64),
	}, nil
}

// Commit publishes the buffered writes.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("memory: transaction already finished")
	}
	t.done = true
	defer t.store.txMu.Unlock()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.order {
		if _, ok := s.ledgers[id]; !ok {
			s.order = append(s.order, id)
		}
		s.ledgers[id] = t.ledgers[id]
	}
	if t.dashboard != nil {
		s.dashboard = t.dashboard
	}
	now := s.now()
	for name, pos := range t.cursors {
		s.cursors[name] = usecase.ProjectionCursor{Name: name, Position: pos, UpdatedAt: now}
	}
	return nil
}

// Rollback drops the buffered writes.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (s *Store) tx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTransaction
	}
	return t, nil
}

// Ledgers returns the store as a usecase.LedgerViewRepository.
func (s *Store) Ledgers() *LedgerViews { return &LedgerViews{s} }

// Dashboard returns the store as a usecase.DashboardRepository.
func (s *Store) Dashboard() *Dashboards { return &Dashboards{s} }

// Cursors returns the store as a usecase.ProjectionCursorRepository.
func (s *Store) Cursors() *Cursors { return &Cursors{s} }

// LedgerViews implements usecase.LedgerViewRepository.
type LedgerViews struct{ s *Store }

func (r *LedgerViews) Get(ctx context.Context, ledgerID string) (*domain.LedgerView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	v, ok := r.s.ledgers[ledgerID]
	if !ok {
		return nil, domain.ErrLedgerNotFound
	}
	return cloneView(v), nil
}

func (r *LedgerViews) GetTx(ctx context.Context, tx usecase.Transaction, ledgerID string) (*domain.LedgerView, error) {
	t, err := r.s.tx(tx)
	if err != nil {
		return nil, err
	}
	if v, ok := t.ledgers[ledgerID]; ok {
		return cloneView(v), nil
	}
	return r.Get(ctx, ledgerID)
}

func (r *LedgerViews) Save(ctx context.Context, tx usecase.Transaction, view *domain.LedgerView) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	var stored uint64
	if v, ok := t.ledgers[view.LedgerID]; ok {
		stored = v.Version
	} else if v, err := r.Get(ctx, view.LedgerID); err == nil {
		stored = v.Version
	}
	if stored != view.Version-1 {
		return domain.ErrProjectionVersionConflict
	}

	if _, ok := t.ledgers[view.LedgerID]; !ok {
		t.order = append(t.order, view.LedgerID)
	}
	t.ledgers[view.LedgerID] = cloneView(view)
	return nil
}

// List returns ledgers in the order they were first saved.
func (r *LedgerViews) List(ctx context.Context, limit, offset int) ([]domain.LedgerSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if offset < 0 || limit <= 0 || offset >= len(r.s.order) {
		return []domain.LedgerSummary{}, nil
	}
	end := offset + limit
	if end > len(r.s.order) {
		end = len(r.s.order)
	}

	out := make([]domain.LedgerSummary, 0, end-offset)
	for _, id := range r.s.order[offset:end] {
		out = append(out, r.s.ledgers[id].Summary())
	}
	return out, nil
}

func (r *LedgerViews) Count(ctx context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.ledgers)), nil
}

// Dashboards implements usecase.DashboardRepository.
type Dashboards struct{ s *Store }

func (r *Dashboards) Get(ctx context.Context) (*domain.Dashboard, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.dashboard == nil {
		return &domain.Dashboard{}, nil
	}
	d := *r.s.dashboard
	return &d, nil
}

func (r *Dashboards) GetTx(ctx context.Context, tx usecase.Transaction) (*domain.Dashboard, error) {
	t, err := r.s.tx(tx)
	if err != nil {
		return nil, err
	}
	if t.dashboard != nil {
		d := *t.dashboard
		return &d, nil
	}
	return r.Get(ctx)
}

func (r *Dashboards) Save(ctx context.Context, tx usecase.Transaction, dashboard *domain.Dashboard) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}

	stored, err := r.GetTx(ctx, tx)
	if err != nil {
		return err
	}
	if stored.Version != dashboard.Version-1 {
		return domain.ErrProjectionVersionConflict
	}

	d := *dashboard
	t.dashboard = &d
	return nil
}

// Cursors implements usecase.ProjectionCursorRepository.
type Cursors struct{ s *Store }

func (r *Cursors) Get(ctx context.Context, name string) (uint64, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cursors[name]
	return c.Position, ok, nil
}

func (r *Cursors) Save(ctx context.Context, tx usecase.Transaction, name string, position uint64) error {
	t, err := r.s.tx(tx)
	if err != nil {
		return err
	}
	t.cursors[name] = position
	return nil
}

func (r *Cursors) List(ctx context.Context) ([]usecase.ProjectionCursor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]usecase.ProjectionCursor, 0, len(r.s.cursors))
	for _, c := range r.s.cursors {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func cloneView(v *domain.LedgerView) *domain.LedgerView {
	c := *v
	c.Entries = append([]domain.JournalEntry(nil), v.Entries...)
	return &c
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

// SessionStore persists wizard snapshots between requests.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Snapshot, error)
	Save(ctx context.Context, id string, snap *Snapshot) error
	Delete(ctx context.Context, id string) error
}

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*domproduct.Product, error)
}

type ManagerDeps struct {
	Store     SessionStore
	Products  ProductReader
	Validator ClientValidator
	Submitter OrderSubmitter
	Options   Options
	Logger    *zap.Logger
}

// Manager hands out wizards by session ID. Live wizards are cached in
// process so in-flight guards hold across concurrent requests; every
// operation writes the resulting snapshot through to the store.
type Manager struct {
	mu   sync.Mutex
	live map[string]*Wizard

	store     SessionStore
	products  ProductReader
	validator ClientValidator
	submitter OrderSubmitter
	opts      Options
	logger    *zap.Logger
	newID     func() string
}

func NewManager(deps ManagerDeps) *Manager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		live:      make(map[string]*Wizard),
		store:     deps.Store,
		products:  deps.Products,
		validator: deps.Validator,
		submitter: deps.Submitter,
		opts:      deps.Options.withDefaults(),
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// Start opens a new, empty checkout session.
func (m *Manager) Start(ctx context.Context) (string, State, error) {
	id := m.newID()
	w := NewWizard(m.validator, m.submitter, m.opts)
	if err := m.store.Save(ctx, id, w.Snapshot()); err != nil {
		return "", State{}, fmt.Errorf("save new session: %w", err)
	}

	m.mu.Lock()
	m.live[id] = w
	m.mu.Unlock()

	m.logger.Debug("checkout session started", zap.String("session_id", id))
	return id, w.State(), nil
}

// Do runs fn against the session's wizard and persists the outcome, error
// state included. The returned error is fn's.
func (m *Manager) Do(ctx context.Context, id string, fn func(w *Wizard) error) (State, error) {
	w, err := m.wizard(ctx, id)
	if err != nil {
		return State{}, err
	}

	opErr := fn(w)

	if err := m.store.Save(ctx, id, w.Snapshot()); err != nil {
		m.logger.Error("persist checkout session", zap.String("session_id", id), zap.Error(err))
		if opErr == nil {
			return State{}, fmt.Errorf("save session: %w", err)
		}
	}
	return w.State(), opErr
}

// State returns the current view of a session.
func (m *Manager) State(ctx context.Context, id string) (State, error) {
	w, err := m.wizard(ctx, id)
	if err != nil {
		return State{}, err
	}
	return w.State(), nil
}

// AddProduct adds one unit of a catalog product. Inactive products are
// treated as missing.
func (m *Manager) AddProduct(ctx context.Context, id string, productID int64) (State, error) {
	p, err := m.products.GetByID(ctx, productID)
	if err != nil {
		return State{}, err
	}
	if !p.IsActive {
		return State{}, domproduct.ErrProductNotFound
	}
	return m.Do(ctx, id, func(w *Wizard) error {
		return w.AddItem(*p)
	})
}

// End drops a session everywhere.
func (m *Manager) End(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.live, id)
	m.mu.Unlock()
	return m.store.Delete(ctx, id)
}

// Sweep evicts live wizards idle for longer than idle. Their snapshots
// stay in the store. Wizards with a lookup or submission outstanding are
// kept, since their in-flight guards live only in memory.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.opts.Now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, w := range m.live {
		if w.Busy() {
			continue
		}
		if w.IdleSince().Before(cutoff) {
			delete(m.live, id)
			evicted++
		}
	}
	return evicted
}

func (m *Manager) wizard(ctx context.Context, id string) (*Wizard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domcheckout.ErrSessionNotFound
	}

	m.mu.Lock()
	w, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		return w, nil
	}

	snap, err := m.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domcheckout.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	restored, err := Restore(snap, m.validator, m.submitter, m.opts)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have restored it first.
	if w, ok := m.live[id]; ok {
		return w, nil
	}
	m.live[id] = restored
	return restored, nil
}

package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcheckout "example.com/cleantec-orders/app/internal/domain/checkout"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
)

type mockSessionStore struct {
	mu      sync.Mutex
	snaps   map[string]*Snapshot
	saveErr error
	loads   int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{snaps: make(map[string]*Snapshot)}
}

func (m *mockSessionStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	snap, ok := m.snaps[id]
	if !ok {
		return nil, domcheckout.ErrSessionNotFound
	}
	return snap, nil
}

func (m *mockSessionStore) Save(ctx context.Context, id string, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snaps[id] = snap
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, id)
	return nil
}

type mockProductReader struct {
	products map[int64]*domproduct.Product
}

func newMockProductReader(products ...domproduct.Product) *mockProductReader {
	m := &mockProductReader{products: make(map[int64]*domproduct.Product)}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *mockProductReader) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func newTestManager(t *testing.T, clock *fakeClock) (*Manager, *mockSessionStore) {
	t.Helper()
	store := newMockSessionStore()
	validator := newMockClientValidator()
	validator.customers["C-001"] = acme()
	retired := gloves
	retired.ID = 3
	retired.IsActive = false

	m := NewManager(ManagerDeps{
		Store:     store,
		Products:  newMockProductReader(soap, gloves, retired),
		Validator: validator,
		Submitter: newMockOrderSubmitter(),
		Options:   Options{Now: clock.Now},
	})
	return m, store
}

func TestManager_Start_PersistsEmptySession(t *testing.T) {
	m, store := newTestManager(t, newFakeClock())

	id, state, err := m.Start(context.Background())

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, domcheckout.StepCart, state.Step)
	require.Contains(t, store.snaps, id)
	assert.Empty(t, store.snaps[id].Items)
}

func TestManager_Start_StoreError(t *testing.T) {
	m, store := newTestManager(t, newFakeClock())
	store.saveErr = errors.New("redis down")

	_, _, err := m.Start(context.Background())

	require.Error(t, err)
}

func TestManager_AddProduct_WritesThrough(t *testing.T) {
	m, store := newTestManager(t, newFakeClock())
	id, _, err := m.Start(context.Background())
	require.NoError(t, err)

	state, err := m.AddProduct(context.Background(), id, soap.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(1), state.ItemCount)
	require.Len(t, store.snaps[id].Items, 1)
	assert.Equal(t, soap.Name, store.snaps[id].Items[0].Name)
}

func TestManager_AddProduct_InactiveOrMissing(t *testing.T) {
	m, _ := newTestManager(t, newFakeClock())
	id, _, err := m.Start(context.Background())
	require.NoError(t, err)

	_, err = m.AddProduct(context.Background(), id, 3)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)

	_, err = m.AddProduct(context.Background(), id, 42)
	require.ErrorIs(t, err, domproduct.ErrProductNotFound)
}

func TestManager_UnknownSession(t *testing.T) {
	m, _ := newTestManager(t, newFakeClock())

	_, err := m.State(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, domcheckout.ErrSessionNotFound)

	_, err = m.State(context.Background(), "5b0d7a4e-3c1e-4a63-9a55-2f0e6f7f1a11")
	require.ErrorIs(t, err, domcheckout.ErrSessionNotFound)
}

func TestManager_Do_PersistsErrorState(t *testing.T) {
	m, store := newTestManager(t, newFakeClock())
	id, _, err := m.Start(context.Background())
	require.NoError(t, err)
	_, err = m.AddProduct(context.Background(), id, soap.ID)
	require.NoError(t, err)
	_, err = m.Do(context.Background(), id, func(w *Wizard) error { return w.Proceed() })
	require.NoError(t, err)
	_, err = m.Do(context.Background(), id, func(w *Wizard) error { return w.Proceed() })
	require.NoError(t, err)

	state, err := m.Do(context.Background(), id, func(w *Wizard) error {
		return w.ValidateClient(context.Background(), "C-404")
	})

	require.Error(t, err)
	assert.Equal(t, domcheckout.StepValidation, state.Step)
	assert.Equal(t, domcheckout.MsgClientNotFound, store.snaps[id].Error)
}

func TestManager_Sweep_EvictsIdleAndRestoresFromStore(t *testing.T) {
	clock := newFakeClock()
	m, store := newTestManager(t, clock)
	id, _, err := m.Start(context.Background())
	require.NoError(t, err)
	_, err = m.AddProduct(context.Background(), id, gloves.ID)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	other, _, err := m.Start(context.Background())
	require.NoError(t, err)

	evicted := m.Sweep(5 * time.Minute)
	assert.Equal(t, 1, evicted)
	assert.Zero(t, store.loads)

	state, err := m.State(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)
	require.Len(t, state.Items, 1)
	assert.Equal(t, gloves.ID, state.Items[0].ID)

	_, err = m.State(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads)
}

func TestManager_Sweep_KeepsWizardWithRequestInFlight(t *testing.T) {
	clock := newFakeClock()
	store := newMockSessionStore()
	validator := newMockClientValidator()
	validator.customers["C-001"] = acme()
	validator.block = make(chan struct{})
	validator.started = make(chan struct{})
	m := NewManager(ManagerDeps{
		Store:     store,
		Products:  newMockProductReader(soap),
		Validator: validator,
		Submitter: newMockOrderSubmitter(),
		Options:   Options{Now: clock.Now},
	})

	id, _, err := m.Start(context.Background())
	require.NoError(t, err)
	_, err = m.AddProduct(context.Background(), id, soap.ID)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = m.Do(context.Background(), id, func(w *Wizard) error { return w.Proceed() })
		require.NoError(t, err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Do(context.Background(), id, func(w *Wizard) error {
			return w.ValidateClient(context.Background(), "C-001")
		})
		done <- err
	}()
	<-validator.started

	clock.Advance(time.Hour)
	assert.Zero(t, m.Sweep(time.Minute))

	// The live wizard still holds the guard, so a second lookup is refused
	// instead of running against a restored copy.
	_, err = m.Do(context.Background(), id, func(w *Wizard) error {
		return w.ValidateClient(context.Background(), "C-001")
	})
	require.ErrorIs(t, err, domcheckout.ErrRequestInFlight)
	assert.Zero(t, store.loads)

	close(validator.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, validator.calls)

	state, err := m.State(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domcheckout.StepConfirmation, state.Step)
}

func TestManager_End_RemovesSession(t *testing.T) {
	m, store := newTestManager(t, newFakeClock())
	id, _, err := m.Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.End(context.Background(), id))

	assert.NotContains(t, store.snaps, id)
	_, err = m.State(context.Background(), id)
	require.ErrorIs(t, err, domcheckout.ErrSessionNotFound)
}

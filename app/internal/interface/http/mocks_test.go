package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domadmin "example.com/cleantec-orders/app/internal/domain/admin"
	domcategory "example.com/cleantec-orders/app/internal/domain/category"
	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
	domproduct "example.com/cleantec-orders/app/internal/domain/product"
	"example.com/cleantec-orders/app/internal/infra/security"
	"example.com/cleantec-orders/app/internal/infra/session"
	authuc "example.com/cleantec-orders/app/internal/usecase/auth"
	categoryuc "example.com/cleantec-orders/app/internal/usecase/category"
	checkoutuc "example.com/cleantec-orders/app/internal/usecase/checkout"
	customeruc "example.com/cleantec-orders/app/internal/usecase/customer"
	orderuc "example.com/cleantec-orders/app/internal/usecase/order"
	productuc "example.com/cleantec-orders/app/internal/usecase/product"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mu       sync.Mutex
	products map[int64]*domproduct.Product
	nextID   int64
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: map[int64]*domproduct.Product{
			1: {ID: 1, Name: "Desengrasante", Price: 100, Category: "Limpieza", Stock: 5, IsActive: true},
			2: {ID: 2, Name: "Jabón", Price: 50, Category: "Higiene", Stock: 0, IsActive: true},
			3: {ID: 3, Name: "Cloro", Price: 20, Category: "Limpieza", Stock: 3, IsActive: false},
		},
		nextID: 4,
	}
}

func (m *mockProductRepository) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	cloned := *p
	m.products[p.ID] = &cloned
	return p, nil
}

func (m *mockProductRepository) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	m.products[p.ID] = &cloned
	return p, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domproduct.ErrProductNotFound
}

func (m *mockProductRepository) GetByName(ctx context.Context, name string) (*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Name == name {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, domproduct.ErrProductNotFound
}

func (m *mockProductRepository) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domproduct.Product
	for _, p := range m.products {
		if filter.OnlyActive && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		cloned := *p
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domproduct.Product, error) {
	var result []*domproduct.Product
	for _, id := range ids {
		if p, err := m.GetByID(ctx, id); err == nil {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProductRepository) Categories(ctx context.Context) ([]*domcategory.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int64{}
	for _, p := range m.products {
		if p.IsActive {
			counts[p.Category]++
		}
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	cats := make([]*domcategory.Category, 0, len(names))
	for _, name := range names {
		cats = append(cats, &domcategory.Category{Name: name, ProductCount: counts[name]})
	}
	return cats, nil
}

type mockCustomerRepository struct {
	mu        sync.Mutex
	customers map[int64]*domcustomer.Customer
	nextID    int64
	lookupErr error
	withOrder map[string]bool
}

func newMockCustomerRepository() *mockCustomerRepository {
	return &mockCustomerRepository{
		customers: map[int64]*domcustomer.Customer{
			1: {
				ID:           1,
				ClientNumber: "C-100",
				ClientName:   "Hotel Azul",
				TaxID:        "HAZ010101AAA",
				Street:       "Av. Reforma 10",
				City:         "CDMX",
				PostalCode:   "06600",
				Email:        "compras@hotelazul.mx",
				Phone:        "5550000000",
			},
		},
		nextID:    2,
		withOrder: map[string]bool{},
	}
}

func (m *mockCustomerRepository) Create(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	cloned := *c
	m.customers[c.ID] = &cloned
	return c, nil
}

func (m *mockCustomerRepository) Update(ctx context.Context, c *domcustomer.Customer) (*domcustomer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; !ok {
		return nil, domcustomer.ErrCustomerNotFound
	}
	cloned := *c
	m.customers[c.ID] = &cloned
	return c, nil
}

func (m *mockCustomerRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return domcustomer.ErrCustomerNotFound
	}
	if m.withOrder[c.ClientNumber] {
		return domcustomer.ErrCustomerHasOrders
	}
	delete(m.customers, id)
	return nil
}

func (m *mockCustomerRepository) GetByID(ctx context.Context, id int64) (*domcustomer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.customers[id]; ok {
		cloned := *c
		return &cloned, nil
	}
	return nil, domcustomer.ErrCustomerNotFound
}

func (m *mockCustomerRepository) GetByClientNumber(ctx context.Context, clientNumber string) (*domcustomer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	for _, c := range m.customers {
		if c.ClientNumber == clientNumber {
			cloned := *c
			return &cloned, nil
		}
	}
	return nil, domcustomer.ErrCustomerNotFound
}

func (m *mockCustomerRepository) List(ctx context.Context) ([]*domcustomer.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domcustomer.Customer
	for _, c := range m.customers {
		cloned := *c
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type mockOrderRepository struct {
	mu        sync.Mutex
	orders    map[int64]*domorder.Order
	nextID    int64
	createErr error
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{
		orders: map[int64]*domorder.Order{
			1: {
				ID:            1,
				OrderNumber:   "CT-000001-AAA",
				ClientNumber:  "C-100",
				ClientName:    "Hotel Azul",
				ClientCompany: "Hotel Azul",
				ClientAddress: "Av. Reforma 10, CDMX, CP 06600",
				Subtotal:      200,
				Tax:           32,
				Total:         232,
				Status:        domorder.StatusConfirmed,
				Items: []domorder.OrderItem{
					{ID: 1, OrderID: 1, ProductID: 1, ProductName: "Desengrasante", Quantity: 2, UnitPrice: 100, LineTotal: 200},
				},
				CreatedAt: time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
			},
		},
		nextID: 2,
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domorder.Order) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	created := *o
	created.ID = m.nextID
	m.nextID++
	created.CreatedAt = time.Now()
	m.orders[created.ID] = &created
	out := created
	return &out, nil
}

func (m *mockOrderRepository) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*domorder.Order
	for _, o := range m.orders {
		if filter.ClientNumber != "" && o.ClientNumber != filter.ClientNumber {
			continue
		}
		cloned := *o
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cloned := *o
		return &cloned, nil
	}
	return nil, domorder.ErrOrderNotFound
}

func (m *mockOrderRepository) GetByNumber(ctx context.Context, number string) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == number {
			cloned := *o
			return &cloned, nil
		}
	}
	return nil, domorder.ErrOrderNotFound
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	o.Status = status
	cloned := *o
	return &cloned, nil
}

type mockAdminRepository struct {
	admins map[string]*domadmin.Admin
}

func (m *mockAdminRepository) Create(ctx context.Context, a *domadmin.Admin) (*domadmin.Admin, error) {
	a.ID = int64(len(m.admins) + 1)
	m.admins[a.Email] = a
	return a, nil
}

func (m *mockAdminRepository) GetByEmail(ctx context.Context, email string) (*domadmin.Admin, error) {
	if a, ok := m.admins[email]; ok {
		return a, nil
	}
	return nil, domadmin.ErrAdminNotFound
}

type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return domadmin.ErrInvalidCredential
	}
	return nil
}

// --- Helper Functions ---

type testEnv struct {
	api       *API
	router    http.Handler
	tokens    *security.JWTService
	products  *mockProductRepository
	customers *mockCustomerRepository
	orders    *mockOrderRepository
	admins    *mockAdminRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:    security.NewJWTService("test-secret", time.Hour),
		products:  newMockProductRepository(),
		customers: newMockCustomerRepository(),
		orders:    newMockOrderRepository(),
		admins: &mockAdminRepository{admins: map[string]*domadmin.Admin{
			"admin@cleantec.mx": {
				ID:           1,
				Name:         "Admin",
				Email:        "admin@cleantec.mx",
				PasswordHash: "hashed:secret123",
				Role:         domadmin.RoleSuperAdmin,
			},
		}},
	}

	productSvc := productuc.NewService(env.products)
	customerSvc := customeruc.NewService(env.customers)
	orderSvc := orderuc.NewService(env.orders, nil)
	t.Cleanup(orderSvc.Wait)

	manager := checkoutuc.NewManager(checkoutuc.ManagerDeps{
		Store:     session.NewMemoryStore(time.Hour),
		Products:  productSvc,
		Validator: customerSvc,
		Submitter: orderSvc,
	})

	env.api = NewAPI(Dependencies{
		AuthService:     authuc.NewService(env.admins, fakePasswordHasher{}, env.tokens),
		CategoryService: categoryuc.NewService(env.products),
		ProductService:  productSvc,
		CustomerService: customerSvc,
		OrderService:    orderSvc,
		Checkout:        manager,
		TokenService:    env.tokens,
	})
	env.router = env.api.Router()
	return env
}

func (e *testEnv) adminToken(t *testing.T, role domadmin.Role) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(&domadmin.Admin{
		ID:    1,
		Name:  string(role) + " User",
		Email: strings.ToLower(string(role)) + "@cleantec.mx",
		Role:  role,
	})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path, token string, body any) *http.Request {
	var req *http.Request
	if body != nil {
		payload, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

type mockCustomers struct {
	byNumber map[string]*domcustomer.Customer
	err      error
}

func (m *mockCustomers) GetByClientNumber(_ context.Context, n string) (*domcustomer.Customer, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.byNumber[n]
	if !ok {
		return nil, domcustomer.ErrCustomerNotFound
	}
	return c, nil
}

type sent struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestNotifier(customers *mockCustomers, sendErr error) (*Notifier, *[]sent) {
	var out []sent
	n := NewNotifier(Config{Addr: "localhost:2025", From: "pedidos@cleantec.mx"}, customers, nil)
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if sendErr != nil {
			return sendErr
		}
		out = append(out, sent{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return n, &out
}

func sampleOrder() *domorder.Order {
	return &domorder.Order{
		OrderNumber:  "CT-123456-ABC",
		ClientNumber: "C-001",
		ClientName:   "Juan Pérez",
		Subtotal:     124.48,
		Tax:          19.9168,
		Total:        144.3968,
		Items: []domorder.OrderItem{
			{ProductName: "Jabón", Quantity: 2, UnitPrice: 45.99, LineTotal: 91.98},
			{ProductName: "Guantes", Quantity: 1, UnitPrice: 32.5, LineTotal: 32.5},
		},
	}
}

func TestOrderCreated_SendsConfirmation(t *testing.T) {
	customers := &mockCustomers{byNumber: map[string]*domcustomer.Customer{
		"C-001": {ClientNumber: "C-001", Email: "juan@acme.mx"},
	}}
	n, out := newTestNotifier(customers, nil)

	require.NoError(t, n.OrderCreated(context.Background(), sampleOrder()))
	require.Len(t, *out, 1)

	m := (*out)[0]
	assert.Equal(t, "localhost:2025", m.addr)
	assert.Equal(t, []string{"juan@acme.mx"}, m.to)
	assert.Contains(t, m.msg, "To: juan@acme.mx\r\n")
	assert.Contains(t, m.msg, "Jabón x2  $91.98")
	assert.Contains(t, m.msg, "IVA (16%): $19.92")
	assert.Contains(t, m.msg, "Total: $144.40")
	assert.True(t, strings.Contains(m.msg, "Subject: =?utf-8?q?"))
}

func TestOrderCreated_SkipsWithoutEmail(t *testing.T) {
	customers := &mockCustomers{byNumber: map[string]*domcustomer.Customer{
		"C-001": {ClientNumber: "C-001"},
	}}
	n, out := newTestNotifier(customers, nil)

	require.NoError(t, n.OrderCreated(context.Background(), sampleOrder()))
	assert.Empty(t, *out)
}

func TestOrderCreated_SkipsUnknownCustomer(t *testing.T) {
	n, out := newTestNotifier(&mockCustomers{}, nil)

	require.NoError(t, n.OrderCreated(context.Background(), sampleOrder()))
	assert.Empty(t, *out)
}

func TestOrderCreated_Errors(t *testing.T) {
	n, _ := newTestNotifier(&mockCustomers{err: errors.New("db down")}, nil)
	err := n.OrderCreated(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find customer C-001")

	customers := &mockCustomers{byNumber: map[string]*domcustomer.Customer{
		"C-001": {ClientNumber: "C-001", Email: "juan@acme.mx"},
	}}
	n, _ = newTestNotifier(customers, errors.New("connection refused"))
	err = n.OrderCreated(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send confirmation for CT-123456-ABC")
}

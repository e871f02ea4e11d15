package mysql

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domcustomer "example.com/cleantec-orders/app/internal/domain/customer"
	domorder "example.com/cleantec-orders/app/internal/domain/order"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var (
	orderCols = []string{"id", "order_number", "client_number", "client_name", "client_company",
		"client_address", "client_phone", "subtotal", "iva", "total", "status", "notes", "created_at"}
	itemCols     = []string{"id", "order_id", "product_id", "product_name", "product_sku", "quantity", "unit_price", "total_price"}
	customerCols = []string{"id", "client_number", "client_name", "rfc", "direccion", "colonia",
		"ciudad", "estado", "cp", "correo", "tel", "created_at"}
)

func sampleOrder() *domorder.Order {
	return &domorder.Order{
		OrderNumber:   "CT-123456-ABC",
		ClientNumber:  "C-100",
		ClientName:    "Hotel Azul",
		ClientCompany: "Hotel Azul",
		ClientAddress: "CDMX",
		Subtotal:      100,
		Tax:           16,
		Total:         116,
		Status:        domorder.StatusConfirmed,
		Items: []domorder.OrderItem{
			{ProductID: 7, ProductName: "Cloro", Quantity: 2, UnitPrice: 50, LineTotal: 100},
		},
	}
}

func TestOrderRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)
	now := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("CT-123456-ABC", "C-100", "Hotel Azul", "Hotel Azul", "CDMX", "", 100.0, 16.0, 116.0,
			domorder.StatusConfirmed, nil).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(42), int64(7), "Cloro", nil, int64(2), 50.0, 100.0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(42, "CT-123456-ABC", "C-100", "Hotel Azul", "Hotel Azul",
			"CDMX", "", 100.0, 16.0, 116.0, "confirmado", nil, now))
	mock.ExpectQuery("FROM order_items").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(1, 42, 7, "Cloro", nil, 2, 50.0, 100.0))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), sampleOrder())

	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, now, created.CreatedAt)
	require.Len(t, created.Items, 1)
	assert.Equal(t, int64(42), created.Items[0].OrderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_DuplicateNumber(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&gomysql.MySQLError{Number: errDuplicateEntry, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), sampleOrder())

	require.ErrorIs(t, err, domorder.ErrOrderNumberConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_ItemFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), sampleOrder())

	require.EqualError(t, err, "fk violation")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_ReadBackFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(int64(42)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	created, err := repo.Create(context.Background(), sampleOrder())

	require.EqualError(t, err, "connection reset")
	assert.Nil(t, created)
	// No commit was issued, so the failed call left nothing behind.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_CommitFailure(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(42, "CT-123456-ABC", "C-100", "Hotel Azul", "Hotel Azul",
			"CDMX", "", 100.0, 16.0, 116.0, "confirmado", nil, time.Now()))
	mock.ExpectQuery("FROM order_items").
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(1, 42, 7, "Cloro", nil, 2, 50.0, 100.0))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	created, err := repo.Create(context.Background(), sampleOrder())

	require.EqualError(t, err, "commit failed")
	assert.Nil(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_Create_LastInsertIDError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no insert id")))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), sampleOrder())

	require.EqualError(t, err, "no insert id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_ListByClient(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE client_number = ? ORDER BY created_at DESC, id DESC")).
		WithArgs("C-100").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(2, "CT-2", "C-100", "A", "A", "X", "", 10.0, 1.6, 11.6, "confirmado", "urgente", now).
			AddRow(1, "CT-1", "C-100", "A", "A", "X", "", 20.0, 3.2, 23.2, "entregado", nil, now))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE order_id IN (?,?)")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(1, 1, 7, "Cloro", "CL-1", 1, 20.0, 20.0).
			AddRow(2, 2, 8, "Jabón", nil, 1, 10.0, 10.0))

	orders, err := repo.List(context.Background(), domorder.ListFilter{ClientNumber: "C-100"})

	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "urgente", orders[0].Notes)
	assert.Equal(t, "Jabón", orders[0].Items[0].ProductName)
	assert.Equal(t, "CL-1", orders[1].Items[0].ProductSKU)
	assert.Equal(t, domorder.StatusDelivered, orders[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByNumber_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("FROM orders WHERE order_number").
		WithArgs("CT-404").
		WillReturnRows(sqlmock.NewRows(orderCols))

	_, err := repo.GetByNumber(context.Background(), "CT-404")

	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
}

func TestCustomerRepository_GetByClientNumber(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE client_number").
		WithArgs("C-100").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(1, "C-100", "Hotel Azul", "HAZ010101AAA", "Reforma 10", nil, "CDMX", nil, "06600", nil, "555", time.Now()))

	c, err := repo.GetByClientNumber(context.Background(), "C-100")

	require.NoError(t, err)
	assert.Equal(t, "HAZ010101AAA", c.TaxID)
	assert.Empty(t, c.District)
	assert.Equal(t, "Reforma 10, CDMX, CP 06600", c.FullAddress())
}

func TestCustomerRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectExec("INSERT INTO customers").
		WillReturnError(&gomysql.MySQLError{Number: errDuplicateEntry})

	_, err := repo.Create(context.Background(), &domcustomer.Customer{ClientNumber: "C-100", ClientName: "X"})

	require.ErrorIs(t, err, domcustomer.ErrClientNumberExists)
}

func TestCustomerRepository_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows([]string{"client_number"}))
				mock.ExpectRollback()
			},
			wantErr: domcustomer.ErrCustomerNotFound,
		},
		{
			name: "has orders",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"client_number"}).AddRow("C-100"))
				mock.ExpectQuery("SELECT COUNT").WithArgs("C-100").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
				mock.ExpectRollback()
			},
			wantErr: domcustomer.ErrCustomerHasOrders,
		},
		{
			name: "deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
					WillReturnRows(sqlmock.NewRows([]string{"client_number"}).AddRow("C-100"))
				mock.ExpectQuery("SELECT COUNT").WithArgs("C-100").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectExec("DELETE FROM customers").WithArgs(int64(1)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			tt.setup(mock)

			err := NewCustomerRepository(db).Delete(context.Background(), 1)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

var (
	orderCols       = []string{"id", "customer_id", "customer", "product", "amount_cents", "status", "order_date", "created_at", "updated_at"}
	customerCols    = []string{"id", "name", "email", "phone", "status", "joined_at", "last_login_at", "orders", "avatar_key", "created_at", "updated_at"}
	transactionCols = []string{"id", "customer", "amount_cents", "payment_method", "status", "txn_date", "created_at"}
)

func day(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func TestOrderPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrderPostgres(db)
	now := time.Now().UTC()
	o := &model.Order{ID: "o-1", Customer: "Ana", Product: "Sneaker", AmountCents: 1999,
		Status: model.OrderPending, Date: day("2024-03-01"), CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs(o.ID, nil, o.Customer, o.Product, o.AmountCents, o.Status, "2024-03-01", now, now).
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow(o.ID, nil, o.Customer, o.Product, o.AmountCents, o.Status, o.Date, now, now))

	out, err := repo.Create(context.Background(), o)

	require.NoError(t, err)
	assert.Nil(t, out.CustomerID)
	assert.Equal(t, "Ana", out.Customer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_List_DateBounds(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrderPostgres(db)
	from := day("2024-03-01")
	f := repository.OrderFilter{Status: model.OrderShipped, Dates: repository.DateRange{From: &from}}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders WHERE status = \\$1 AND order_date >= \\$2$").
		WithArgs(model.OrderShipped, "2024-03-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT (.+) FROM orders WHERE status = \\$1 AND order_date >= \\$2 ORDER BY (.+) LIMIT \\$3 OFFSET \\$4").
		WithArgs(model.OrderShipped, "2024-03-01", 10, 0).
		WillReturnRows(sqlmock.NewRows(orderCols))

	res, err := repo.List(context.Background(), f, repository.PageQuery{Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_Stats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrderPostgres(db)

	mock.ExpectQuery("FROM orders").
		WithArgs(model.OrderPending, model.OrderShipped, model.OrderDelivered).
		WillReturnRows(sqlmock.NewRows([]string{"t", "p", "s", "d", "r"}).AddRow(6, 1, 2, 3, 50000))

	s, err := repo.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, model.OrderStats{Total: 6, Pending: 1, Shipped: 2, Delivered: 3, RevenueCents: 50000}, *s)
}

func TestOrderPostgres_SalesByDay(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrderPostgres(db)
	to := day("2024-03-31")

	mock.ExpectQuery("FROM orders WHERE order_date <= \\$1 GROUP BY order_date").
		WithArgs("2024-03-31").
		WillReturnRows(sqlmock.NewRows([]string{"date", "orders", "amount"}).
			AddRow("2024-03-01", 2, 3000).
			AddRow("2024-03-02", 1, 500))

	sales, err := repo.SalesByDay(context.Background(), repository.DateRange{To: &to})

	require.NoError(t, err)
	assert.Equal(t, []model.DailySales{
		{Date: "2024-03-01", Orders: 2, AmountCents: 3000},
		{Date: "2024-03-02", Orders: 1, AmountCents: 500},
	}, sales)
}

func TestOrderPostgres_TopProducts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewOrderPostgres(db)

	mock.ExpectQuery("SELECT product, COUNT\\(\\*\\) FROM orders GROUP BY product (.+) LIMIT \\$1 OFFSET \\$2").
		WithArgs(5, 0).
		WillReturnRows(sqlmock.NewRows([]string{"product", "orders"}).AddRow("Sneaker", 4))

	top, err := repo.TopProducts(context.Background(), repository.DateRange{}, 5)

	require.NoError(t, err)
	assert.Equal(t, []model.ProductSales{{Name: "Sneaker", Orders: 4}}, top)
}

func TestCustomerPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)
	last := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM customers WHERE id = \\$1").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c-1", "Ana", "ana@example.com", "", model.CustomerActive, last, last, 3, "", last, last))

	c, err := repo.FindByID(context.Background(), "c-1")

	require.NoError(t, err)
	assert.Equal(t, 3, c.OrderCount)
	require.NotNil(t, c.LastLoginAt)
	assert.True(t, last.Equal(*c.LastLoginAt))
}

func TestCustomerPostgres_Create_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)

	mock.ExpectQuery("INSERT INTO customers").WillReturnError(pgUnique("customers_email_key"))

	_, err = repo.Create(context.Background(), &model.Customer{ID: "c-1", Name: "Ana", Email: "ana@example.com"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestCustomerPostgres_Update_WritesJoined(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	joined := time.Date(2021, 6, 30, 0, 0, 0, 0, time.UTC)
	c := &model.Customer{ID: "c-1", Name: "Ana", Email: "ana@example.com", Status: model.CustomerActive, Joined: joined, UpdatedAt: now}

	mock.ExpectQuery("UPDATE customers SET (.+) joined_at = \\$6").
		WithArgs(c.ID, c.Name, c.Email, c.Phone, c.Status, joined, c.AvatarKey, now).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c-1", "Ana", "ana@example.com", "", model.CustomerActive, joined, nil, 0, "", now, now))

	out, err := NewCustomerPostgres(db).Update(context.Background(), c)

	require.NoError(t, err)
	assert.True(t, joined.Equal(out.Joined))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerPostgres_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCustomerPostgres(db)

	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM customers GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow(model.CustomerActive, 4))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		model.CustomerActive:   4,
		model.CustomerInactive: 0,
		model.CustomerBanned:   0,
	}, counts)
}

func TestTransactionPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTransactionPostgres(db)
	f := repository.TransactionFilter{Customer: "an"}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM transactions WHERE customer ILIKE \\$1").
		WithArgs("%an%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM transactions WHERE customer ILIKE \\$1 ORDER BY").
		WithArgs("%an%", nil, 0).
		WillReturnRows(sqlmock.NewRows(transactionCols).
			AddRow("t-1", "Ana", 1999, "Card", model.TransactionCompleted, day("2024-03-01"), time.Now()))

	res, err := repo.List(context.Background(), f, repository.PageQuery{Limit: 0})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Card", res.Items[0].PaymentMethod)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionPostgres_Delete_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewTransactionPostgres(db)

	mock.ExpectExec("DELETE FROM transactions WHERE id = ?").
		WithArgs("t-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "t-9"), sql.ErrNoRows)
}

package model

import "time"

// Order statuses.
const (
	OrderPending   = "Pending"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
)

// Transaction statuses.
const (
	TransactionPending   = "Pending"
	TransactionCompleted = "Completed"
	TransactionFailed    = "Failed"
)

// Customer statuses.
const (
	CustomerActive   = "Active"
	CustomerInactive = "Inactive"
	CustomerBanned   = "Banned"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Order is a storefront order. Customer holds the name at order time;
// CustomerID links to a customer record while one exists.
type Order struct {
	ID          string    `json:"id"`
	CustomerID  *string   `json:"customer_id"`
	Customer    string    `json:"customer"`
	Product     string    `json:"product"`
	AmountCents int64     `json:"amount_cents"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderStats summarises orders.
type OrderStats struct {
	Total        int   `json:"total"`
	Pending      int   `json:"pending"`
	Shipped      int   `json:"shipped"`
	Delivered    int   `json:"delivered"`
	RevenueCents int64 `json:"revenue_cents"`
}

// Customer is a storefront shopper.
type Customer struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Status      string     `json:"status"`
	Joined      time.Time  `json:"joined"`
	LastLoginAt *time.Time `json:"last_login_at"`
	OrderCount  int        `json:"orders"`
	AvatarKey   string     `json:"avatar_key,omitempty"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CustomerDetail is a customer with its order history.
type CustomerDetail struct {
	Customer
	Orders []Order `json:"order_history"`
}

// Transaction is a payment record.
type Transaction struct {
	ID            string    `json:"id"`
	Customer      string    `json:"customer"`
	AmountCents   int64     `json:"amount_cents"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionStats summarises transactions.
type TransactionStats struct {
	Total          int   `json:"total"`
	Completed      int   `json:"completed"`
	Pending        int   `json:"pending"`
	Failed         int   `json:"failed"`
	CompletedCents int64 `json:"completed_cents"`
}

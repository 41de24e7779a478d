package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backoffice/internal/model"
	"backoffice/internal/repository"
	"backoffice/internal/validation"
)

// OrderInput is the create/update payload for an order.
type OrderInput struct {
	CustomerID  *string `json:"customer_id" validate:"omitempty,uuid"`
	Customer    string  `json:"customer" validate:"required,max=200"`
	Product     string  `json:"product" validate:"required,max=200"`
	AmountCents int64   `json:"amount_cents" validate:"gte=0"`
	Status      string  `json:"status" validate:"omitempty,oneof=Pending Shipped Delivered"`
	Date        string  `json:"date" validate:"required,date"`
}

// OrderService manages orders.
type OrderService interface {
	Create(ctx context.Context, in OrderInput) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, f OrderFilter, limit, offset int) (*ListResult[model.Order], error)
	Update(ctx context.Context, id string, in OrderInput) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.OrderStats, error)
	Export(ctx context.Context, f OrderFilter) ([]model.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	customers repository.CustomerRepository
}

func NewOrderService(repo repository.OrderRepository, customers repository.CustomerRepository) OrderService {
	return &orderService{repo: repo, customers: customers}
}

// apply validates in and copies it onto o.
func (s *orderService) apply(ctx context.Context, in OrderInput, o *model.Order) error {
	in.Customer = strings.TrimSpace(in.Customer)
	in.Product = strings.TrimSpace(in.Product)
	if in.CustomerID != nil && strings.TrimSpace(*in.CustomerID) == "" {
		in.CustomerID = nil
	}
	if in.Status == "" {
		in.Status = model.OrderPending
	}
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.CustomerID != nil {
		if _, err := s.customers.FindByID(ctx, *in.CustomerID); err != nil {
			if isNotFound(err) {
				return validation.Field("customer_id", "must reference an existing customer")
			}
			return err
		}
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return validation.Field("date", "must be a date (YYYY-MM-DD)")
	}
	o.CustomerID, o.Customer, o.Product = in.CustomerID, in.Customer, in.Product
	o.AmountCents, o.Status, o.Date = in.AmountCents, in.Status, date
	return nil
}

func (s *orderService) Create(ctx context.Context, in OrderInput) (*model.Order, error) {
	now := nowFunc()
	o := &model.Order{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	if err := s.apply(ctx, in, o); err != nil {
		return nil, err
	}
	out, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, translate(err, "order")
	}
	return out, nil
}

func (s *orderService) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "order")
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, f OrderFilter, limit, offset int) (*ListResult[model.Order], error) {
	res, err := s.repo.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Order]{Items: res.Items, Total: res.Total}, nil
}

func (s *orderService) Update(ctx context.Context, id string, in OrderInput) (*model.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "order")
	}
	if err := s.apply(ctx, in, o); err != nil {
		return nil, err
	}
	o.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, o)
	if err != nil {
		return nil, translate(err, "order")
	}
	return out, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	return translate(s.repo.Delete(ctx, id), "order")
}

func (s *orderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	return s.repo.Stats(ctx)
}

func (s *orderService) Export(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	res, err := s.repo.List(ctx, f, everything)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// CustomerInput is the create/update payload for a customer.
type CustomerInput struct {
	Name   string `json:"name" validate:"required,max=200"`
	Email  string `json:"email" validate:"required,email,max=254"`
	Phone  string `json:"phone" validate:"max=50"`
	Status string `json:"status" validate:"omitempty,oneof=Active Inactive Banned"`
	Joined string `json:"joined" validate:"omitempty,date"`
}

// CustomerService manages storefront customers.
type CustomerService interface {
	Create(ctx context.Context, in CustomerInput) (*model.Customer, error)
	// Get returns the customer with its order history.
	Get(ctx context.Context, id string) (*model.CustomerDetail, error)
	List(ctx context.Context, f CustomerFilter, limit, offset int) (*ListResult[model.Customer], error)
	Update(ctx context.Context, id string, in CustomerInput) (*model.Customer, error)
	// Delete removes the customer; its orders keep the customer name.
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, f CustomerFilter) ([]model.Customer, error)
	SetAvatar(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Customer, error)
}

type customerService struct {
	repo   repository.CustomerRepository
	orders repository.OrderRepository
	media  MediaService
	log    *zap.Logger
}

func NewCustomerService(repo repository.CustomerRepository, orders repository.OrderRepository, media MediaService, log *zap.Logger) CustomerService {
	return &customerService{repo: repo, orders: orders, media: media, log: log}
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Status == "" {
		in.Status = model.CustomerActive
	}
}

// parseJoined returns the joined date, or def when it is blank.
func parseJoined(joined string, def time.Time) (time.Time, error) {
	if joined == "" {
		return def, nil
	}
	d, err := ParseDate(joined)
	if err != nil {
		return time.Time{}, validation.Field("joined", "must be a date (YYYY-MM-DD)")
	}
	return d, nil
}

func (s *customerService) Create(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := nowFunc()
	joined, err := parseJoined(in.Joined, now)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, &model.Customer{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Status:    in.Status,
		Joined:    joined,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, translate(err, "customer email")
	}
	return c, nil
}

func (s *customerService) Get(ctx context.Context, id string) (*model.CustomerDetail, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "customer")
	}
	orders, err := s.orders.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.AvatarURL = s.media.URL(ctx, c.AvatarKey)
	return &model.CustomerDetail{Customer: *c, Orders: orders}, nil
}

func (s *customerService) List(ctx context.Context, f CustomerFilter, limit, offset int) (*ListResult[model.Customer], error) {
	res, err := s.repo.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Customer]{Items: res.Items, Total: res.Total}, nil
}

func (s *customerService) Update(ctx context.Context, id string, in CustomerInput) (*model.Customer, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "customer")
	}
	joined, err := parseJoined(in.Joined, c.Joined)
	if err != nil {
		return nil, err
	}
	c.Name, c.Email, c.Phone, c.Status, c.Joined = in.Name, in.Email, in.Phone, in.Status, joined
	c.UpdatedAt = nowFunc()
	out, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, translate(err, "customer email")
	}
	return out, nil
}

func (s *customerService) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translate(err, "customer")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err, "customer")
	}
	if err := s.media.Delete(ctx, c.AvatarKey); err != nil {
		s.log.Warn("orphaned object", zap.String("key", c.AvatarKey), zap.Error(err))
	}
	return nil
}

func (s *customerService) Export(ctx context.Context, f CustomerFilter) ([]model.Customer, error) {
	res, err := s.repo.List(ctx, f, everything)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

func (s *customerService) SetAvatar(ctx context.Context, id string, r io.Reader, filename string, size int64) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "customer")
	}
	var out *model.Customer
	err = replaceImage(ctx, s.media, s.log, c.AvatarKey, "customers", r, filename, size, func(key string) error {
		c.AvatarKey = key
		c.UpdatedAt = nowFunc()
		updated, err := s.repo.Update(ctx, c)
		if err != nil {
			return translate(err, "customer")
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.AvatarURL = s.media.URL(ctx, out.AvatarKey)
	return out, nil
}

// TransactionInput is the create payload for a transaction.
type TransactionInput struct {
	Customer      string `json:"customer" validate:"required,max=200"`
	AmountCents   int64  `json:"amount_cents" validate:"gte=0"`
	PaymentMethod string `json:"payment_method" validate:"max=50"`
	Status        string `json:"status" validate:"omitempty,oneof=Pending Completed Failed"`
	Date          string `json:"date" validate:"required,date"`
}

// TransactionService manages payment records. Transactions are immutable once created.
type TransactionService interface {
	Create(ctx context.Context, in TransactionInput) (*model.Transaction, error)
	Get(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, f TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.TransactionStats, error)
	Export(ctx context.Context, f TransactionFilter) ([]model.Transaction, error)
}

type transactionService struct {
	repo repository.TransactionRepository
}

func NewTransactionService(repo repository.TransactionRepository) TransactionService {
	return &transactionService{repo: repo}
}

func (s *transactionService) Create(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	in.Customer = strings.TrimSpace(in.Customer)
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.Status == "" {
		in.Status = model.TransactionPending
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	date, err := ParseDate(in.Date)
	if err != nil {
		return nil, validation.Field("date", "must be a date (YYYY-MM-DD)")
	}
	t, err := s.repo.Create(ctx, &model.Transaction{
		ID:            uuid.New().String(),
		Customer:      in.Customer,
		AmountCents:   in.AmountCents,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		Date:          date,
		CreatedAt:     nowFunc(),
	})
	if err != nil {
		return nil, translate(err, "transaction")
	}
	return t, nil
}

func (s *transactionService) Get(ctx context.Context, id string) (*model.Transaction, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err, "transaction")
	}
	return t, nil
}

func (s *transactionService) List(ctx context.Context, f TransactionFilter, limit, offset int) (*ListResult[model.Transaction], error) {
	res, err := s.repo.List(ctx, f, pageQuery(limit, offset))
	if err != nil {
		return nil, err
	}
	return &ListResult[model.Transaction]{Items: res.Items, Total: res.Total}, nil
}

func (s *transactionService) Delete(ctx context.Context, id string) error {
	return translate(s.repo.Delete(ctx, id), "transaction")
}

func (s *transactionService) Stats(ctx context.Context) (*model.TransactionStats, error) {
	return s.repo.Stats(ctx)
}

func (s *transactionService) Export(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	res, err := s.repo.List(ctx, f, everything)
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

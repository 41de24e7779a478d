package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.
// A missing row is reported as sql.ErrNoRows.

import (
	"context"
	"errors"
	"time"

	"backoffice/internal/model"
)

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate record")

// ErrReferenced is returned when a delete is blocked by a foreign key.
var ErrReferenced = errors.New("record is referenced")

// PageQuery holds limit/offset pagination parameters.
// A Limit of zero or less returns every row.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}

// DateRange bounds a query by calendar date; nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

type ProductFilter struct {
	Status     string
	Query      string
	CategoryID string
}

type OrderFilter struct {
	Status   string
	Customer string
	Product  string
	Dates    DateRange
}

type CustomerFilter struct {
	Status string
	Query  string
}

type TransactionFilter struct {
	Status   string
	Customer string
	Dates    DateRange
}

type UserFilter struct {
	Status string
	Query  string
}

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	// FindByName matches case-insensitively within a feature.
	FindByName(ctx context.Context, feature, name string) (*model.Category, error)
	// List returns categories of one feature, or all when feature is empty.
	List(ctx context.Context, feature string, pq PageQuery) (*PageResult[model.Category], error)
	Update(ctx context.Context, c *model.Category) (*model.Category, error)
	// Delete removes the category; its products become uncategorized.
	Delete(ctx context.Context, id string) error
	CountProducts(ctx context.Context, id string) (int, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter, pq PageQuery) (*PageResult[model.Product], error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.ProductStats, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, f OrderFilter, pq PageQuery) (*PageResult[model.Order], error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Order, error)
	Update(ctx context.Context, o *model.Order) (*model.Order, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.OrderStats, error)
	SalesByDay(ctx context.Context, r DateRange) ([]model.DailySales, error)
	TopProducts(ctx context.Context, r DateRange, limit int) ([]model.ProductSales, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, f CustomerFilter, pq PageQuery) (*PageResult[model.Customer], error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, t *model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	List(ctx context.Context, f TransactionFilter, pq PageQuery) (*PageResult[model.Transaction], error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*model.TransactionStats, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f UserFilter, pq PageQuery) (*PageResult[model.User], error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, roleID string) (int, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type RoleRepository interface {
	Create(ctx context.Context, r *model.Role) (*model.Role, error)
	FindByID(ctx context.Context, id string) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, r *model.Role) (*model.Role, error)
	Delete(ctx context.Context, id string) error
}

type ContentRepository interface {
	Create(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error)
	FindByID(ctx context.Context, kind, id string) (*model.ContentBlock, error)
	List(ctx context.Context, kind string) ([]model.ContentBlock, error)
	Count(ctx context.Context, kind string) (int, error)
	// CountByField counts blocks of kind whose top-level data field equals value.
	CountByField(ctx context.Context, kind, field, value string) (int, error)
	Update(ctx context.Context, b *model.ContentBlock) (*model.ContentBlock, error)
	Delete(ctx context.Context, kind, id string) error
	// Reorder assigns positions 0..n-1 following ids.
	Reorder(ctx context.Context, kind string, ids []string) error
}

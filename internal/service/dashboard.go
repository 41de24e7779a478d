package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"backoffice/internal/model"
	"backoffice/internal/repository"
)

// TopProductsLimit is how many products the sales report ranks.
const TopProductsLimit = 5

// DashboardService aggregates headline numbers and analytics.
type DashboardService interface {
	Stats(ctx context.Context) (*model.DashboardStats, error)
	// Report summarises sales within r; open bounds are unbounded.
	Report(ctx context.Context, r DateRange) (*model.SalesReport, error)
}

type dashboardService struct {
	products     repository.ProductRepository
	orders       repository.OrderRepository
	customers    repository.CustomerRepository
	users        repository.UserRepository
	transactions repository.TransactionRepository
}

func NewDashboardService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	users repository.UserRepository,
	transactions repository.TransactionRepository,
) DashboardService {
	return &dashboardService{
		products:     products,
		orders:       orders,
		customers:    customers,
		users:        users,
		transactions: transactions,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		st, err := s.products.Stats(ctx)
		if err == nil {
			out.Products = *st
		}
		return err
	})
	g.Go(func() error {
		st, err := s.orders.Stats(ctx)
		if err == nil {
			out.Orders = *st
		}
		return err
	})
	g.Go(func() error {
		counts, err := s.customers.CountByStatus(ctx)
		out.Customers = counts
		return err
	})
	g.Go(func() error {
		n, err := s.users.Count(ctx)
		out.Users = n
		return err
	})
	g.Go(func() error {
		st, err := s.transactions.Stats(ctx)
		if err == nil {
			out.Transactions = *st
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// customerStatuses fixes the order of the customer distribution.
var customerStatuses = []string{model.CustomerActive, model.CustomerInactive, model.CustomerBanned}

func (s *dashboardService) Report(ctx context.Context, r DateRange) (*model.SalesReport, error) {
	var (
		sales  []model.DailySales
		top    []model.ProductSales
		counts map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sales, err = s.orders.SalesByDay(gctx, r)
		return err
	})
	g.Go(func() (err error) {
		top, err = s.orders.TopProducts(gctx, r, TopProductsLimit)
		return err
	})
	g.Go(func() (err error) {
		counts, err = s.customers.CountByStatus(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &model.SalesReport{
		Sales:                sales,
		TopProducts:          top,
		CustomerDistribution: make([]model.LabelCount, 0, len(customerStatuses)),
	}
	if r.From != nil {
		out.From = r.From.Format(model.DateLayout)
	}
	if r.To != nil {
		out.To = r.To.Format(model.DateLayout)
	}
	for _, d := range sales {
		out.Orders += d.Orders
		out.RevenueCents += d.AmountCents
	}
	for _, st := range customerStatuses {
		out.CustomerDistribution = append(out.CustomerDistribution, model.LabelCount{Label: st, Count: counts[st]})
	}
	return out, nil
}

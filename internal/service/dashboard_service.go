package service

import (
	"context"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"

	"golang.org/x/sync/errgroup"
)

const recentOrdersLimit = 10

type DashboardService struct {
	orders   OrderRepository
	products ProductRepository
	users    UserRepository
	// reutiliza withCustomers del servicio de órdenes
	orderSvc *OrderService
}

func NewDashboardService(orders OrderRepository, products ProductRepository, users UserRepository, orderSvc *OrderService) *DashboardService {
	return &DashboardService{orders: orders, products: products, users: users, orderSvc: orderSvc}
}

// Stats lanza las consultas en paralelo; la primera que falla cancela el resto.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var (
		stats  dto.DashboardStats
		recent []*model.Order
	)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalProducts, err = s.products.Count(gctx, model.ProductFilter{ActiveOnly: true})
		return err
	})
	g.Go(func() (err error) {
		stats.TotalOrders, err = s.orders.Count(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalRevenue, err = s.orders.Revenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.orders.Recent(gctx, recentOrdersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows, err := s.orderSvc.withCustomers(ctx, recent)
	if err != nil {
		return nil, err
	}
	stats.RecentOrders = rows
	return &stats, nil
}

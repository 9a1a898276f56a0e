package service

import (
	"context"
	"sync"
	"testing"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ptr[T any](v T) *T { return &v }

func TestProductLifecycle(t *testing.T) {
	s := NewProductService(memstore.NewProducts())
	ctx := context.Background()

	p, err := s.Create(ctx, dto.CreateProductRequest{
		Name:        " Banarasi saree ",
		Description: "Handwoven silk with zari border",
		Price:       ptr(2499.0),
		Category:    model.CategorySarees,
		Images:      []string{"s1.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Banarasi saree", p.Name)
	assert.True(t, p.IsActive)

	hidden, err := s.Create(ctx, dto.CreateProductRequest{
		Name:        "Denim jacket",
		Description: "Classic western jacket",
		Price:       ptr(1299.0),
		Category:    model.CategoryWestern,
		Images:      []string{"w1.jpg"},
		IsActive:    ptr(false),
	})
	require.NoError(t, err)

	public, err := s.List(ctx, model.ProductFilter{ActiveOnly: true}, 1, 20)
	require.NoError(t, err)
	require.Len(t, public.Products, 1)
	assert.EqualValues(t, 1, public.Pagination.TotalItems)

	all, err := s.List(ctx, model.ProductFilter{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all.Products, 2)
	assert.EqualValues(t, 1, all.Pagination.CurrentPage)

	bySearch, err := s.List(ctx, model.ProductFilter{Search: "silk"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, bySearch.Products, 1)

	byCategory, err := s.List(ctx, model.ProductFilter{Category: "WESTERN"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, byCategory.Products, 1)

	_, err = s.Get(ctx, hidden.ID.Hex(), true)
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = s.Get(ctx, hidden.ID.Hex(), false)
	assert.NoError(t, err)

	updated, err := s.Update(ctx, p.ID.Hex(), dto.UpdateProductRequest{Price: ptr(1999.0)})
	require.NoError(t, err)
	assert.Equal(t, 1999.0, updated.Price)
	assert.Equal(t, "Banarasi saree", updated.Name)

	require.NoError(t, s.Delete(ctx, p.ID.Hex()))
	assert.ErrorIs(t, s.Delete(ctx, p.ID.Hex()), ErrProductNotFound)
	_, err = s.Update(ctx, p.ID.Hex(), dto.UpdateProductRequest{})
	assert.ErrorIs(t, err, ErrProductNotFound)
	_, err = s.Get(ctx, "bogus", true)
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

func settingsReq(bank string) dto.PaymentSettingsRequest {
	return dto.PaymentSettingsRequest{BankName: bank, AccountNumber: "0001", UPIID: "shop@upi"}
}

func TestPaymentSettingsSingleActive(t *testing.T) {
	repo := memstore.NewPaymentSettings()
	s := NewPaymentSettingsService(repo)
	ctx := context.Background()
	admin := primitive.NewObjectID().Hex()

	_, err := s.Active(ctx)
	assert.ErrorIs(t, err, ErrSettingsNotFound)

	first, err := s.Create(ctx, admin, settingsReq("SBI"))
	require.NoError(t, err)
	second, err := s.Create(ctx, admin, settingsReq("HDFC"))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ActiveCount())

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, admin, active.CreatedBy.Hex())

	req := settingsReq("SBI main")
	req.IsActive = ptr(true)
	_, err = s.Update(ctx, first.ID.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ActiveCount())
	active, err = s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
	assert.Equal(t, "SBI main", active.BankName)

	toggled, err := s.Toggle(ctx, second.ID.Hex())
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)
	assert.Equal(t, 1, repo.ActiveCount())

	toggled, err = s.Toggle(ctx, second.ID.Hex())
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.Equal(t, 0, repo.ActiveCount())

	// update sin isActive conserva el estado
	kept, err := s.Update(ctx, second.ID.Hex(), settingsReq("HDFC 2"))
	require.NoError(t, err)
	assert.False(t, kept.IsActive)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.Delete(ctx, first.ID.Hex()))
	assert.ErrorIs(t, s.Delete(ctx, first.ID.Hex()), ErrSettingsNotFound)
	_, err = s.Toggle(ctx, first.ID.Hex())
	assert.ErrorIs(t, err, ErrSettingsNotFound)
}

func TestPaymentSettingsConcurrentActivation(t *testing.T) {
	repo := memstore.NewPaymentSettings()
	s := NewPaymentSettingsService(repo)
	ctx := context.Background()

	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		ps, err := s.Create(ctx, "", settingsReq("bank"))
		require.NoError(t, err)
		ids = append(ids, ps.ID.Hex())
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := ids[i%len(ids)]
			if i%2 == 0 {
				_, _ = s.Toggle(ctx, id)
				return
			}
			req := settingsReq("bank")
			req.IsActive = ptr(true)
			_, _ = s.Update(ctx, id, req)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, repo.ActiveCount(), 1)
}

func TestPaymentSettingsConflictFromOtherWriter(t *testing.T) {
	repo := memstore.NewPaymentSettings()
	s := NewPaymentSettingsService(repo)
	ctx := context.Background()

	ps, err := s.Create(ctx, "", settingsReq("SBI"))
	require.NoError(t, err)
	_, err = s.Toggle(ctx, ps.ID.Hex())
	require.NoError(t, err)

	// otro proceso activa un registro sin pasar por este servicio
	require.NoError(t, repo.Insert(ctx, &model.PaymentSettings{BankName: "rogue", IsActive: true}))

	req := settingsReq("SBI")
	req.IsActive = ptr(true)
	// DeactivateOthers apaga el ajeno antes de escribir, así que no hay conflicto
	_, err = s.Update(ctx, ps.ID.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.ActiveCount())

	err = repo.Insert(ctx, &model.PaymentSettings{BankName: "rogue 2", IsActive: true})
	assert.ErrorIs(t, settingsErr(err), ErrConflict)
}

func TestDashboardStats(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	d := NewDashboardService(f.orders, f.products, f.users, f.svc)

	first := f.place(t)
	f.place(t)
	_, _, err := f.svc.UpdateStatus(ctx, first.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusCancelled})
	require.NoError(t, err)
	require.NoError(t, f.users.Insert(ctx, &model.User{Name: "Admin", Email: "admin@shop.test", IsAdmin: true}))
	require.NoError(t, f.products.Insert(ctx, &model.Product{Name: "Old", IsActive: false}))

	stats, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalProducts)
	assert.EqualValues(t, 2, stats.TotalOrders)
	assert.EqualValues(t, 2, stats.TotalUsers)
	assert.Equal(t, 1399.0, stats.TotalRevenue)
	require.Len(t, stats.RecentOrders, 2)
	assert.Equal(t, "Asha", stats.RecentOrders[0].Customer.Name)
}

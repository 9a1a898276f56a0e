package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/notify"
	"storefront-api/internal/pricing"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeNotifier struct {
	report *notify.Report
	calls  []*model.Order
}

func (f *fakeNotifier) Enqueue(o *model.Order, _ *model.User) <-chan notify.Report {
	f.calls = append(f.calls, o)
	out := make(chan notify.Report, 1)
	if f.report != nil {
		out <- *f.report
	}
	close(out)
	return out
}

type orderFixture struct {
	svc      *OrderService
	orders   *memstore.Orders
	products *memstore.Products
	users    *memstore.Users
	buyer    *model.User
	other    *model.User
	a, b     *model.Product
	now      time.Time
}

func newOrderFixture(t *testing.T, policy TransitionPolicy, n Notifier) *orderFixture {
	t.Helper()
	ctx := context.Background()
	f := &orderFixture{
		orders:   memstore.NewOrders(),
		products: memstore.NewProducts(),
		users:    memstore.NewUsers(),
		now:      time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.buyer = &model.User{Name: "Asha", Email: "asha@shop.test", Phone: "9876543210"}
	f.other = &model.User{Name: "Ravi", Email: "ravi@shop.test"}
	require.NoError(t, f.users.Insert(ctx, f.buyer))
	require.NoError(t, f.users.Insert(ctx, f.other))

	f.a = &model.Product{Name: "Silk saree", Price: 500, Category: model.CategorySarees, Images: []string{"a1.jpg", "a2.jpg"}, IsActive: true}
	f.b = &model.Product{Name: "Cotton kurti", Price: 300, Category: model.CategoryKurtis, Images: []string{"b1.jpg"}, IsActive: true}
	require.NoError(t, f.products.Insert(ctx, f.a))
	require.NoError(t, f.products.Insert(ctx, f.b))

	f.svc = NewOrderService(f.orders, f.products, f.users, n, policy)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *orderFixture) request(total float64) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: f.a.ID.Hex(), Quantity: 2, Size: "M"},
			{ProductID: f.b.ID.Hex(), Quantity: 1},
		},
		TotalAmount:   total,
		ShippingInfo:  dto.ShippingDTO{FullName: "Asha", Phone: "9876543210", City: "Pune"},
		PaymentMethod: model.MethodUPI,
	}
}

func (f *orderFixture) place(t *testing.T) *model.Order {
	t.Helper()
	o, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(1399))
	require.NoError(t, err)
	return o
}

func countOrders(t *testing.T, r *memstore.Orders) int64 {
	t.Helper()
	n, err := r.Count(context.Background(), "")
	require.NoError(t, err)
	return n
}

func TestCreateOrderAcceptsMatchingTotal(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)

	o, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(1399))
	require.NoError(t, err)

	assert.Equal(t, 1399.0, o.TotalAmount)
	assert.Equal(t, float64(pricing.ShippingCost), o.ShippingCost)
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, model.PaymentPending, o.PaymentStatus)
	assert.Equal(t, f.buyer.ID, o.UserID)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Silk saree", o.Items[0].Name)
	assert.Equal(t, "a1.jpg", o.Items[0].Image)
	assert.Equal(t, "M", o.Items[0].Size)
	assert.Equal(t, "Pune", o.ShippingInfo.City)
	assert.EqualValues(t, 1, countOrders(t, f.orders))
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	o := f.place(t)

	f.a.Price = 900
	f.a.Name = "Renamed"
	require.NoError(t, f.products.Replace(context.Background(), f.a))

	stored, err := f.orders.FindByID(context.Background(), o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Items[0].Price)
	assert.Equal(t, "Silk saree", stored.Items[0].Name)
	assert.Equal(t, 1399.0, stored.TotalAmount)
}

func TestCreateOrderTolerance(t *testing.T) {
	cases := []struct {
		claimed float64
		ok      bool
	}{
		{1399, true},
		{1400, true},
		{1398, true},
		{1400.01, false},
		{1450, false},
		{0, false},
	}
	for _, tc := range cases {
		f := newOrderFixture(t, PermissivePolicy(), nil)
		_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), f.request(tc.claimed))
		if tc.ok {
			assert.NoError(t, err, "claimed %v", tc.claimed)
			continue
		}
		var mismatch *pricing.MismatchError
		require.ErrorAs(t, err, &mismatch, "claimed %v", tc.claimed)
		assert.Equal(t, 1399.0, mismatch.Calculated)
		assert.Equal(t, tc.claimed, mismatch.Provided)
		assert.Zero(t, countOrders(t, f.orders))
	}
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	req := f.request(99)
	req.Items = nil

	_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), req)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, countOrders(t, f.orders))
}

func TestCreateOrderUnknownProductPersistsNothing(t *testing.T) {
	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		f := newOrderFixture(t, PermissivePolicy(), nil)
		req := f.request(1399)
		req.Items = append(req.Items, dto.OrderItemRequest{ProductID: id, Quantity: 1})

		_, err := f.svc.CreateOrder(context.Background(), f.buyer.ID.Hex(), req)
		require.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, "Product "+id+" not found", err.Error())
		assert.Zero(t, countOrders(t, f.orders))
	}
}

func TestCreateOrderPaymentReferences(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()

	req := f.request(1399)
	req.PaymentMethod = model.MethodStripe
	req.PaymentIntentID = "pi_123"
	req.TransactionNumber = "UTR999"
	o, err := f.svc.CreateOrder(ctx, f.buyer.ID.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", o.PaymentIntentID)
	assert.Empty(t, o.TransactionNumber)

	req = f.request(1399)
	req.PaymentIntentID = "pi_ignored"
	req.TransactionNumber = "  UTR999 "
	o, err = f.svc.CreateOrder(ctx, f.buyer.ID.Hex(), req)
	require.NoError(t, err)
	assert.Empty(t, o.PaymentIntentID)
	assert.Equal(t, "UTR999", o.TransactionNumber)

	req = f.request(1399)
	req.TransactionNumber = "   "
	o, err = f.svc.CreateOrder(ctx, f.buyer.ID.Hex(), req)
	require.NoError(t, err)
	assert.Empty(t, o.TransactionNumber)
}

func TestConfirmPayment(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	o := f.place(t)

	_, err := f.svc.ConfirmPayment(ctx, o.ID.Hex(), f.buyer.ID.Hex(), "   ")
	assert.ErrorIs(t, err, ErrBlankTransaction)

	_, err = f.svc.ConfirmPayment(ctx, o.ID.Hex(), f.other.ID.Hex(), "UTR1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.svc.ConfirmPayment(ctx, "bogus", f.buyer.ID.Hex(), "UTR1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	got, err := f.svc.ConfirmPayment(ctx, o.ID.Hex(), f.buyer.ID.Hex(), " UTR1 ")
	require.NoError(t, err)
	assert.Equal(t, "UTR1", got.TransactionNumber)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, model.StatusPending, got.Status)

	got, err = f.svc.ConfirmPayment(ctx, o.ID.Hex(), f.buyer.ID.Hex(), "UTR2")
	require.NoError(t, err)
	assert.Equal(t, "UTR2", got.TransactionNumber)

	// el otro usuario nunca ve la orden
	_, err = f.svc.GetForUser(ctx, o.ID.Hex(), f.other.ID.Hex())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMarkPaymentComplete(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	o := f.place(t)

	got, err := f.svc.MarkPaymentComplete(ctx, o.ID.Hex(), f.buyer.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
	require.NotNil(t, got.PaymentCompletedAt)
	assert.Equal(t, f.now, *got.PaymentCompletedAt)

	before, err := f.orders.FindByID(ctx, o.ID.Hex())
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	_, err = f.svc.MarkPaymentComplete(ctx, o.ID.Hex(), f.buyer.ID.Hex())
	assert.ErrorIs(t, err, ErrNotPending)

	after, err := f.orders.FindByID(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = f.svc.MarkPaymentComplete(ctx, o.ID.Hex(), f.other.ID.Hex())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatusShippedSetsEstimate(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	o := f.place(t)

	got, ch, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{
		Status:         model.StatusShipped,
		TrackingNumber: "TRK-1",
		Notes:          "fragile",
	})
	require.NoError(t, err)
	assert.Nil(t, ch)
	require.NotNil(t, got.EstimatedDelivery)
	assert.Equal(t, f.now.Add(7*24*time.Hour), *got.EstimatedDelivery)
	assert.Equal(t, "TRK-1", got.TrackingNumber)
	assert.Equal(t, "fragile", got.Notes)

	// un segundo envío conserva la estimación y los datos previos
	f.now = f.now.Add(48 * time.Hour)
	got, _, err = f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusShipped})
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(-48*time.Hour).Add(7*24*time.Hour), *got.EstimatedDelivery)
	assert.Equal(t, "TRK-1", got.TrackingNumber)
}

func TestUpdateStatusConfirmedEnqueuesNotification(t *testing.T) {
	report := &notify.Report{OrderID: "x", Results: []notify.Result{{Channel: "queue", Success: true}}}
	n := &fakeNotifier{report: report}
	f := newOrderFixture(t, PermissivePolicy(), n)
	ctx := context.Background()
	o := f.place(t)

	got, ch, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	require.NotNil(t, ch)
	r := notify.Await(ch, time.Second)
	require.NotNil(t, r)
	assert.Len(t, n.calls, 1)

	// otro estado no notifica
	_, ch, err = f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusShipped})
	require.NoError(t, err)
	assert.Nil(t, ch)
	assert.Len(t, n.calls, 1)
}

func TestUpdateStatusNotificationFailureKeepsUpdate(t *testing.T) {
	n := &fakeNotifier{report: &notify.Report{Results: []notify.Result{{Channel: "whatsapp", Error: "down"}}}}
	f := newOrderFixture(t, PermissivePolicy(), n)
	ctx := context.Background()
	o := f.place(t)

	_, ch, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Nil(t, notify.Await(ch, time.Second))

	stored, err := f.orders.FindByID(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
}

func TestUpdateStatusOwnerMissingSkipsNotification(t *testing.T) {
	n := &fakeNotifier{}
	f := newOrderFixture(t, PermissivePolicy(), n)
	ctx := context.Background()

	o := &model.Order{UserID: primitive.NewObjectID(), Status: model.StatusPending}
	require.NoError(t, f.orders.Insert(ctx, o))

	got, ch, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusConfirmed})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Nil(t, ch)
	assert.Empty(t, n.calls)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	o := f.place(t)

	_, _, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID().Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusShipped})
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, _, err = f.svc.UpdateStatus(ctx, "bogus", dto.UpdateOrderStatusRequest{Status: model.StatusShipped})
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

func TestUpdateStatusPolicies(t *testing.T) {
	ctx := context.Background()
	deliver := func(f *orderFixture) *model.Order {
		o := f.place(t)
		for _, s := range []model.OrderStatus{model.StatusConfirmed, model.StatusShipped, model.StatusDelivered} {
			_, _, err := f.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: s})
			require.NoError(t, err)
		}
		return o
	}

	loose := newOrderFixture(t, PermissivePolicy(), nil)
	o := deliver(loose)
	got, _, err := loose.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)

	strict := newOrderFixture(t, StrictPolicy(), nil)
	o = deliver(strict)
	_, _, err = strict.svc.UpdateStatus(ctx, o.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusPending})
	require.ErrorIs(t, err, ErrTransitionDenied)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Final)

	stored, err := strict.orders.FindByID(ctx, o.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, model.StatusDelivered, stored.Status)
}

func TestCompletePaymentByIntent(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	req := f.request(1399)
	req.PaymentMethod = model.MethodStripe
	req.PaymentIntentID = "pi_42"
	o, err := f.svc.CreateOrder(ctx, f.buyer.ID.Hex(), req)
	require.NoError(t, err)

	got, err := f.svc.CompletePaymentByIntent(ctx, "pi_42")
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, model.StatusPending, got.Status)
	require.NotNil(t, got.PaymentCompletedAt)

	f.now = f.now.Add(time.Hour)
	again, err := f.svc.CompletePaymentByIntent(ctx, "pi_42")
	require.NoError(t, err)
	assert.Equal(t, *got.PaymentCompletedAt, *again.PaymentCompletedAt)

	_, err = f.svc.CompletePaymentByIntent(ctx, "pi_unknown")
	assert.ErrorIs(t, err, ErrOrderNotFound)
	_, err = f.svc.CompletePaymentByIntent(ctx, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListForUserAndAdminList(t *testing.T) {
	f := newOrderFixture(t, PermissivePolicy(), nil)
	ctx := context.Background()
	first := f.place(t)
	second := f.place(t)
	otherReq := f.request(1399)
	_, err := f.svc.CreateOrder(ctx, f.other.ID.Hex(), otherReq)
	require.NoError(t, err)

	mine, err := f.svc.ListForUser(ctx, f.buyer.ID.Hex())
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, _, err = f.svc.UpdateStatus(ctx, first.ID.Hex(), dto.UpdateOrderStatusRequest{Status: model.StatusCancelled})
	require.NoError(t, err)

	page, err := f.svc.AdminList(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 2)
	assert.EqualValues(t, 3, page.Pagination.TotalItems)
	assert.EqualValues(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)
	require.NotNil(t, page.Orders[0].Customer)

	cancelled, err := f.svc.AdminList(ctx, model.StatusCancelled, 1, 20)
	require.NoError(t, err)
	require.Len(t, cancelled.Orders, 1)
	assert.Equal(t, "Asha", cancelled.Orders[0].Customer.Name)

	_, err = f.svc.AdminList(ctx, "lost", 1, 20)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	one, err := f.svc.AdminGet(ctx, second.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "asha@shop.test", one.Customer.Email)

	_, err = f.svc.AdminGet(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestStrictPolicyTable(t *testing.T) {
	p := StrictPolicy()
	allowed := [][2]model.OrderStatus{
		{model.StatusPending, model.StatusConfirmed},
		{model.StatusPending, model.StatusCancelled},
		{model.StatusConfirmed, model.StatusShipped},
		{model.StatusShipped, model.StatusDelivered},
		{model.StatusShipped, model.StatusCancelled},
		{model.StatusDelivered, model.StatusDelivered},
	}
	for _, tr := range allowed {
		assert.True(t, p.Allows(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
	denied := [][2]model.OrderStatus{
		{model.StatusPending, model.StatusShipped},
		{model.StatusDelivered, model.StatusPending},
		{model.StatusCancelled, model.StatusConfirmed},
		{model.StatusShipped, model.StatusPending},
	}
	for _, tr := range denied {
		assert.False(t, p.Allows(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
	assert.Equal(t, "strict", p.Name())

	loose := PermissivePolicy()
	assert.True(t, loose.Allows(model.StatusDelivered, model.StatusPending))
	assert.False(t, loose.Allows(model.StatusPending, "lost"))
	assert.Equal(t, "permissive", TransitionPolicy{}.Name())
}

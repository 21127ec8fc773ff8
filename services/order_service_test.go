package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Mock publisher ---

type mockPublisher struct {
	mu     sync.Mutex
	orders []uuid.UUID
	err    error
}

func (m *mockPublisher) PublishOrderPlaced(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order.ID)
	return m.err
}

// --- Helpers ---

type orderFixture struct {
	store     *memStore
	cache     *mockCache
	publisher *mockPublisher
	metrics   *mockMetrics
	svc       services.OrderService
	alice     models.Customer
}

func newOrderFixture() *orderFixture {
	store := newMemStore()
	f := &orderFixture{
		store:     store,
		cache:     newMockCache(),
		publisher: &mockPublisher{},
		metrics:   newMockMetrics(),
		alice:     store.addCustomer("Alice", "alice@example.com"),
	}
	f.svc = services.NewOrderService(store, f.cache, f.publisher, f.metrics, zap.NewNop())
	return f
}

func (f *orderFixture) customerRef() string {
	return globalid.Encode(globalid.CustomerType, f.alice.ID)
}

func productRef(p models.Product) string {
	return globalid.Encode(globalid.ProductType, p.ID)
}

func (f *orderFixture) assertUntouched(t *testing.T) {
	t.Helper()
	_, orders, items := f.store.counts()
	assert.Zero(t, orders, "no order may survive a failed placement")
	assert.Zero(t, items, "no order item may survive a failed placement")
	assert.Empty(t, f.publisher.orders)
}

// --- Tests ---

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	order, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, "30.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "Alice", order.Customer.Name)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "10.00", order.Items[0].PriceAtPurchase.StringFixed(2))
	assert.Equal(t, "Widget", order.Items[0].Product.Name)
	assert.Equal(t, 2, f.store.product(widget.ID).Stock)

	stored, err := f.store.Orders().FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(order.TotalAmount))

	assert.Equal(t, []uuid.UUID{order.ID}, f.publisher.orders)
	assert.Equal(t, []uuid.UUID{widget.ID}, f.cache.invalidated)
	assert.Equal(t, 1, f.metrics.count("OrdersCreated"))
}

func TestPlaceOrder_TotalMatchesItems(t *testing.T) {
	f := newOrderFixture()
	laptop := f.store.addProduct("Laptop", "999.99", 15)
	mouse := f.store.addProduct("Mouse", "59.99", 60)
	cable := f.store.addProduct("Cable", "0.10", 100)

	order, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items: []services.LineItem{
			{ProductRef: productRef(laptop), Quantity: 2},
			{ProductRef: productRef(mouse), Quantity: 3},
			{ProductRef: productRef(cable), Quantity: 7},
		},
	})
	require.NoError(t, err)

	sum := order.Items[0].Subtotal().Add(order.Items[1].Subtotal()).Add(order.Items[2].Subtotal())
	assert.True(t, sum.Equal(order.TotalAmount))
	assert.Equal(t, "2180.65", order.TotalAmount.StringFixed(2))
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 2)

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 3}},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"Not enough stock for product Widget"}, apperrors.Messages(err))
	assert.Equal(t, 2, f.store.product(widget.ID).Stock)
	f.assertUntouched(t)
	assert.Equal(t, 1, f.metrics.count("OrdersFailed"))
}

func TestPlaceOrder_LaterFailureUndoesEarlierLines(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)
	gadget := f.store.addProduct("Gadget", "4.00", 1)

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items: []services.LineItem{
			{ProductRef: productRef(widget), Quantity: 2},
			{ProductRef: productRef(gadget), Quantity: 2},
		},
	})
	assert.Equal(t, []string{"Not enough stock for product Gadget"}, apperrors.Messages(err))
	assert.Equal(t, 5, f.store.product(widget.ID).Stock)
	assert.Equal(t, 1, f.store.product(gadget.ID).Stock)
	f.assertUntouched(t)
}

func TestPlaceOrder_DuplicateLinesSeeDecrement(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items: []services.LineItem{
			{ProductRef: productRef(widget), Quantity: 3},
			{ProductRef: productRef(widget), Quantity: 3},
		},
	})
	assert.Equal(t, []string{"Not enough stock for product Widget"}, apperrors.Messages(err))
	assert.Equal(t, 5, f.store.product(widget.ID).Stock)
	f.assertUntouched(t)
}

func TestPlaceOrder_UnknownProduct(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	for _, ref := range []string{"not-a-global-id", globalid.Encode(globalid.ProductType, uuid.New()), globalid.Encode(globalid.CustomerType, widget.ID)} {
		_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
			CustomerRef: f.customerRef(),
			Items: []services.LineItem{
				{ProductRef: productRef(widget), Quantity: 1},
				{ProductRef: ref, Quantity: 1},
			},
		})
		assert.Equal(t, []string{"Product not found"}, apperrors.Messages(err), ref)
	}
	assert.Equal(t, 5, f.store.product(widget.ID).Stock)
	f.assertUntouched(t)
}

func TestPlaceOrder_InvalidQuantity(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 0}},
	})
	assert.Equal(t, []string{"Invalid quantity for product Widget"}, apperrors.Messages(err))
	f.assertUntouched(t)
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{CustomerRef: f.customerRef()})
	assert.Equal(t, []string{"At least one product is required"}, apperrors.Messages(err))

	_, err = f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: globalid.Encode(globalid.CustomerType, uuid.New()),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 1}},
	})
	assert.Equal(t, []string{"Customer not found"}, apperrors.Messages(err))

	_, err = f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: "%%%",
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 1}},
	})
	assert.Equal(t, []string{"Customer not found"}, apperrors.Messages(err))
	assert.Zero(t, f.store.db.lockCount, "preconditions must fail before any product is locked")
	f.assertUntouched(t)
}

func TestPlaceOrder_UnexpectedErrorIsWrapped(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)
	f.store.db.failCreateItem = errors.New("connection reset by peer")

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 1}},
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
	assert.Equal(t, []string{"Error creating order: connection reset by peer"}, apperrors.Messages(err))
	assert.Equal(t, 5, f.store.product(widget.ID).Stock)
	f.assertUntouched(t)
}

func TestPlaceOrder_PanicIsRecoveredAndRolledBack(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)
	f.store.db.panicOnUpdateTotal = true

	_, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 1}},
	})
	assert.Equal(t, []string{"Error creating order: panic: total column missing"}, apperrors.Messages(err))
	assert.Equal(t, 5, f.store.product(widget.ID).Stock)
	f.assertUntouched(t)
}

func TestPlaceOrder_PublishFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)
	f.publisher.err = errors.New("broker down")

	order, err := f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
		CustomerRef: f.customerRef(),
		Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotNil(t, order)
}

func TestPlaceOrder_ConcurrentOrdersNeverOversell(t *testing.T) {
	f := newOrderFixture()
	widget := f.store.addProduct("Widget", "10.00", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(context.Background(), services.PlaceOrderInput{
				CustomerRef: f.customerRef(),
				Items:       []services.LineItem{{ProductRef: productRef(widget), Quantity: 3}},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, []string{"Not enough stock for product Widget"}, apperrors.Messages(err))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 2, f.store.product(widget.ID).Stock)
}

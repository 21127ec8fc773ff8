package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	orderErrorPrefix  = "Error creating order"
	sideEffectTimeout = 5 * time.Second

	metricOrdersCreated = "OrdersCreated"
	metricOrdersFailed  = "OrdersFailed"
)

// LineItem is one (product, quantity) pair of an order request.
type LineItem struct {
	ProductRef string
	Quantity   int
}

// PlaceOrderInput is the order placement request.
type PlaceOrderInput struct {
	CustomerRef string
	Items       []LineItem
}

// OrderEventPublisher announces committed orders.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
}

// OrderService defines the interface for order business logic.
type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, ref string) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Order, error)
}

type orderServiceImpl struct {
	store     repository.Store
	cache     ProductCache
	publisher OrderEventPublisher
	metrics   MetricsRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. cache, publisher and metrics
// may be nil.
func NewOrderService(
	store repository.Store,
	cache ProductCache,
	publisher OrderEventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) OrderService {
	if cache == nil {
		cache = noopCache{}
	}
	return &orderServiceImpl{
		store:     store,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder creates an order for the customer and reserves stock for every
// line. Either the order, all of its items and all stock decrements are
// committed together, or nothing is.
func (s *orderServiceImpl) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, apperrors.BusinessRule("At least one product is required")
	}

	customerID := globalid.Resolve(in.CustomerRef, globalid.CustomerType)
	if !customerID.OK() {
		return nil, apperrors.NotFound("Customer not found")
	}
	customer, err := s.store.Customers().FindByID(ctx, customerID.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Customer not found")
	}
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	order, err := s.reserve(ctx, customer, in.Items)
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	s.afterCommit(ctx, order)
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// reserve runs the placement workflow inside one transaction. Products are
// loaded with a row lock so concurrent placements on the same product
// serialize on the stock check.
func (s *orderServiceImpl) reserve(ctx context.Context, customer *models.Customer, lines []LineItem) (placed *models.Order, err error) {
	defer func() {
		if r := recover(); r != nil {
			placed = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		order := &models.Order{
			CustomerID:  customer.ID,
			OrderDate:   s.now(),
			Status:      models.OrderStatusPending,
			TotalAmount: decimal.Zero,
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range lines {
			productID := globalid.Resolve(line.ProductRef, globalid.ProductType)
			if !productID.OK() {
				return apperrors.NotFound("Product not found")
			}
			product, err := tx.Products().FindByIDForUpdate(ctx, productID.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("Product not found")
			}
			if err != nil {
				return err
			}

			if line.Quantity < 1 {
				return apperrors.BusinessRule(fmt.Sprintf("Invalid quantity for product %s", product.Name))
			}
			if product.Stock < line.Quantity {
				return apperrors.BusinessRule(fmt.Sprintf("Not enough stock for product %s", product.Name))
			}

			price := product.Price
			total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

			item := &models.OrderItem{
				OrderID:         order.ID,
				ProductID:       product.ID,
				Quantity:        line.Quantity,
				PriceAtPurchase: price,
			}
			if err := tx.Orders().CreateItem(ctx, item); err != nil {
				return err
			}

			// persisted before the next line so duplicate lines see the decrement
			product.Stock -= line.Quantity
			if err := tx.Products().UpdateStock(ctx, product.ID, product.Stock); err != nil {
				return err
			}
			item.Product = *product
			order.Items = append(order.Items, *item)
		}

		if err := tx.Orders().UpdateTotal(ctx, order.ID, total); err != nil {
			return err
		}
		order.TotalAmount = total
		order.Customer = *customer
		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// fail converts err into the client-facing error and records the failure.
func (s *orderServiceImpl) fail(ctx context.Context, err error) error {
	recordCount(ctx, s.metrics, metricOrdersFailed, nil)

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		s.logger.Info("Order rejected", zap.String("reason", appErr.Message))
		return appErr
	}
	s.logger.Error("Order placement failed", zap.Error(err))
	return apperrors.Internal(orderErrorPrefix, err)
}

// afterCommit runs best-effort side effects; none of them can undo the order.
func (s *orderServiceImpl) afterCommit(ctx context.Context, order *models.Order) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	s.cache.InvalidateProducts(bg, ids...)

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(bg, order); err != nil {
			s.logger.Warn("Failed to publish order event", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	recordCount(bg, s.metrics, metricOrdersCreated, nil)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, ref string) (*models.Order, error) {
	id := globalid.Resolve(ref, globalid.OrderType)
	if !id.OK() {
		return nil, apperrors.NotFound("Order not found")
	}
	order, err := s.store.Orders().FindByID(ctx, id.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading order: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Order, error) {
	return s.store.Orders().List(ctx, filter, orderBy)
}

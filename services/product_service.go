package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"go.uber.org/zap"
)

// ProductCache is the read-through cache in front of product lookups.
type ProductCache interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, bool)
	SetProductAsync(product *models.Product)
	InvalidateProducts(ctx context.Context, ids ...uuid.UUID)
}

// MetricsRecorder records business counters.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// RestockResult is the outcome of RestockLowStock.
type RestockResult struct {
	Products []models.Product
	Message  string
}

// ProductService defines the interface for product business logic.
type ProductService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, ref string) (*models.Product, error)
	ListProducts(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Product, error)
	RestockLowStock(ctx context.Context, amount int) (*RestockResult, error)
}

type productServiceImpl struct {
	store     repository.Store
	validator *InputValidator
	cache     ProductCache
	metrics   MetricsRecorder
	logger    *zap.Logger
}

// NewProductService creates a new ProductService. cache and metrics may be nil.
func NewProductService(
	store repository.Store,
	validator *InputValidator,
	cache ProductCache,
	metrics MetricsRecorder,
	logger *zap.Logger,
) ProductService {
	if cache == nil {
		cache = noopCache{}
	}
	return &productServiceImpl{store: store, validator: validator, cache: cache, metrics: metrics, logger: logger}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	in, ferrs := s.validator.Product(in)
	if len(ferrs) > 0 {
		return nil, apperrors.Validation(ferrs.Strings()...)
	}

	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price.Round(priceDecimalPlaces),
		Stock:       in.Stock,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err))
		return nil, apperrors.Internal("Error creating product", err)
	}

	s.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	recordCount(ctx, s.metrics, "ProductsCreated", nil)
	return product, nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, ref string) (*models.Product, error) {
	id := globalid.Resolve(ref, globalid.ProductType)
	if !id.OK() {
		return nil, apperrors.NotFound("Product not found")
	}
	if cached, ok := s.cache.GetProduct(ctx, id.ID); ok {
		return cached, nil
	}
	product, err := s.store.Products().FindByID(ctx, id.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("loading product: %w", err)
	}
	s.cache.SetProductAsync(product)
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter repository.Filter, orderBy []string) ([]models.Product, error) {
	return s.store.Products().List(ctx, filter, orderBy)
}

// RestockLowStock adds amount to every product below the low-stock
// threshold, with all affected rows locked for the duration.
func (s *productServiceImpl) RestockLowStock(ctx context.Context, amount int) (*RestockResult, error) {
	if amount < 1 {
		return nil, apperrors.BusinessRule("Restock amount must be positive")
	}

	var updated []models.Product
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		low, err := tx.Products().ListLowStockForUpdate(ctx, models.LowStockThreshold)
		if err != nil {
			return err
		}
		for _, p := range low {
			p.Stock += amount
			if err := tx.Products().UpdateStock(ctx, p.ID, p.Stock); err != nil {
				return err
			}
			updated = append(updated, p)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Low-stock restock failed", zap.Error(err))
		return nil, apperrors.Internal("Error restocking products", err)
	}

	ids := make([]uuid.UUID, len(updated))
	for i, p := range updated {
		ids[i] = p.ID
	}
	if len(ids) > 0 {
		s.cache.InvalidateProducts(ctx, ids...)
	}

	msg := "No low-stock products found"
	if len(updated) > 0 {
		msg = fmt.Sprintf("Restocked %d product(s)", len(updated))
	}
	s.logger.Info("Low-stock restock finished", zap.Int("updated", len(updated)), zap.Int("amount", amount))
	return &RestockResult{Products: updated, Message: msg}, nil
}

type noopCache struct{}

func (noopCache) GetProduct(context.Context, uuid.UUID) (*models.Product, bool) { return nil, false }
func (noopCache) SetProductAsync(*models.Product)                               {}
func (noopCache) InvalidateProducts(context.Context, ...uuid.UUID)              {}

// recordCount is best-effort: metric failures never fail the operation.
func recordCount(ctx context.Context, m MetricsRecorder, name string, dims map[string]string) {
	if m == nil {
		return
	}
	if dims == nil {
		dims = map[string]string{}
	}
	dims["Service"] = "crm-service"
	_ = m.RecordCount(ctx, name, dims)
}

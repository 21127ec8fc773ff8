package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilters is the allow-list for product queries.
var ProductFilters = &FilterSet{
	fields: []fieldSpec{
		{name: "name", column: "name", kind: TextValue, ops: []Op{OpExact, OpIExact, OpIContains, OpIStartsWith}},
		{name: "description", column: "description", kind: TextValue, ops: []Op{OpIContains}},
		{name: "price", column: "price", kind: DecimalValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte}},
		{name: "stock", column: "stock", kind: IntValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte}},
		{name: "createdAt", column: "created_at", kind: TimeValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte, OpDate}},
	},
	methods: []methodSpec{
		{name: "search", kind: TextValue, build: anyContains("name", "description")},
		{name: "minPrice", kind: DecimalValue, build: func(v interface{}) (Predicate, bool) {
			return Predicate{Query: "price >= ?", Args: []interface{}{v}}, true
		}},
		{name: "maxPrice", kind: DecimalValue, build: func(v interface{}) (Predicate, bool) {
			return Predicate{Query: "price <= ?", Args: []interface{}{v}}, true
		}},
		{name: "inStock", kind: BoolValue, build: func(v interface{}) (Predicate, bool) {
			if v.(bool) {
				return Predicate{Query: "stock > 0"}, true
			}
			return Predicate{Query: "stock = 0"}, true
		}},
		{name: "lowStock", kind: BoolValue, build: func(v interface{}) (Predicate, bool) {
			if !v.(bool) {
				return Predicate{}, false
			}
			return Predicate{Query: "stock < ?", Args: []interface{}{models.LowStockThreshold}}, true
		}},
	},
	orderable: map[string]string{
		"name":      "name",
		"price":     "price",
		"stock":     "stock",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	defaultOrder: []string{"name ASC"},
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// FindByIDForUpdate row-locks the product until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
	List(ctx context.Context, filter Filter, orderBy []string) ([]models.Product, error)
	// ListLowStockForUpdate row-locks every product below threshold.
	ListLowStockForUpdate(ctx context.Context, threshold int) ([]models.Product, error)
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", stock)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) List(ctx context.Context, filter Filter, orderBy []string) ([]models.Product, error) {
	scope, err := ProductFilters.Scope(filter, orderBy)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) ListLowStockForUpdate(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("stock < ?", threshold).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

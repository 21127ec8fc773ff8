package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const productSubquery = "id IN (SELECT oi.order_id FROM order_items oi JOIN products p ON p.id = oi.product_id WHERE p.name ILIKE ?)"

// OrderFilters is the allow-list for order queries. Related-entity filters
// are expressed as subqueries so the result never holds duplicate orders.
var OrderFilters = &FilterSet{
	fields: []fieldSpec{
		{name: "status", column: "status", kind: TextValue, ops: []Op{OpExact, OpIContains}},
		{name: "totalAmount", column: "total_amount", kind: DecimalValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte}},
		{name: "orderDate", column: "order_date", kind: TimeValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte, OpDate, OpYear, OpMonth, OpDay}},
	},
	methods: []methodSpec{
		{name: "customerName", kind: TextValue, build: relatedContains(fmtCustomer("name"))},
		{name: "customerEmail", kind: TextValue, build: relatedContains(fmtCustomer("email"))},
		{name: "productName", kind: TextValue, build: relatedContains(productSubquery)},
		{name: "search", kind: TextValue, build: func(v interface{}) (Predicate, bool) {
			term := strings.TrimSpace(v.(string))
			if term == "" {
				return Predicate{}, false
			}
			pattern := containsPattern(term)
			return Predicate{
				Query: "(" + fmtCustomer("name") + " OR " + fmtCustomer("email") + " OR " + productSubquery + ")",
				Args:  []interface{}{pattern, pattern, pattern},
			}, true
		}},
	},
	orderable: map[string]string{
		"orderDate":   "order_date",
		"totalAmount": "total_amount",
		"status":      "status",
		"createdAt":   "created_at",
	},
	defaultOrder: []string{"order_date DESC"},
}

func fmtCustomer(column string) string {
	return "customer_id IN (SELECT c.id FROM customers c WHERE c." + column + " ILIKE ?)"
}

func relatedContains(query string) methodFn {
	return func(v interface{}) (Predicate, bool) {
		term := strings.TrimSpace(v.(string))
		if term == "" {
			return Predicate{}, false
		}
		return Predicate{Query: query, Args: []interface{}{containsPattern(term)}}, true
	}
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateItem(ctx context.Context, item *models.OrderItem) error
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	// FindByID loads the order with its customer and items (with products).
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter Filter, orderBy []string) ([]models.Order, error)
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts the order row only; items are written with CreateItem.
func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit("Customer", "Items").Create(order).Error)
}

func (r *GormOrderRepository) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return translate(r.db.WithContext(ctx).Omit("Product").Create(item).Error)
}

func (r *GormOrderRepository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("total_amount", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.preloaded(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) List(ctx context.Context, filter Filter, orderBy []string) ([]models.Order, error) {
	scope, err := OrderFilters.Scope(filter, orderBy)
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := r.preloaded(ctx).Scopes(scope).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Items.Product")
}

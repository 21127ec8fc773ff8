package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"gorm.io/gorm"
)

// CustomerFilters is the allow-list for customer queries.
var CustomerFilters = &FilterSet{
	fields: []fieldSpec{
		{name: "name", column: "name", kind: TextValue, ops: []Op{OpExact, OpIExact, OpIContains, OpIStartsWith}},
		{name: "email", column: "email", kind: TextValue, ops: []Op{OpExact, OpIExact, OpIContains}},
		{name: "phone", column: "phone", kind: TextValue, ops: []Op{OpExact, OpIContains}},
		{name: "createdAt", column: "created_at", kind: TimeValue, ops: []Op{OpExact, OpGt, OpLt, OpGte, OpLte, OpDate}},
	},
	methods: []methodSpec{
		{name: "search", kind: TextValue, build: anyContains("name", "email", "phone")},
		{name: "phonePattern", kind: TextValue, build: phonePattern},
	},
	orderable: map[string]string{
		"name":      "name",
		"email":     "email",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	defaultOrder: []string{"name ASC"},
}

// phonePattern matches "+"-prefixed patterns as a prefix, anything else as a
// dash-insensitive substring.
func phonePattern(v interface{}) (Predicate, bool) {
	pattern := strings.TrimSpace(v.(string))
	if pattern == "" {
		return Predicate{}, false
	}
	if strings.HasPrefix(pattern, "+") {
		return Predicate{Query: "phone LIKE ?", Args: []interface{}{escapeLike(pattern) + "%"}}, true
	}
	return Predicate{Query: "phone LIKE ?", Args: []interface{}{"%" + escapeLike(strings.ReplaceAll(pattern, "-", "")) + "%"}}, true
}

// CustomerRepository defines the interface for customer data access.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter Filter, orderBy []string) ([]models.Customer, error)
}

// GormCustomerRepository implements CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

func NewGormCustomerRepository(db *gorm.DB) CustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(customer).Error)
}

func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

// EmailExists compares case-insensitively.
func (r *GormCustomerRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	return count > 0, err
}

func (r *GormCustomerRepository) List(ctx context.Context, filter Filter, orderBy []string) ([]models.Customer, error) {
	scope, err := CustomerFilters.Scope(filter, orderBy)
	if err != nil {
		return nil, err
	}
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

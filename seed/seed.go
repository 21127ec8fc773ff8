// Package seed wipes the CRM tables and loads a fixed sample data set plus
// a batch of randomized orders.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultOrderCount = 20
	orderWindowDays   = 30
	maxLinesPerOrder  = 4
	maxQuantity       = 3
)

// Customers is the sample customer set.
func Customers() []models.Customer {
	return []models.Customer{
		{Name: "Alice Johnson", Email: "alice@example.com", Phone: "+1234567890"},
		{Name: "Bob Smith", Email: "bob@example.com", Phone: "123-456-7890"},
		{Name: "Carol Williams", Email: "carol@example.com", Phone: "+1987654321"},
		{Name: "David Brown", Email: "david@example.com"},
		{Name: "Eve Davis", Email: "eve@example.com", Phone: "555-123-4567"},
	}
}

// Products is the sample catalog.
func Products() []models.Product {
	p := func(name, desc, price string, stock int) models.Product {
		return models.Product{Name: name, Description: desc, Price: decimal.RequireFromString(price), Stock: stock}
	}
	return []models.Product{
		p("Laptop", "High-performance laptop", "999.99", 15),
		p("Smartphone", "Latest smartphone model", "699.99", 30),
		p("Headphones", "Wireless noise-canceling headphones", "199.99", 50),
		p("Tablet", "10-inch tablet", "349.99", 20),
		p("Smartwatch", "Fitness and health tracking", "249.99", 25),
		p("Monitor", "27-inch 4K monitor", "299.99", 10),
		p("Keyboard", "Mechanical keyboard", "129.99", 40),
		p("Mouse", "Wireless mouse", "59.99", 60),
	}
}

// PlanOrders builds n random orders: a random customer, 1 to 4 distinct
// products with quantity 1 to 3 each, a random status and an order date
// within the last 30 days. Totals are computed from the line items.
func PlanOrders(rng *rand.Rand, customers []models.Customer, products []models.Product, now time.Time, n int) []models.Order {
	orders := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		customer := customers[rng.Intn(len(customers))]
		order := models.Order{
			CustomerID: customer.ID,
			Customer:   customer,
			OrderDate:  now.AddDate(0, 0, -rng.Intn(orderWindowDays+1)),
			Status:     models.OrderStatuses[rng.Intn(len(models.OrderStatuses))],
		}

		lines := 1 + rng.Intn(min(maxLinesPerOrder, len(products)))
		total := decimal.Zero
		for _, idx := range rng.Perm(len(products))[:lines] {
			product := products[idx]
			item := models.OrderItem{
				ProductID:       product.ID,
				Product:         product,
				Quantity:        1 + rng.Intn(maxQuantity),
				PriceAtPurchase: product.Price,
			}
			total = total.Add(item.Subtotal())
			order.Items = append(order.Items, item)
		}
		order.TotalAmount = total
		orders = append(orders, order)
	}
	return orders
}

// Summary counts what Run inserted.
type Summary struct {
	Customers int
	Products  int
	Orders    int
	Items     int
}

// Seeder loads the sample data set into Postgres.
type Seeder struct {
	db     *gorm.DB
	rng    *rand.Rand
	orders int
	logger *zap.Logger
	now    func() time.Time
}

func NewSeeder(db *gorm.DB, rng *rand.Rand, orders int, logger *zap.Logger) *Seeder {
	return &Seeder{db: db, rng: rng, orders: orders, logger: logger, now: time.Now}
}

// Run wipes every CRM table and reloads them in a single transaction.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s.logger.Info("Deleting old data...")
		if err := wipe(tx); err != nil {
			return err
		}
		store := repository.NewGormStore(tx)

		s.logger.Info("Creating customers...")
		customers := Customers()
		for i := range customers {
			if err := store.Customers().Create(ctx, &customers[i]); err != nil {
				return fmt.Errorf("create customer %s: %w", customers[i].Email, err)
			}
		}
		summary.Customers = len(customers)

		s.logger.Info("Creating products...")
		products := Products()
		for i := range products {
			if err := store.Products().Create(ctx, &products[i]); err != nil {
				return fmt.Errorf("create product %s: %w", products[i].Name, err)
			}
		}
		summary.Products = len(products)

		s.logger.Info("Creating orders...")
		for _, order := range PlanOrders(s.rng, customers, products, s.now(), s.orders) {
			items := order.Items
			order.Items = nil
			if err := store.Orders().Create(ctx, &order); err != nil {
				return fmt.Errorf("create order: %w", err)
			}
			for j := range items {
				items[j].OrderID = order.ID
				if err := store.Orders().CreateItem(ctx, &items[j]); err != nil {
					return fmt.Errorf("create order item: %w", err)
				}
			}
			if err := store.Orders().UpdateTotal(ctx, order.ID, order.TotalAmount); err != nil {
				return err
			}
			summary.Orders++
			summary.Items += len(items)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Database seeded successfully!",
		zap.Int("customers", summary.Customers),
		zap.Int("products", summary.Products),
		zap.Int("orders", summary.Orders),
	)
	return summary, nil
}

// wipe deletes children before parents.
func wipe(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, m := range []interface{}{&models.OrderItem{}, &models.Order{}, &models.Customer{}, &models.Product{}} {
		if err := all.Delete(m).Error; err != nil {
			return fmt.Errorf("wipe %T: %w", m, err)
		}
	}
	return nil
}

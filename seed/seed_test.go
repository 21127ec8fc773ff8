package seed

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withIDs() ([]models.Customer, []models.Product) {
	customers := Customers()
	for i := range customers {
		customers[i].ID = uuid.New()
	}
	products := Products()
	for i := range products {
		products[i].ID = uuid.New()
	}
	return customers, products
}

func TestSampleData(t *testing.T) {
	assert.Len(t, Customers(), 5)
	products := Products()
	require.Len(t, products, 8)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("999.99")))
	assert.Equal(t, 60, products[7].Stock)
}

func TestPlanOrders_Shape(t *testing.T) {
	customers, products := withIDs()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	orders := PlanOrders(rand.New(rand.NewSource(42)), customers, products, now, DefaultOrderCount)
	require.Len(t, orders, DefaultOrderCount)

	for _, o := range orders {
		assert.True(t, o.Status.Valid())
		assert.False(t, o.OrderDate.After(now))
		assert.False(t, o.OrderDate.Before(now.AddDate(0, 0, -30)))
		assert.NotEqual(t, uuid.Nil, o.CustomerID)

		require.GreaterOrEqual(t, len(o.Items), 1)
		require.LessOrEqual(t, len(o.Items), 4)

		seen := map[uuid.UUID]bool{}
		total := decimal.Zero
		for _, it := range o.Items {
			assert.False(t, seen[it.ProductID], "products within an order are distinct")
			seen[it.ProductID] = true
			assert.GreaterOrEqual(t, it.Quantity, 1)
			assert.LessOrEqual(t, it.Quantity, 3)
			assert.True(t, it.PriceAtPurchase.Equal(it.Product.Price))
			total = total.Add(it.Subtotal())
		}
		assert.True(t, o.TotalAmount.Equal(total))
	}
}

func TestPlanOrders_Deterministic(t *testing.T) {
	customers, products := withIDs()
	now := time.Now()

	a := PlanOrders(rand.New(rand.NewSource(7)), customers, products, now, 5)
	b := PlanOrders(rand.New(rand.NewSource(7)), customers, products, now, 5)
	for i := range a {
		assert.Equal(t, a[i].CustomerID, b[i].CustomerID)
		assert.True(t, a[i].TotalAmount.Equal(b[i].TotalAmount))
	}
}

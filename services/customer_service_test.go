package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/apperrors"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/globalid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCustomerService(store *memStore) services.CustomerService {
	return services.NewCustomerService(store, services.NewInputValidator(), zap.NewNop())
}

func TestCustomerService_Create(t *testing.T) {
	store := newMemStore()
	svc := newCustomerService(store)

	c, err := svc.CreateCustomer(context.Background(), services.CustomerInput{Name: "Alice", Email: "Alice@Example.com", Phone: "+1234567890"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", c.Email)
	assert.NotEqual(t, uuid.Nil, c.ID)
}

func TestCustomerService_CreateDuplicateEmail(t *testing.T) {
	store := newMemStore()
	store.addCustomer("Alice", "alice@example.com")
	svc := newCustomerService(store)

	_, err := svc.CreateCustomer(context.Background(), services.CustomerInput{Name: "", Email: "ALICE@example.com"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, []string{
		"name: This field cannot be blank.",
		"email: Customer with this Email already exists.",
	}, apperrors.Messages(err))
}

func TestCustomerService_BulkCreatePartialSuccess(t *testing.T) {
	store := newMemStore()
	store.addCustomer("Existing", "taken@example.com")
	svc := newCustomerService(store)

	res, err := svc.BulkCreateCustomers(context.Background(), []services.CustomerInput{
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Bad", Email: "nope"},
		{Name: "Carol", Email: "carol@example.com", Phone: "123-456-7890"},
		{Name: "Taken", Email: "taken@example.com"},
		{Name: "Bob Again", Email: "bob@example.com"},
	})
	require.NoError(t, err)

	require.Len(t, res.Customers, 2)
	assert.Equal(t, "Bob", res.Customers[0].Name)
	assert.Equal(t, "Carol", res.Customers[1].Name)
	assert.Equal(t, []string{
		"Customer 2 - email: Enter a valid email address.",
		"Customer 4 - email: Customer with this Email already exists.",
		"Customer 5 - email: Customer with this Email already exists.",
	}, res.Errors)

	customers, _, _ := store.counts()
	assert.Equal(t, 3, customers)
}

func TestCustomerService_BulkCreateAllInvalid(t *testing.T) {
	store := newMemStore()
	svc := newCustomerService(store)

	res, err := svc.BulkCreateCustomers(context.Background(), []services.CustomerInput{
		{Name: "", Email: ""},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Customers)
	assert.Equal(t, []string{
		"Customer 1 - name: This field cannot be blank.",
		"Customer 1 - email: This field cannot be blank.",
	}, res.Errors)

	customers, _, _ := store.counts()
	assert.Zero(t, customers)
}

func TestCustomerService_Get(t *testing.T) {
	store := newMemStore()
	alice := store.addCustomer("Alice", "alice@example.com")
	svc := newCustomerService(store)

	got, err := svc.GetCustomer(context.Background(), globalid.Encode(globalid.CustomerType, alice.ID))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	for _, ref := range []string{"garbage", globalid.Encode(globalid.CustomerType, uuid.New()), globalid.Encode(globalid.ProductType, alice.ID)} {
		_, err := svc.GetCustomer(context.Background(), ref)
		assert.True(t, apperrors.Is(err, apperrors.KindNotFound), ref)
		assert.Equal(t, []string{"Customer not found"}, apperrors.Messages(err))
	}
}

package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/models"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"github.com/shopspring/decimal"
)

// --- In-memory Store ---
//
// Transactions are serialized by txMu and undone by restoring a snapshot,
// which mirrors row locking plus rollback closely enough for service tests.

type memState struct {
	customers map[uuid.UUID]models.Customer
	products  map[uuid.UUID]models.Product
	orders    map[uuid.UUID]models.Order
	items     []models.OrderItem
}

func (s memState) clone() memState {
	c := memState{
		customers: make(map[uuid.UUID]models.Customer, len(s.customers)),
		products:  make(map[uuid.UUID]models.Product, len(s.products)),
		orders:    make(map[uuid.UUID]models.Order, len(s.orders)),
		items:     append([]models.OrderItem(nil), s.items...),
	}
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

type memDB struct {
	txMu  sync.Mutex
	mu    sync.Mutex
	state memState

	// failCreateItem makes CreateItem return this error.
	failCreateItem error
	// panicOnUpdateTotal makes UpdateTotal panic.
	panicOnUpdateTotal bool
	// lockCount counts FindByIDForUpdate calls.
	lockCount int
}

type memStore struct {
	db   *memDB
	inTx bool
}

func newMemStore() *memStore {
	return &memStore{db: &memDB{state: memState{}.clone()}}
}

func (s *memStore) Customers() repository.CustomerRepository { return &memCustomers{db: s.db} }
func (s *memStore) Products() repository.ProductRepository   { return &memProducts{db: s.db} }
func (s *memStore) Orders() repository.OrderRepository       { return &memOrders{db: s.db} }
func (s *memStore) Ping(context.Context) error               { return nil }

func (s *memStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if !s.inTx {
		s.db.txMu.Lock()
		defer s.db.txMu.Unlock()
	}
	s.db.mu.Lock()
	snap := s.db.state.clone()
	s.db.mu.Unlock()

	rollback := func() {
		s.db.mu.Lock()
		s.db.state = snap
		s.db.mu.Unlock()
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err = fn(&memStore{db: s.db, inTx: true}); err != nil {
		rollback()
	}
	return err
}

// helpers used by tests

func (s *memStore) addCustomer(name, email string) models.Customer {
	c := models.Customer{ID: uuid.New(), Name: name, Email: email}
	s.db.mu.Lock()
	s.db.state.customers[c.ID] = c
	s.db.mu.Unlock()
	return c
}

func (s *memStore) addProduct(name, price string, stock int) models.Product {
	p := models.Product{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	s.db.mu.Lock()
	s.db.state.products[p.ID] = p
	s.db.mu.Unlock()
	return p
}

func (s *memStore) product(id uuid.UUID) models.Product {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.state.products[id]
}

func (s *memStore) counts() (customers, orders, items int) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.state.customers), len(s.db.state.orders), len(s.db.state.items)
}

// --- repositories ---

type memCustomers struct{ db *memDB }

func (r *memCustomers) Create(_ context.Context, c *models.Customer) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.state.customers {
		if existing.Email == c.Email {
			return repository.ErrDuplicate
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.db.state.customers[c.ID] = *c
	return nil
}

func (r *memCustomers) FindByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.state.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memCustomers) EmailExists(_ context.Context, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.state.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCustomers) List(_ context.Context, _ repository.Filter, _ []string) ([]models.Customer, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Customer, 0, len(r.db.state.customers))
	for _, c := range r.db.state.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memProducts struct{ db *memDB }

func (r *memProducts) Create(_ context.Context, p *models.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.db.state.products[p.ID] = *p
	return nil
}

func (r *memProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.state.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memProducts) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	r.db.mu.Lock()
	r.db.lockCount++
	r.db.mu.Unlock()
	return r.FindByID(ctx, id)
}

func (r *memProducts) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.state.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if stock < 0 {
		return errors.New("violates check constraint \"chk_products_stock\"")
	}
	p.Stock = stock
	r.db.state.products[id] = p
	return nil
}

func (r *memProducts) List(_ context.Context, _ repository.Filter, _ []string) ([]models.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Product, 0, len(r.db.state.products))
	for _, p := range r.db.state.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProducts) ListLowStockForUpdate(ctx context.Context, threshold int) ([]models.Product, error) {
	all, _ := r.List(ctx, nil, nil)
	var low []models.Product
	for _, p := range all {
		if p.Stock < threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

type memOrders struct{ db *memDB }

func (r *memOrders) Create(_ context.Context, o *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.db.state.orders[o.ID] = *o
	return nil
}

func (r *memOrders) CreateItem(_ context.Context, item *models.OrderItem) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failCreateItem != nil {
		return r.db.failCreateItem
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.db.state.items = append(r.db.state.items, *item)
	return nil
}

func (r *memOrders) UpdateTotal(_ context.Context, id uuid.UUID, total decimal.Decimal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.panicOnUpdateTotal {
		panic("total column missing")
	}
	o, ok := r.db.state.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.TotalAmount = total
	r.db.state.orders[id] = o
	return nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.state.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, item := range r.db.state.items {
		if item.OrderID == id {
			o.Items = append(o.Items, item)
		}
	}
	return &o, nil
}

func (r *memOrders) List(_ context.Context, _ repository.Filter, _ []string) ([]models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]models.Order, 0, len(r.db.state.orders))
	for _, o := range r.db.state.orders {
		out = append(out, o)
	}
	return out, nil
}

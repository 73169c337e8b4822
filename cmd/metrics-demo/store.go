package main

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"
)

var (
	errNotFound       = errors.New("not found")
	errDuplicateEmail = errors.New("email already registered")
	errOutOfStock     = errors.New("insufficient stock")
	errInventoryCheck = errors.New("inventory check failed")
	errPaymentFailed  = errors.New("payment declined")
)

// User is a demo user record.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a demo catalog entry.
type Product struct {
	ID    int     `json:"id"`
	SKU   string  `json:"sku"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// OrderItem is one product line of an order.
type OrderItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Order is a demo order record.
type Order struct {
	ID          int         `json:"id"`
	UserID      int         `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Payment is a demo payment record.
type Payment struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"order_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the in-memory backing state for the simulated services. All
// latency and failure injection lives in the service methods so the HTTP
// handlers stay thin.
type Store struct {
	mu       sync.Mutex
	users    map[int]*User
	emails   map[string]int
	products map[int]*Product
	skus     map[string]int
	orders   map[int]*Order
	payments map[int]*Payment

	nextUser    int
	nextProduct int
	nextOrder   int
	nextPayment int
}

func newStore() *Store {
	s := &Store{
		users:    make(map[int]*User),
		emails:   make(map[string]int),
		products: make(map[int]*Product),
		skus:     make(map[string]int),
		orders:   make(map[int]*Order),
		payments: make(map[int]*Payment),
	}
	s.seed(SeedData{
		Users: []SeedUser{
			{Name: "John Doe", Email: "john@example.com", Address: "1 Main St", Active: true},
			{Name: "Jane Smith", Email: "jane@example.com", Address: "2 Oak Ave", Active: true},
			{Name: "Bob Johnson", Email: "bob@example.com", Active: false},
		},
		Products: []SeedProduct{
			{SKU: "WIDGET-1", Name: "Widget", Price: 19.99, Stock: 100},
			{SKU: "GADGET-1", Name: "Gadget", Price: 149.50, Stock: 25},
			{SKU: "GIZMO-1", Name: "Gizmo", Price: 7.25, Stock: 500},
		},
	})
	return s
}

// seed inserts users and products, skipping duplicates by email/SKU.
func (s *Store) seed(data SeedData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, u := range data.Users {
		if _, dup := s.emails[u.Email]; dup || u.Email == "" {
			continue
		}
		s.nextUser++
		user := &User{
			ID: s.nextUser, Name: u.Name, Email: u.Email,
			Address: u.Address, Phone: u.Phone, Active: u.Active,
			CreatedAt: now, UpdatedAt: now,
		}
		s.users[user.ID] = user
		s.emails[user.Email] = user.ID
	}
	for _, p := range data.Products {
		if _, dup := s.skus[p.SKU]; dup || p.SKU == "" {
			continue
		}
		s.nextProduct++
		product := &Product{ID: s.nextProduct, SKU: p.SKU, Name: p.Name, Price: p.Price, Stock: p.Stock}
		s.products[product.ID] = product
		s.skus[product.SKU] = product.ID
	}
}

// recordActiveUsers refreshes the demo_users_active gauge from store state.
func (s *Store) recordActiveUsers() {
	s.mu.Lock()
	var active int
	for _, u := range s.users {
		if u.Active {
			active++
		}
	}
	s.mu.Unlock()
	if g, err := activeUsers.With(nil); err == nil {
		g.Set(float64(active))
	}
}

// simulateLatency sleeps for a uniform random duration between min and max,
// standing in for a database or downstream call.
func simulateLatency(min, max time.Duration) {
	configLock.RLock()
	enabled := config.SimulateDelays
	configLock.RUnlock()
	if !enabled || max <= min {
		return
	}
	time.Sleep(min + time.Duration(rand.Int63n(int64(max-min))))
}

// injectFailure returns true with the configured probability.
func injectFailure() bool {
	configLock.RLock()
	p := config.FailureRate
	configLock.RUnlock()
	return p > 0 && rand.Float64() < p
}

func (s *Store) ListUsers(skip, limit int) ([]*User, int) {
	simulateLatency(10*time.Millisecond, 50*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	total := len(ids)
	if skip > len(ids) {
		skip = len(ids)
	}
	ids = ids[skip:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	users := make([]*User, 0, len(ids))
	for _, id := range ids {
		u := *s.users[id]
		users = append(users, &u)
	}
	return users, total
}

func (s *Store) GetUser(id int) (*User, error) {
	simulateLatency(10*time.Millisecond, 50*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *Store) GetUserByEmail(email string) (*User, error) {
	simulateLatency(10*time.Millisecond, 50*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, errNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *Store) CreateUser(name, email, address, phone string) (*User, error) {
	simulateLatency(20*time.Millisecond, 80*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.emails[email]; dup {
		return nil, errDuplicateEmail
	}
	s.nextUser++
	now := time.Now()
	u := &User{
		ID: s.nextUser, Name: name, Email: email,
		Address: address, Phone: phone, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}
	s.users[u.ID] = u
	s.emails[email] = u.ID
	copied := *u
	return &copied, nil
}

func (s *Store) UpdateUser(id int, name, email, address, phone *string, active *bool) (*User, error) {
	simulateLatency(20*time.Millisecond, 80*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	if email != nil && *email != u.Email {
		if _, dup := s.emails[*email]; dup {
			return nil, errDuplicateEmail
		}
		delete(s.emails, u.Email)
		u.Email = *email
		s.emails[u.Email] = u.ID
	}
	if name != nil {
		u.Name = *name
	}
	if address != nil {
		u.Address = *address
	}
	if phone != nil {
		u.Phone = *phone
	}
	if active != nil {
		u.Active = *active
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (s *Store) DeleteUser(id int) error {
	simulateLatency(10*time.Millisecond, 40*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errNotFound
	}
	delete(s.emails, u.Email)
	delete(s.users, id)
	return nil
}

func (s *Store) GetProductBySKU(sku string) (*Product, error) {
	simulateLatency(5*time.Millisecond, 20*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.skus[sku]
	if !ok {
		return nil, errNotFound
	}
	copied := *s.products[id]
	return &copied, nil
}

func (s *Store) ListOrders() []*Order {
	simulateLatency(10*time.Millisecond, 40*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.orders))
	for id := range s.orders {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	orders := make([]*Order, 0, len(ids))
	for _, id := range ids {
		o := *s.orders[id]
		orders = append(orders, &o)
	}
	return orders
}

func (s *Store) GetOrder(id int) (*Order, error) {
	simulateLatency(10*time.Millisecond, 40*time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *o
	return &copied, nil
}

// CreateOrder validates the user and every item, reserves stock, and records
// the outcome under demo_orders_created_total. A random fraction of inventory
// checks fails to give the dashboards something to show.
func (s *Store) CreateOrder(userID int, items []OrderItem) (*Order, error) {
	simulateLatency(20*time.Millisecond, 80*time.Millisecond)

	countOrder := func(status string) {
		if c, err := ordersCreated.With(map[string]string{"status": status}); err == nil {
			c.Inc()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		countOrder("rejected")
		return nil, fmt.Errorf("user %d: %w", userID, errNotFound)
	}
	if injectFailure() {
		countOrder("failed")
		return nil, errInventoryCheck
	}

	var total float64
	for _, item := range items {
		p, ok := s.products[item.ProductID]
		if !ok {
			countOrder("rejected")
			return nil, fmt.Errorf("product %d: %w", item.ProductID, errNotFound)
		}
		if item.Quantity <= 0 || p.Stock < item.Quantity {
			countOrder("rejected")
			return nil, fmt.Errorf("product %d: %w", item.ProductID, errOutOfStock)
		}
		total += p.Price * float64(item.Quantity)
	}
	for _, item := range items {
		s.products[item.ProductID].Stock -= item.Quantity
	}

	s.nextOrder++
	o := &Order{
		ID: s.nextOrder, UserID: userID,
		Items: append([]OrderItem(nil), items...), TotalAmount: total,
		Status: "created", CreatedAt: time.Now(),
	}
	s.orders[o.ID] = o

	countOrder("created")
	if h, err := orderAmount.With(map[string]string{"status": "created"}); err == nil {
		h.Observe(total)
	}
	copied := *o
	return &copied, nil
}

// ProcessPayment simulates a charge against an existing order. Processing
// time depends on the method and a random fraction of attempts is declined.
func (s *Store) ProcessPayment(orderID int, method string) (*Payment, error) {
	switch method {
	case "credit_card":
		simulateLatency(50*time.Millisecond, 200*time.Millisecond)
	case "paypal":
		simulateLatency(100*time.Millisecond, 300*time.Millisecond)
	default:
		simulateLatency(20*time.Millisecond, 100*time.Millisecond)
	}

	countPayment := func(status string) {
		if c, err := payments.With(map[string]string{"method": method, "status": status}); err == nil {
			c.Inc()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		countPayment("rejected")
		return nil, fmt.Errorf("order %d: %w", orderID, errNotFound)
	}
	if injectFailure() {
		countPayment("declined")
		return nil, errPaymentFailed
	}

	s.nextPayment++
	p := &Payment{
		ID: s.nextPayment, OrderID: orderID, Amount: o.TotalAmount,
		Method: method, Status: "completed", CreatedAt: time.Now(),
	}
	s.payments[p.ID] = p
	o.Status = "paid"

	countPayment("completed")
	copied := *p
	return &copied, nil
}

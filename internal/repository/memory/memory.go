// Package memory holds map-backed repositories used by tests and local runs
// without MongoDB. Stored values are copied on the way in and out so callers
// never share state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"widgetstore/internal/models"
	"widgetstore/internal/repository"
)

type ProductStore struct {
	mu       sync.Mutex
	products map[string]models.Product
	gets     int

	// UpsertErr, when set, is consulted before every Upsert.
	UpsertErr func(id string) error
}

func NewProductStore(products ...models.Product) *ProductStore {
	s := &ProductStore{products: make(map[string]models.Product)}
	for _, p := range products {
		p.Type = models.DocumentTypeProduct
		s.products[p.ID] = copyProduct(p)
	}
	return s
}

func (s *ProductStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; ok {
		return repository.ErrDuplicate
	}
	product.Type = models.DocumentTypeProduct
	s.products[product.ID] = copyProduct(*product)
	return nil
}

func (s *ProductStore) Get(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets++
	p, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyProduct(p)
	return &out, nil
}

// Gets reports how many Get calls reached the store.
func (s *ProductStore) Gets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func (s *ProductStore) List(_ context.Context, query repository.ProductQuery) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matches := make([]models.Product, 0)
	for _, p := range s.products {
		if query.AvailableOnly && !p.IsAvailable {
			continue
		}
		if query.Category != "" && p.Category != query.Category {
			continue
		}
		if query.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query.Search)) {
			continue
		}
		matches = append(matches, copyProduct(p))
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	if query.Limit > 0 {
		start := min(query.Skip, total)
		end := min(start+query.Limit, total)
		matches = matches[start:end]
	}
	return matches, total, nil
}

func (s *ProductStore) Upsert(_ context.Context, product *models.Product) error {
	if s.UpsertErr != nil {
		if err := s.UpsertErr(product.ID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product.Type = models.DocumentTypeProduct
	s.products[product.ID] = copyProduct(*product)
	return nil
}

type OrderStore struct {
	mu     sync.Mutex
	orders map[string]models.Order

	// UpsertErr, when set, is consulted before every Upsert.
	UpsertErr func(id string) error
	// CreateErr, when set, replaces the result of every Create.
	CreateErr error
}

func NewOrderStore(orders ...models.Order) *OrderStore {
	s := &OrderStore{orders: make(map[string]models.Order)}
	for _, o := range orders {
		o.Type = models.DocumentTypeOrder
		s.orders[o.ID] = copyOrder(o)
	}
	return s
}

func (s *OrderStore) Create(_ context.Context, order *models.Order) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.ID]; ok {
		return repository.ErrDuplicate
	}
	order.Type = models.DocumentTypeOrder
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *OrderStore) Get(_ context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyOrder(o)
	return &out, nil
}

func (s *OrderStore) GetForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

func (s *OrderStore) filter(keep func(models.Order) bool) []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	out := s.filter(func(o models.Order) bool { return o.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderDate.After(out[j].OrderDate)
	})
	return out, nil
}

func (s *OrderStore) Upsert(_ context.Context, order *models.Order) error {
	if s.UpsertErr != nil {
		if err := s.UpsertErr(order.ID); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order.Type = models.DocumentTypeOrder
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *OrderStore) ListAwaitingShipment(context.Context) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool {
		return o.Status == models.OrderStatusProcessed && o.ShippingDate == nil
	}), nil
}

func (s *OrderStore) ListWithMetrics(context.Context) ([]models.Order, error) {
	return s.filter(func(o models.Order) bool { return o.Metrics != nil }), nil
}

// Len reports how many orders are stored.
func (s *OrderStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type UserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]models.User)}
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	s.users[user.Email] = *user
	return nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type ReviewStore struct {
	mu      sync.Mutex
	reviews []models.Review
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{}
}

func (s *ReviewStore) Create(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews = append(s.reviews, *review)
	return nil
}

func (s *ReviewStore) ListByProduct(_ context.Context, productID string) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Review, 0)
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewDate.After(out[j].ReviewDate)
	})
	return out, nil
}

func copyProduct(p models.Product) models.Product {
	if p.ModifiedAt != nil {
		at := *p.ModifiedAt
		p.ModifiedAt = &at
	}
	return p
}

func copyOrder(o models.Order) models.Order {
	if o.ShippingDate != nil {
		at := *o.ShippingDate
		o.ShippingDate = &at
	}
	if o.Items != nil {
		o.Items = append([]models.OrderItem(nil), o.Items...)
	}
	if o.Metrics != nil {
		m := models.OrderMetrics{}
		if o.Metrics.ProcessingTimeMinutes != nil {
			v := *o.Metrics.ProcessingTimeMinutes
			m.ProcessingTimeMinutes = &v
		}
		if o.Metrics.OrderToShipDays != nil {
			v := *o.Metrics.OrderToShipDays
			m.OrderToShipDays = &v
		}
		o.Metrics = &m
	}
	return o
}

var (
	_ repository.ProductRepository = (*ProductStore)(nil)
	_ repository.OrderRepository   = (*OrderStore)(nil)
	_ repository.UserRepository    = (*UserStore)(nil)
	_ repository.ReviewRepository  = (*ReviewStore)(nil)
)

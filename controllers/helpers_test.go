package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/snapshot"
	"go-storefront/utils"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSession = "3f1c9a52-6a7e-4c1b-9a55-2a1f7a0f0b11"

func newTestSessions(t *testing.T) *session.Manager {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := snapshot.NewStore(snapshot.NewRedisStorage(client, time.Hour), zap.NewNop())
	return session.NewManager(store, zap.NewNop())
}

// memStorage is an in-memory snapshot.Storage with switchable failures
type memStorage struct {
	mu       sync.Mutex
	data     map[string]string
	failGets bool
	failSets bool
}

func (m *memStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets {
		return "", errors.New("i/o timeout")
	}
	v, ok := m.data[key]
	if !ok {
		return "", snapshot.ErrNotFound
	}
	return v, nil
}

func (m *memStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSets {
		return errors.New("OOM command not allowed")
	}
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStorage) fail(gets, sets bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failGets, m.failSets = gets, sets
}

func newMemSessions() (*session.Manager, *memStorage) {
	storage := &memStorage{data: make(map[string]string)}
	return session.NewManager(snapshot.NewStore(storage, zap.NewNop()), zap.NewNop()), storage
}

type call struct {
	method string
	target string
	body   interface{}
	vars   map[string]string
	claims *utils.Claims
}

func serve(t *testing.T, handler http.HandlerFunc, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if c.body != nil {
		if raw, ok := c.body.(string); ok {
			body.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&body).Encode(c.body))
		}
	}

	target := c.target
	if target == "" {
		target = "/"
	}
	req := httptest.NewRequest(c.method, target, &body)
	ctx := middleware.WithSessionID(req.Context(), testSession)
	if c.claims != nil {
		ctx = context.WithValue(ctx, middleware.UserContextKey, c.claims)
	}
	req = req.WithContext(ctx)
	if c.vars != nil {
		req = mux.SetURLVars(req, c.vars)
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

type fakeProducts struct {
	mu        sync.Mutex
	products  map[string]models.Product
	listCalls int
	err       error
}

func newFakeProducts(products ...models.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[string]models.Product)}
	for _, p := range products {
		f.products[p.ID.Hex()] = p
	}
	return f
}

func (f *fakeProducts) List(_ context.Context, keyword string) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Product, 0)
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(keyword)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) Get(_ context.Context, id string) (*models.Product, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, repository.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeProducts) Create(_ context.Context, product *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product.ID = primitive.NewObjectID()
	f.products[product.ID.Hex()] = *product
	return nil
}

func (f *fakeProducts) Update(_ context.Context, id string, product models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.ID = existing.ID
	f.products[id] = product
	return nil
}

func (f *fakeProducts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*models.User)}
	for i := range users {
		u := users[i]
		f.users[u.ID.Hex()] = &u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *models.User) error {
	if _, err := f.GetByEmail(ctx, user.Email); err == nil {
		return repository.ErrUserExists
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	copied := *user
	f.users[user.ID.Hex()] = &copied
	return nil
}

func (f *fakeUsers) MarkVerified(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.VerificationToken == token {
			u.IsVerified = true
			u.VerificationToken = ""
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (f *fakeUsers) UpdateDetails(_ context.Context, id string, details models.AccountDetails) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.AccountDetails = details
	return nil
}

func (f *fakeUsers) SaveAddresses(_ context.Context, id string, addresses []models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Addresses = addresses
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (f *fakeOrders) Create(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, *order)
	return nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeMailer struct {
	orders        []models.Order
	verifications map[string]string
	err           error
}

func (f *fakeMailer) SendOrderEmail(_ context.Context, order models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeMailer) SendVerificationEmail(_ context.Context, toEmail, token string) error {
	if f.err != nil {
		return f.err
	}
	if f.verifications == nil {
		f.verifications = make(map[string]string)
	}
	f.verifications[toEmail] = token
	return nil
}

func product(name, price, category string) models.Product {
	return models.Product{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Price:    price,
		Category: category,
		Images:   []string{"/img/" + strings.ToLower(name) + ".png"},
	}
}

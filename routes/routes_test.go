package routes

import (
	"context"
	"encoding/json"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/repository"
	"go-storefront/session"
	"go-storefront/snapshot"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type catalog map[string]models.Product

func (c catalog) List(context.Context, string) ([]models.Product, error) {
	out := make([]models.Product, 0, len(c))
	for _, p := range c {
		out = append(out, p)
	}
	return out, nil
}

func (c catalog) Get(_ context.Context, id string) (*models.Product, error) {
	p, ok := c[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (c catalog) Create(context.Context, *models.Product) error        { return nil }
func (c catalog) Update(context.Context, string, models.Product) error { return nil }
func (c catalog) Delete(context.Context, string) error                 { return nil }

func newTestServer(t *testing.T, products catalog) *httptest.Server {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := zap.NewNop()
	sessions := session.NewManager(snapshot.NewStore(snapshot.NewRedisStorage(client, time.Hour), logger), logger)

	router := mux.NewRouter()
	router.Use(middleware.SessionMiddleware(time.Hour, false))
	router.Use(middleware.RequestLogger(logger))
	RegisterRoutes(router, Controllers{
		State:    controllers.NewStateController(sessions, logger),
		Cart:     controllers.NewCartController(sessions, products, time.Second, logger),
		Checkout: controllers.NewCheckoutController(sessions, nil, nil, pricing.DefaultTable(), time.Second, logger),
		Product:  controllers.NewProductController(products, sessions, time.Second, logger),
		User:     controllers.NewUserController(nil, nil, sessions, nil, time.Second, logger),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func TestCartSurvivesAcrossRequestsOfOneSession(t *testing.T) {
	tea := models.Product{ID: primitive.NewObjectID(), Name: "Tea", Price: "10.00"}
	server := newTestServer(t, catalog{tea.ID.Hex(): tea})
	client := newClient(t)

	resp, err := client.Post(server.URL+"/cart/items", "application/json",
		strings.NewReader(`{"productId":"`+tea.ID.Hex()+`","quantity":2}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(server.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	var state models.AppState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Len(t, state.Product.Items, 1)
	assert.Equal(t, 2, state.Product.Items[0].Quantity)

	other := newClient(t)
	resp, err = other.Get(server.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Empty(t, state.Product.Items, "a new session starts empty")
}

func TestRouteProtection(t *testing.T) {
	server := newTestServer(t, catalog{})
	client := newClient(t)

	resp, err := client.Post(server.URL+"/products", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.Get(server.URL + "/profile")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = client.Get(server.URL + "/checkout/regions")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

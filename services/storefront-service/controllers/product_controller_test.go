package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/arif-js/ecommerce-microservice-gitops-fullstack-gcp/services/common/models"
)

type fakeProductRepo struct {
	products []models.Product
	err      error
	calls    int
}

func (f *fakeProductRepo) List(_ context.Context) ([]models.Product, error) {
	f.calls++
	return f.products, f.err
}

type fakeCache struct {
	cached   []models.Product
	hit      bool
	getCalls int
	sets     [][]models.Product
}

func (f *fakeCache) Get(_ context.Context) ([]models.Product, bool) {
	f.getCalls++
	return f.cached, f.hit
}

func (f *fakeCache) SetAsync(products []models.Product) {
	f.sets = append(f.sets, products)
}

func listProducts(t *testing.T, pc *ProductController) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/products", pc.ListProducts)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeProducts(t *testing.T, w *httptest.ResponseRecorder) []models.Product {
	t.Helper()
	var body struct {
		Products []models.Product `json:"products"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Products
}

func TestListProducts_CacheHitSkipsDatabase(t *testing.T) {
	repo := &fakeProductRepo{}
	cache := &fakeCache{
		cached: []models.Product{{Name: "Nebula Watch", Price: 499}},
		hit:    true,
	}
	pc := NewProductController(repo, cache, zap.NewNop())

	w := listProducts(t, pc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.calls)
	products := decodeProducts(t, w)
	if assert.Len(t, products, 1) {
		assert.Equal(t, "Nebula Watch", products[0].Name)
	}
}

func TestListProducts_CacheMissFillsCache(t *testing.T) {
	repo := &fakeProductRepo{products: []models.Product{
		{Name: "Neural Link V1", Price: 299},
		{Name: "Void Runner X", Price: 150},
	}}
	cache := &fakeCache{}
	pc := NewProductController(repo, cache, zap.NewNop())

	w := listProducts(t, pc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, repo.calls)
	if assert.Len(t, cache.sets, 1) {
		assert.Len(t, cache.sets[0], 2)
	}
	assert.Len(t, decodeProducts(t, w), 2)
}

func TestListProducts_NilCacheServesFromDatabase(t *testing.T) {
	repo := &fakeProductRepo{products: []models.Product{{Name: "Cyber Glass Pro", Price: 999}}}
	pc := NewProductController(repo, nil, zap.NewNop())

	w := listProducts(t, pc)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeProducts(t, w), 1)
}

func TestListProducts_DatabaseFailure(t *testing.T) {
	repo := &fakeProductRepo{err: errors.New("connection refused")}
	cache := &fakeCache{}
	pc := NewProductController(repo, cache, zap.NewNop())

	w := listProducts(t, pc)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, cache.sets)
}

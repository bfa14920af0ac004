package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoriesJSON = `{"data":[
	{"_id":"c1","name":"oysterBar","description":"per piece","children":["c1a","c1b"]},
	{"_id":"c2","name":"drinks","description":""}
]}`

const productsJSON = `{"data":[
	{"_id":"p1","name":"Oyster","price":95,"available":true,"category":"c1","image":"/img/p1.png"},
	{"_id":"p2","name":"Lemonade","price":59.5,"available":false,"category":"c2","description":"0.4 l"}
]}`

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("clientId") != "client-1" {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/categories":
			_, _ = w.Write([]byte(categoriesJSON))
		case "/api/v1/products":
			_, _ = w.Write([]byte(productsJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPCatalogRepository_Categories(t *testing.T) {
	srv := newCatalogServer(t)
	repo, err := NewHTTPCatalogRepository(srv.URL, "client-1", time.Second)
	require.NoError(t, err)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)

	assert.Equal(t, "c1", categories[0].ID)
	assert.Equal(t, "oysterBar", categories[0].Name)
	assert.Equal(t, "per piece", categories[0].Description)
	assert.Equal(t, []string{"c1a", "c1b"}, categories[0].Children)
	assert.Equal(t, "drinks", categories[1].Name)
}

func TestHTTPCatalogRepository_Products(t *testing.T) {
	srv := newCatalogServer(t)
	repo, err := NewHTTPCatalogRepository(srv.URL, "client-1", time.Second)
	require.NoError(t, err)

	products, err := repo.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "p1", products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(95)))
	assert.True(t, products[0].Available)
	assert.Equal(t, "c1", products[0].Category)
	assert.Equal(t, "/img/p1.png", products[0].Image)

	assert.True(t, products[1].Price.Equal(decimal.RequireFromString("59.5")))
	assert.False(t, products[1].Available)
	assert.Equal(t, "0.4 l", products[1].Description)
}

func TestHTTPCatalogRepository_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[`))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			repo, err := NewHTTPCatalogRepository(srv.URL, "client-1", time.Second)
			require.NoError(t, err)

			_, err = repo.Products(context.Background())
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestHTTPCatalogRepository_MissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer srv.Close()

	repo, err := NewHTTPCatalogRepository(srv.URL, "client-1", time.Second)
	require.NoError(t, err)

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestNewHTTPCatalogRepository_InvalidURL(t *testing.T) {
	_, err := NewHTTPCatalogRepository("api.example.com", "client-1", time.Second)
	assert.Error(t, err)
}

func TestInMemoryCatalogRepository(t *testing.T) {
	repo := NewDemoCatalogRepository()

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories)

	products, err := repo.Products(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, products)

	// callers get their own copy
	products[0].Name = "changed"
	again, err := repo.Products(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", again[0].Name)
}

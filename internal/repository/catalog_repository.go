package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Lixing-Zhang/qr-menu/internal/models"
)

var (
	ErrUpstream = errors.New("catalog upstream error")
)

// CatalogRepository defines read access to the restaurant catalog
type CatalogRepository interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Products(ctx context.Context) ([]models.Product, error)
}

// envelope is the response wrapper used by the catalog API
type envelope[T any] struct {
	Data []T `json:"data"`
}

// HTTPCatalogRepository reads categories and products from the catalog API
type HTTPCatalogRepository struct {
	baseURL  *url.URL
	clientID string
	client   *http.Client
}

// NewHTTPCatalogRepository creates a repository for the API at baseURL
// (scheme and host, e.g. https://api.example.com) scoped to clientID
func NewHTTPCatalogRepository(baseURL, clientID string, timeout time.Duration) (*HTTPCatalogRepository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid catalog URL: %q is not an absolute URL", baseURL)
	}

	return &HTTPCatalogRepository{
		baseURL:  u,
		clientID: clientID,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Categories returns all categories of the client, in API order
func (r *HTTPCatalogRepository) Categories(ctx context.Context) ([]models.Category, error) {
	return fetch[models.Category](ctx, r, "/api/v1/categories")
}

// Products returns all products of the client, in API order
func (r *HTTPCatalogRepository) Products(ctx context.Context) ([]models.Product, error) {
	return fetch[models.Product](ctx, r, "/api/v1/products")
}

func fetch[T any](ctx context.Context, r *HTTPCatalogRepository, path string) ([]T, error) {
	u := r.baseURL.JoinPath(path)
	q := u.Query()
	q.Set("clientId", r.clientID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: unexpected status code: %d", ErrUpstream, path, resp.StatusCode)
	}

	var body envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: GET %s: decode response: %v", ErrUpstream, path, err)
	}

	return body.Data, nil
}

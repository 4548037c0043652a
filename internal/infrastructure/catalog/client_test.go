package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stockboard/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, ClientConfig{Timeout: 2 * time.Second, RateLimit: 1000, Burst: 100}, nil)
}

func TestNewClient(t *testing.T) {
	client := NewClient("https://store.example.com/api/", ClientConfig{}, nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://store.example.com/api", client.baseURL)
	assert.Equal(t, 10*time.Second, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.logger)
}

func TestGetByBarcode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products/product/8901234567890", r.URL.Path)
		assert.Equal(t, "StockBoard/1.0", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"p1","name":"Tea","category":"Category1","barcode":"8901234567890","price":3.5}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/api")
	result, err := client.GetByBarcode(context.Background(), "8901234567890")

	require.NoError(t, err)
	assert.Equal(t, "p1", result.ID)
	assert.Equal(t, "Tea", result.Name)
	assert.Equal(t, "Category1", result.Category)
	assert.JSONEq(t, `3.5`, string(result.Extra["price"]))
}

func TestGetByBarcode_EscapesPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/product/a%2Fb", r.URL.EscapedPath())
		w.Write([]byte(`{"_id":"p1"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetByBarcode(context.Background(), "a/b")
	require.NoError(t, err)
}

func TestGetByBarcode_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Product not found"}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).GetByBarcode(context.Background(), "000")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), "Product not found")
}

func TestGetByBarcode_ClientErrorIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid barcode"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetByBarcode(context.Background(), "abc")

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Contains(t, err.Error(), "Invalid barcode")
}

func TestGetByBarcode_ServerErrorIsTransient(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetByBarcode(context.Background(), "123")

	assert.ErrorIs(t, err, domain.ErrTransientFailure)
	assert.Equal(t, 1, attempts) // no automatic retry
}

func TestGetByBarcode_TooManyRequestsIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetByBarcode(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrTransientFailure)
}

func TestGetByBarcode_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).GetByBarcode(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrTransientFailure)
}

func TestGetByBarcode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `not json`},
		{"missing id", `{"name":"Tea"}`},
		{"array instead of object", `[{"_id":"p1"}]`},
		{"null", `null`},
		{"wrong name type", `{"_id":"p1","name":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			result, err := newTestClient(server.URL).GetByBarcode(context.Background(), "123")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestGetByBarcode_EmptyMakesNoRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetByBarcode(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyIdentifier)
	assert.False(t, called)
}

func TestGetByBarcode_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).GetByBarcode(ctx, "slow")
	assert.ErrorIs(t, err, domain.ErrTransientFailure)
}

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Write([]byte(`[
			{"_id":"p1","name":"Tea","category":"Category1","barcode":"1"},
			{"_id":"p2","name":"Soap","barcode":"2"}
		]`))
	}))
	defer server.Close()

	products, err := newTestClient(server.URL).ListProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Category1", products[0].Category)
	assert.Equal(t, "", products[1].Category)
	assert.Equal(t, "Uncategorized", products[1].DisplayCategory())
}

func TestListProducts_MalformedItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"_id":"p1"},{"name":"no id"}]`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListProducts(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "item 1")
}

func TestSetCategory(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/products/p1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &gotBody))
		w.Write([]byte(`{"_id":"p1","category":"Category2"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).SetCategory(context.Background(), "p1", domain.BucketCategory2)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"category": "Category2"}, gotBody)
}

func TestSetCategory_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"server error", http.StatusBadGateway, domain.ErrTransientFailure},
		{"rejected", http.StatusUnprocessableEntity, domain.ErrRequestRejected},
		{"unknown product", http.StatusNotFound, domain.ErrProductNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := newTestClient(server.URL).SetCategory(context.Background(), "p1", domain.BucketCategory1)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAnalytics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/analytics", r.URL.Path)
		w.Write([]byte(`{
			"categoryStats":[{"_id":"Category1","count":3},{"_id":null,"count":1}],
			"recentProducts":[{"_id":"p9","name":"Milk","barcode":"9"}]
		}`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Analytics(context.Background())

	require.NoError(t, err)
	require.Len(t, result.CategoryStats, 2)
	assert.Equal(t, "Category1", result.CategoryStats[0].Category)
	assert.Equal(t, 3, result.CategoryStats[0].Count)
	assert.Equal(t, "", result.CategoryStats[1].Category)
	require.Len(t, result.RecentProducts, 1)
	assert.Equal(t, "p9", result.RecentProducts[0].ID)
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/search", r.URL.Path)
		assert.Equal(t, "tea", r.URL.Query().Get("name"))
		assert.Equal(t, "Category1", r.URL.Query().Get("category"))
		w.Write([]byte(`[{"_id":"p1","name":"Green Tea","category":"Category1"}]`))
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Search(context.Background(), domain.SearchQuery{Name: "tea", Category: "Category1"})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Green Tea", result[0].Name)
}

func TestSearch_NotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).Search(context.Background(), domain.SearchQuery{Name: "nothing"})

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRequestCreationError(t *testing.T) {
	_, err := newTestClient("://invalid-url").ListProducts(context.Background())
	assert.Error(t, err)
}

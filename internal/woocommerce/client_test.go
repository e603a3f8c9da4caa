package woocommerce

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"mirror/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "ck_test", "cs_test", 5*time.Second, logger.New("error"))
}

func TestListPageLogsRequests(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "ck_test", "cs_test", 5*time.Second, logger.New("debug"))
	_, _, _, err := client.ListProducts(nil, 1, 100)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Fetching products page 1")
}

func TestListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		assert.Equal(t, "cs_test", r.URL.Query().Get("consumer_secret"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "any", r.URL.Query().Get("status"))

		w.Header().Set("X-WP-Total", "142")
		w.Header().Set("X-WP-TotalPages", "2")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 7, "name": "Gita a Roma", "sku": "EVT-211225", "price": "45.00",
			 "status": "publish", "type": "variable",
			 "permalink": "https://shop.example.com/product/gita-a-roma",
			 "date_created_gmt": "2025-02-01T12:00:00",
			 "date_modified_gmt": "2025-03-01T08:30:00"}
		]`))
	})

	params := url.Values{}
	params.Set("status", "any")
	products, total, totalPages, err := client.ListProducts(params, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, 142, total)
	assert.Equal(t, 2, totalPages)
	require.Len(t, products, 1)
	assert.EqualValues(t, 7, products[0].ID)
	assert.Equal(t, "EVT-211225", products[0].SKU)
	assert.Equal(t, "variable", products[0].Type)
	assert.Equal(t, time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC), products[0].DateModified.Time)
}

func TestListOrders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)
		assert.Equal(t, "2025-06-01T11:00:00Z", r.URL.Query().Get("modified_after"))

		w.Header().Set("X-WP-Total", "1")
		w.Header().Set("X-WP-TotalPages", "1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 101, "status": "processing", "currency": "EUR", "total": "120.00",
			 "billing": {"first_name": "Mario", "last_name": "Rossi", "email": "mario@example.com", "phone": "333"},
			 "meta_data": [{"id": 1, "key": "_fermata", "value": "Piazza Garibaldi"},
			               {"id": 2, "key": "_posti", "value": [12, 13]}],
			 "line_items": [{"id": 9, "name": "Gita a Roma", "product_id": 7, "quantity": 2,
			                 "total": "120.00", "meta_data": []}],
			 "date_created_gmt": "2025-05-10T09:00:00",
			 "date_modified_gmt": "2025-06-02T10:00:00"}
		]`))
	})

	params := url.Values{}
	params.Set("modified_after", "2025-06-01T11:00:00Z")
	orders, total, _, err := client.ListOrders(params, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.EqualValues(t, 101, order.ID)
	assert.Equal(t, "processing", order.Status)
	assert.Equal(t, "120.00", order.Total)
	assert.Equal(t, "Rossi", order.Billing.LastName)

	require.Len(t, order.LineItems, 1)
	assert.EqualValues(t, 7, order.LineItems[0].ProductID)
	assert.Equal(t, 2, order.LineItems[0].Quantity)

	// Free-form meta values survive verbatim, whatever their JSON shape.
	require.Len(t, order.MetaData, 2)
	assert.JSONEq(t, `"Piazza Garibaldi"`, string(order.MetaData[0].Value))
	assert.JSONEq(t, `[12, 13]`, string(order.MetaData[1].Value))
}

func TestListVariations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/7/variations", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 11, "sku": "VAR-211225", "price": "35.00", "stock_quantity": 12,
			 "stock_status": "instock",
			 "attributes": [{"id": 1, "name": "Data viaggio", "option": "3 Agosto 2025"}],
			 "date_modified_gmt": "2025-03-01T08:30:00"}
		]`))
	})

	variations, err := client.ListVariations(7)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	assert.EqualValues(t, 11, variations[0].ID)
	require.NotNil(t, variations[0].StockQuantity)
	assert.Equal(t, 12, *variations[0].StockQuantity)
	require.Len(t, variations[0].Attributes, 1)
	assert.Equal(t, "3 Agosto 2025", variations[0].Attributes[0].Option)
}

func TestListPageErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"rest_forbidden"}`, http.StatusUnauthorized)
	})

	_, _, _, err := client.ListProducts(nil, 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestTimestampUnmarshal(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.UnmarshalJSON([]byte(`"2025-05-10T09:00:00"`)))
	assert.Equal(t, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC), ts.Time)

	require.NoError(t, ts.UnmarshalJSON([]byte(`null`)))
	assert.True(t, ts.IsZero())

	require.NoError(t, ts.UnmarshalJSON([]byte(`""`)))
	assert.True(t, ts.IsZero())

	require.NoError(t, ts.UnmarshalJSON([]byte(`"2025-05-10T09:00:00Z"`)))
	assert.Equal(t, time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC), ts.Time)
}

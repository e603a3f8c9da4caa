package woocommerce

import (
	"encoding/json"
	"strings"
	"time"
)

// Timestamp parses the platform's zone-less GMT timestamps
// ("2006-01-02T15:04:05") while tolerating null and empty values.
type Timestamp struct {
	time.Time
}

const timestampLayout = "2006-01-02T15:04:05"

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(timestampLayout, s)
	if err != nil {
		// Some endpoints return full RFC3339 stamps.
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte(`null`), nil
	}
	return json.Marshal(t.Time.Format(timestampLayout))
}

// Product represents a remote catalog product
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Price        string    `json:"price"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	Permalink    string    `json:"permalink"`
	DateCreated  Timestamp `json:"date_created_gmt"`
	DateModified Timestamp `json:"date_modified_gmt"`
}

// Attribute is one name/option pair on a variation
type Attribute struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Option string `json:"option"`
}

// Variation represents one variation of a variable product
type Variation struct {
	ID            int64       `json:"id"`
	SKU           string      `json:"sku"`
	Price         string      `json:"price"`
	StockQuantity *int        `json:"stock_quantity"`
	StockStatus   string      `json:"stock_status"`
	Attributes    []Attribute `json:"attributes"`
	DateModified  Timestamp   `json:"date_modified_gmt"`
}

// MetaData is one free-form extension field, preserved verbatim
type MetaData struct {
	ID    int64           `json:"id"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// LineItem is one product line inside an order
type LineItem struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	ProductID int64      `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Total     string     `json:"total"`
	MetaData  []MetaData `json:"meta_data"`
}

// Billing is the order billing contact snapshot
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Order represents a remote order with its line items
type Order struct {
	ID           int64      `json:"id"`
	Status       string     `json:"status"`
	Currency     string     `json:"currency"`
	Total        string     `json:"total"`
	Billing      Billing    `json:"billing"`
	MetaData     []MetaData `json:"meta_data"`
	LineItems    []LineItem `json:"line_items"`
	DateCreated  Timestamp  `json:"date_created_gmt"`
	DateModified Timestamp  `json:"date_modified_gmt"`
}

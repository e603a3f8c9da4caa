package models

import (
	"encoding/json"
	"time"
)

// Order mirrors one remote order. Status strings come straight from the
// remote platform and are treated opaquely.
type Order struct {
	ID               int64     `json:"id" gorm:"primaryKey"`
	Status           string    `json:"status" gorm:"index"`
	Total            float64   `json:"total" gorm:"type:decimal(10,2)"`
	Currency         string    `json:"currency"`
	BillingFirstName string    `json:"billing_first_name"`
	BillingLastName  string    `json:"billing_last_name"`
	BillingEmail     string    `json:"billing_email"`
	BillingPhone     string    `json:"billing_phone"`
	Metadata         MetaBag   `json:"metadata" gorm:"serializer:json"`
	RemoteCreatedAt  time.Time `json:"remote_created_at"`
	// LastSyncedAt is the incremental watermark: the moment this row was
	// last written by a sync run.
	LastSyncedAt time.Time `json:"last_synced_at" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	LineItems []OrderLineItem `json:"line_items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderLineItem is owned exclusively by one order. The remote platform gives
// no stable identity for line items across edits, so rows are replaced as a
// set on every sync of the parent order and carry a local autoincrement key.
type OrderLineItem struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID     int64     `json:"order_id" gorm:"not null;index"`
	ProductID   *int64    `json:"product_id" gorm:"index"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Total       float64   `json:"total" gorm:"type:decimal(10,2)"`
	Metadata    MetaBag   `json:"metadata" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"created_at"`

	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

// MetaBag preserves the remote free-form key/value extension fields verbatim
// as an ordered list of pairs. Downstream consumers interpret specific keys;
// the engine never does.
type MetaBag []MetaEntry

type MetaEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

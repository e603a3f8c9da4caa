package models

import (
	"time"
)

// Product mirrors one remote catalog product. The primary key is the
// remote-assigned ID, which is stable and never reused.
type Product struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null"`
	SKU              string     `json:"sku" gorm:"index"`
	Price            float64    `json:"price" gorm:"type:decimal(10,2)"`
	Status           string     `json:"status"`
	ProductType      string     `json:"product_type"`
	Permalink        string     `json:"permalink"`
	RemoteCreatedAt  time.Time  `json:"remote_created_at"`
	RemoteModifiedAt time.Time  `json:"remote_modified_at"`
	EventDate        *time.Time `json:"event_date" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Variations []ProductVariation `json:"variations,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
	ProductTypeExternal ProductType = "external"
	ProductTypeGrouped  ProductType = "grouped"
)

// ProductVariation is owned by exactly one variable product and has no
// lifecycle of its own.
type ProductVariation struct {
	ID            int64        `json:"id" gorm:"primaryKey"`
	ProductID     int64        `json:"product_id" gorm:"not null;index"`
	Name          string       `json:"name"`
	SKU           string       `json:"sku" gorm:"index"`
	Price         float64      `json:"price" gorm:"type:decimal(10,2)"`
	StockQuantity *int         `json:"stock_quantity"`
	StockStatus   string       `json:"stock_status"`
	Attributes    AttributeBag `json:"attributes" gorm:"serializer:json"`
	EventDate     *time.Time   `json:"event_date" gorm:"index"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// AttributeBag keeps the remote attribute name/value pairs in their
// original order.
type AttributeBag []AttributeEntry

type AttributeEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

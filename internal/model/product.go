package model

import "time"

// Product is the locally cached product read model. The whole struct is
// persisted as a JSON document; a handful of fields are denormalized into
// indexed columns for filtering and sorting.
type Product struct {
	ID                string  `json:"id"`
	StoreID           string  `json:"store_id"`
	Name              string  `json:"name"`
	Category          string  `json:"category,omitempty"`
	SKU               string  `json:"sku,omitempty"`
	Barcode           string  `json:"barcode,omitempty"`
	Active            bool    `json:"is_active"`
	PriceBS           float64 `json:"price_bs"`
	PriceUSD          float64 `json:"price_usd"`
	CostBS            float64 `json:"cost_bs"`
	CostUSD           float64 `json:"cost_usd"`
	LowStockThreshold int     `json:"low_stock_threshold,omitempty"`
	Description       string  `json:"description,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
	CachedAt  time.Time `json:"cached_at"`
}

// Customer is the locally cached customer read model, persisted the same
// way as Product: JSON document plus denormalized filter columns.
type Customer struct {
	ID         string `json:"id"`
	StoreID    string `json:"store_id"`
	Name       string `json:"name"`
	DocumentID string `json:"document_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Note       string `json:"note,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
	CachedAt  time.Time `json:"cached_at"`
}

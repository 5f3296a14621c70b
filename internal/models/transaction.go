package models

import "time"

// Row is one loosely-typed source record keyed by column header. Values are
// scalars as delivered by the source reader (string, float64, int64, nil...).
type Row map[string]any

// TransactionRecord is the canonical purchase after normalization. Every field
// is populated; missing or unparseable inputs have already been replaced by
// their fill values.
type TransactionRecord struct {
	Index         int       `json:"index"`
	CustomerName  string    `json:"customer_name"`
	SKU           string    `json:"sku"`
	ProductName   string    `json:"product_name"`
	Category      string    `json:"category"`
	SubCategory   string    `json:"sub_category"`
	PaymentMethod string    `json:"payment_method"`
	TotalPrice    float64   `json:"total_price"`
	Quantity      float64   `json:"quantity"`
	UnitPrice     float64   `json:"unit_price"`
	ReviewRating  float64   `json:"review_rating"`
	PurchaseDate  time.Time `json:"purchase_date"`
}

type CategoryValue struct {
	Category string  `json:"category" yaml:"category"`
	Value    float64 `json:"value" yaml:"value"`
}

type CategoryCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

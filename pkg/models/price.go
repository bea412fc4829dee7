package models

import "time"

// OnlineStore is reported for listings whose marketplace could not be identified.
const OnlineStore = "Online Store"

// PriceRecord is one observed price at one marketplace. URL is the dedup key.
type PriceRecord struct {
	Marketplace        string    `json:"marketplace"`
	Price              float64   `json:"price"`
	Currency           string    `json:"currency"`
	URL                string    `json:"url"`
	Description        string    `json:"description,omitempty"`
	Images             []string  `json:"images"`
	LastUpdated        time.Time `json:"last_updated"`
	InStock            bool      `json:"in_stock"`
	OriginalPrice      *float64  `json:"original_price"`
	DiscountPercentage *float64  `json:"discount_percentage"`
}

// NewPriceRecord fills the defaults every extraction strategy shares.
func NewPriceRecord(marketplace string, price float64, currency, url string) PriceRecord {
	if marketplace == "" {
		marketplace = OnlineStore
	}
	return PriceRecord{
		Marketplace: marketplace,
		Price:       price,
		Currency:    currency,
		URL:         url,
		Images:      []string{},
		LastUpdated: time.Now().UTC(),
		InStock:     true,
	}
}

// PageDetails is the best-effort result of inspecting a single URL.
// Price may be zero.
type PageDetails struct {
	Price       float64 `json:"price"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Currency    string  `json:"currency"`
}

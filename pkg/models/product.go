package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DefaultCategory is reported for every product until categorisation exists.
const DefaultCategory = "Electronics"

// ProductQuery is the parsed form of a free-text product search.
type ProductQuery struct {
	Name  string
	Brand string
}

// NewProductQuery takes the first whitespace-delimited token of name as the brand.
func NewProductQuery(name string) ProductQuery {
	name = strings.TrimSpace(name)
	brand := ""
	if fields := strings.Fields(name); len(fields) > 0 {
		brand = fields[0]
	}
	return ProductQuery{Name: name, Brand: brand}
}

// FlashPID is a stable identifier for the product across calls.
func (q ProductQuery) FlashPID() string {
	sum := sha256.Sum256([]byte(strings.ToLower(q.Brand) + ":" + strings.ToLower(q.Name)))
	return hex.EncodeToString(sum[:])[:16]
}

type ProductInfo struct {
	FlashPID        string  `json:"flash_pid"`
	Brand           string  `json:"brand"`
	ProductName     string  `json:"product_name"`
	NormalizedTitle string  `json:"normalized_title"`
	Category        *string `json:"category"`
	ConfidenceScore float64 `json:"confidence_score"`
}

type SearchResponse struct {
	Product   ProductInfo    `json:"product"`
	Prices    []PriceRecord  `json:"prices"`
	BestPrice *PriceRecord   `json:"best_price"`
	Metadata  map[string]any `json:"metadata"`
}

package models

import "time"

const DocumentTypeProduct = "Product"

// Product shares the documents collection with Order; Type is always "Product".
type Product struct {
	ID            string     `bson:"_id" json:"id"`
	Type          string     `bson:"type" json:"type"`
	Name          string     `bson:"name" json:"name"`
	Description   string     `bson:"description" json:"description"`
	Price         Money      `bson:"price" json:"price"`
	StockQuantity int        `bson:"stockQuantity" json:"stockQuantity"`
	ImageURL      string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Category      string     `bson:"category" json:"category"`
	SKU           string     `bson:"sku" json:"sku"`
	IsAvailable   bool       `bson:"isAvailable" json:"isAvailable"`
	CreatedAt     time.Time  `bson:"createdAt" json:"createdAt"`
	ModifiedAt    *time.Time `bson:"modifiedAt,omitempty" json:"modifiedAt,omitempty"`
}

func (p *Product) Touch(at time.Time) {
	p.ModifiedAt = &at
}

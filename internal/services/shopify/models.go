package shopify

import (
	"time"
)

// Product represents a Shopify product
type Product struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	BodyHTML    string     `json:"body_html"`
	Vendor      string     `json:"vendor"`
	ProductType string     `json:"product_type"`
	Handle      string     `json:"handle"`
	Status      string     `json:"status"`
	Tags        string     `json:"tags"`
	Variants    []Variant  `json:"variants"`
	Images      []Image    `json:"images"`
	Options     []Option   `json:"options"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// Variant represents a product variant
type Variant struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id,omitempty"`
	Title     string  `json:"title,omitempty"`
	Price     string  `json:"price,omitempty"`
	Sku       string  `json:"sku,omitempty"`
	Position  int     `json:"position,omitempty"`
	Option1   *string `json:"option1,omitempty"`
	Option2   *string `json:"option2,omitempty"`
	Option3   *string `json:"option3,omitempty"`
}

// Image represents a product image
type Image struct {
	ID       int64  `json:"id"`
	Position int    `json:"position"`
	Src      string `json:"src"`
}

// Option represents a product option
type Option struct {
	ID     int64    `json:"id,omitempty"`
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Metafield carries supplementary product data on updates.
type Metafield struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

// UpdatePayload is the product shape sent back on writes. SEO fields ride
// on the metafields; slug is the handle.
type UpdatePayload struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title,omitempty"`
	BodyHTML    string      `json:"body_html,omitempty"`
	ProductType string      `json:"product_type,omitempty"`
	Handle      string      `json:"handle,omitempty"`
	Tags        string      `json:"tags,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Variants    []Variant   `json:"variants,omitempty"`
	Metafields  []Metafield `json:"metafields,omitempty"`
}

// ProductsPage is one page of a paginated catalog listing.
type ProductsPage struct {
	Products []Product
	NextPage string
}

// WebhookPayload represents a Shopify product webhook body. Delete webhooks
// carry only the id.
type WebhookPayload struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Handle      string    `json:"handle"`
	Status      string    `json:"status"`
	Tags        string    `json:"tags"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
	Options     []Option  `json:"options"`
}

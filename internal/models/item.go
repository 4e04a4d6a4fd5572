package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ItemStatus controls whether an item is eligible for forward publishing.
type ItemStatus string

const (
	StatusActive   ItemStatus = "active"
	StatusDraft    ItemStatus = "draft"
	StatusArchived ItemStatus = "archived"
)

// CatalogItem is the canonical product shape the pipeline works on. It is
// normalized from storefront payloads at the ingress boundary so the core
// never deals with optional/missing JSON fields.
type CatalogItem struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	BodyHTML    string       `json:"body_html"`
	Vendor      string       `json:"vendor"`
	ProductType string       `json:"product_type"`
	Handle      string       `json:"handle"`
	Status      ItemStatus   `json:"status"`
	Tags        []string     `json:"tags"`
	Options     []ItemOption `json:"options"`
	Variants    []ItemVariant `json:"variants"`
	Images      []string     `json:"images"`
}

// ItemOption is one product option and the ordered labels it can take.
type ItemOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ItemVariant references up to three option values. Price and SKU are
// passed through untouched.
type ItemVariant struct {
	ID      int64   `json:"id"`
	Option1 *string `json:"option1"`
	Option2 *string `json:"option2"`
	Option3 *string `json:"option3"`
	Price   string  `json:"price"`
	SKU     string  `json:"sku"`
}

// HasTag reports whether the item carries the given tag, case-insensitively.
func (i *CatalogItem) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// Fingerprint derives a stable marker of the source content that feeds the
// pipeline. Anything outside the hashed fields may change without forcing a
// reprocess.
func (i *CatalogItem) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(i.Title))
	h.Write([]byte{0})
	h.Write([]byte(i.BodyHTML))
	h.Write([]byte{0})
	h.Write([]byte(i.Status))
	for _, opt := range i.Options {
		h.Write([]byte{0})
		h.Write([]byte(opt.Name))
		for _, v := range opt.Values {
			h.Write([]byte{1})
			h.Write([]byte(v))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// OptionValues returns the variant's option values in order, skipping nils.
func (v *ItemVariant) OptionValues() []string {
	var out []string
	for _, p := range []*string{v.Option1, v.Option2, v.Option3} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

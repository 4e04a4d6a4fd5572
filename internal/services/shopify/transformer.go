package shopify

import (
	"strings"

	"localizer/internal/models"
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// ToCatalogItem converts a Shopify product to the canonical format the
// pipeline works on. Tags are normalized from Shopify's comma string here so
// the core never parses them.
func (t *Transformer) ToCatalogItem(p *Product) *models.CatalogItem {
	item := &models.CatalogItem{
		ID:          p.ID,
		Title:       p.Title,
		BodyHTML:    p.BodyHTML,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Handle:      p.Handle,
		Status:      models.ItemStatus(p.Status),
		Tags:        SplitTags(p.Tags),
	}

	for _, opt := range p.Options {
		item.Options = append(item.Options, models.ItemOption{
			Name:   opt.Name,
			Values: append([]string(nil), opt.Values...),
		})
	}

	for _, v := range p.Variants {
		item.Variants = append(item.Variants, models.ItemVariant{
			ID:      v.ID,
			Option1: v.Option1,
			Option2: v.Option2,
			Option3: v.Option3,
			Price:   v.Price,
			SKU:     v.Sku,
		})
	}

	for _, img := range p.Images {
		item.Images = append(item.Images, img.Src)
	}

	return item
}

// FromWebhook converts a webhook body to the canonical format.
func (t *Transformer) FromWebhook(w *WebhookPayload) *models.CatalogItem {
	return t.ToCatalogItem(&Product{
		ID:          w.ID,
		Title:       w.Title,
		BodyHTML:    w.BodyHTML,
		Vendor:      w.Vendor,
		ProductType: w.ProductType,
		Handle:      w.Handle,
		Status:      w.Status,
		Tags:        w.Tags,
		Variants:    w.Variants,
		Images:      w.Images,
		Options:     w.Options,
	})
}

// ToUpdatePayload builds the write-back payload from a processed item.
func (t *Transformer) ToUpdatePayload(item *models.CatalogItem, tr *models.TranslatedItem) *UpdatePayload {
	payload := &UpdatePayload{
		ID:          item.ID,
		Title:       tr.Title,
		BodyHTML:    tr.Description,
		ProductType: tr.ProductType,
		Handle:      tr.Slug,
		Tags:        JoinTags(tr.Tags),
	}

	for _, opt := range tr.Options {
		payload.Options = append(payload.Options, Option{
			Name:   opt.Name,
			Values: append([]string(nil), opt.Values...),
		})
	}

	for _, v := range tr.Variants {
		payload.Variants = append(payload.Variants, Variant{
			ID:      v.ID,
			Option1: v.Option1,
			Option2: v.Option2,
			Option3: v.Option3,
		})
	}

	payload.Metafields = []Metafield{
		{Namespace: "custom", Key: "collection_detected", Type: "single_line_text_field", Value: tr.Category},
	}
	if tr.SEOTitle != "" {
		payload.Metafields = append(payload.Metafields,
			Metafield{Namespace: "global", Key: "title_tag", Type: "single_line_text_field", Value: tr.SEOTitle},
			Metafield{Namespace: "global", Key: "description_tag", Type: "single_line_text_field", Value: tr.SEODescription},
		)
	}
	if tr.DeliveryDays != "" {
		payload.Metafields = append(payload.Metafields,
			Metafield{Namespace: "custom", Key: "delivery_days", Type: "single_line_text_field", Value: tr.DeliveryDays})
	}

	return payload
}

// SplitTags normalizes Shopify's comma-separated tag string.
func SplitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTags renders tags back to Shopify's comma string.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"localizer/internal/logger"
	"localizer/internal/models"
	"localizer/internal/services/meta"
	"localizer/internal/services/shopify"
)

// Publisher writes a processed item out to the storefront and the social
// channel. Implementations return whatever external identifiers a later
// retraction needs.
type Publisher interface {
	Publish(ctx context.Context, item *models.CatalogItem, translated *models.TranslatedItem) (models.ExternalRefs, error)
	MarkUnavailable(ctx context.Context, item *models.CatalogItem, refs models.ExternalRefs) error
	Retract(ctx context.Context, itemID int64, refs models.ExternalRefs) error
}

// ChannelPublisher is the production Publisher: Shopify write-back plus the
// Meta cross-post. A social failure never rolls back the storefront write.
type ChannelPublisher struct {
	shopify *shopify.Client
	adapter *shopify.Transformer
	meta    *meta.Client
	logger  *logger.Logger
}

func NewChannelPublisher(shopifyClient *shopify.Client, metaClient *meta.Client, logger *logger.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		shopify: shopifyClient,
		adapter: shopify.NewTransformer(),
		meta:    metaClient,
		logger:  logger,
	}
}

func (p *ChannelPublisher) Publish(ctx context.Context, item *models.CatalogItem, translated *models.TranslatedItem) (models.ExternalRefs, error) {
	var refs models.ExternalRefs

	if err := p.writeStorefront(ctx, item, translated); err != nil {
		return refs, err
	}

	if p.meta != nil && p.meta.Enabled() {
		caption := translated.Title + "\n\n" + StripHTML(translated.Description)
		published, err := p.meta.PublishProduct(ctx, item, caption)
		if err != nil {
			// The storefront write already happened; social is best-effort.
			p.logger.Error("Social publish failed for item %d: %v", item.ID, err)
		} else {
			refs = published
		}
	}

	return refs, nil
}

// writeStorefront performs the product update, falling back to the split
// write path when the variant set is rejected as too large, and tolerating
// duplicate-variant rejections (partial success is acceptable).
func (p *ChannelPublisher) writeStorefront(ctx context.Context, item *models.CatalogItem, translated *models.TranslatedItem) error {
	payload := p.adapter.ToUpdatePayload(item, translated)

	err := p.shopify.UpdateProduct(ctx, payload)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, shopify.ErrTooManyVariants):
		p.logger.Info("Variant set too large for item %d, using split write path", item.ID)
		return p.writeSplit(ctx, payload)
	case errors.Is(err, shopify.ErrDuplicateVariant):
		p.logger.Error("Duplicate variant rejected for item %d, retrying without variants: %v", item.ID, err)
		base := *payload
		base.Variants = nil
		base.Options = nil
		if err := p.shopify.UpdateProduct(ctx, &base); err != nil {
			return fmt.Errorf("base write after duplicate-variant rejection: %w", err)
		}
		return nil
	default:
		return err
	}
}

// writeSplit writes the base fields first, then each variant on its own,
// skipping duplicate-variant rejections.
func (p *ChannelPublisher) writeSplit(ctx context.Context, payload *shopify.UpdatePayload) error {
	base := *payload
	base.Variants = nil

	if err := p.shopify.UpdateProduct(ctx, &base); err != nil {
		return fmt.Errorf("base write: %w", err)
	}

	for i := range payload.Variants {
		v := payload.Variants[i]
		if err := p.shopify.UpdateVariant(ctx, &v); err != nil {
			if errors.Is(err, shopify.ErrDuplicateVariant) {
				p.logger.Error("Skipping duplicate variant %d on split write: %v", v.ID, err)
				continue
			}
			p.logger.Error("Variant %d write failed on split path: %v", v.ID, err)
		}
	}

	return nil
}

// MarkUnavailable takes the social posts down for an item that is no longer
// active. The storefront copy stays untouched so the write does not
// retrigger the pipeline through the webhook loop.
func (p *ChannelPublisher) MarkUnavailable(ctx context.Context, item *models.CatalogItem, refs models.ExternalRefs) error {
	if p.meta == nil || !p.meta.Enabled() || refs.Empty() {
		return nil
	}
	return p.meta.DeletePosts(ctx, refs)
}

func (p *ChannelPublisher) Retract(ctx context.Context, itemID int64, refs models.ExternalRefs) error {
	if p.meta == nil || !p.meta.Enabled() || refs.Empty() {
		return nil
	}
	return p.meta.DeletePosts(ctx, refs)
}

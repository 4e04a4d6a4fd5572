package shopify

import (
	"context"

	"localizer/internal/logger"
	"localizer/internal/models"
)

const listPageSize = 50

// CatalogLister adapts the paginated products API to the sweep's page
// iterator.
type CatalogLister struct {
	client      *Client
	transformer *Transformer
	logger      *logger.Logger
}

func NewCatalogLister(client *Client, logger *logger.Logger) *CatalogLister {
	return &CatalogLister{
		client:      client,
		transformer: NewTransformer(),
		logger:      logger,
	}
}

// ListPage returns one page of canonical items and the cursor for the next
// page; an empty cursor means the listing is done.
func (l *CatalogLister) ListPage(ctx context.Context, cursor string) ([]models.CatalogItem, string, error) {
	page, err := l.client.ListProducts(ctx, listPageSize, cursor)
	if err != nil {
		return nil, "", err
	}

	items := make([]models.CatalogItem, 0, len(page.Products))
	for i := range page.Products {
		items = append(items, *l.transformer.ToCatalogItem(&page.Products[i]))
	}

	return items, page.NextPage, nil
}

package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"localizer/internal/logger"
)

const apiVersion = "2024-07"

// Error classes the publisher dispatches on. Variant-count rejections get a
// fallback write path; duplicate-variant rejections are survivable.
var (
	ErrTooManyVariants  = errors.New("shopify: variant set too large for this write path")
	ErrDuplicateVariant = errors.New("shopify: duplicate variant option combination")
)

var linkNextRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

type Client struct {
	storeURL    string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
}

func NewClient(storeURL, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		storeURL:    strings.TrimRight(storeURL, "/"),
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetProduct fetches a single product by ID
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/admin/api/%s/products/%d.json", c.storeURL, apiVersion, productID)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productResp struct {
		Product Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &productResp.Product, nil
}

// ListProducts fetches one page of the catalog. The returned NextPage cursor
// is empty on the last page.
func (c *Client) ListProducts(ctx context.Context, limit int, pageInfo string) (*ProductsPage, error) {
	url := fmt.Sprintf("%s/admin/api/%s/products.json", c.storeURL, apiVersion)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productsResp struct {
		Products []Product `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&productsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &ProductsPage{Products: productsResp.Products}
	if m := linkNextRe.FindStringSubmatch(resp.Header.Get("Link")); m != nil {
		page.NextPage = m[1]
	}

	return page, nil
}

// UpdateProduct writes a product update. Returns ErrTooManyVariants or
// ErrDuplicateVariant when the rejection is one of those classes.
func (c *Client) UpdateProduct(ctx context.Context, payload *UpdatePayload) error {
	url := fmt.Sprintf("%s/admin/api/%s/products/%d.json", c.storeURL, apiVersion, payload.ID)

	body := struct {
		Product UpdatePayload `json:"product"`
	}{Product: *payload}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return classifyUpdateError(resp.StatusCode, respBody)
	}

	return nil
}

// UpdateVariant writes a single variant, used by the split write path when
// the whole-product update rejects the variant set.
func (c *Client) UpdateVariant(ctx context.Context, variant *Variant) error {
	url := fmt.Sprintf("%s/admin/api/%s/variants/%d.json", c.storeURL, apiVersion, variant.ID)

	body := struct {
		Variant Variant `json:"variant"`
	}{Variant: *variant}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal variant: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return classifyUpdateError(resp.StatusCode, respBody)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")
}

func classifyUpdateError(status int, body []byte) error {
	msg := strings.ToLower(string(body))
	if status == http.StatusUnprocessableEntity {
		if strings.Contains(msg, "already exists") {
			return fmt.Errorf("%w: %d - %s", ErrDuplicateVariant, status, string(body))
		}
		if strings.Contains(msg, "exceed") || strings.Contains(msg, "too many variants") {
			return fmt.Errorf("%w: %d - %s", ErrTooManyVariants, status, string(body))
		}
	}
	return fmt.Errorf("API request failed: %d - %s", status, string(body))
}

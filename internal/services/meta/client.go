// Package meta cross-posts processed products to Instagram and, optionally,
// a Facebook page through the Graph API.
package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"localizer/internal/logger"
	"localizer/internal/models"
)

type Client struct {
	graphURL     string
	igBusinessID string
	pageID       string
	accessToken  string
	syncToFB     bool
	httpClient   *http.Client
	logger       *logger.Logger
}

func NewClient(graphURL, igBusinessID, pageID, accessToken string, syncToFB bool, logger *logger.Logger) *Client {
	return &Client{
		graphURL:     strings.TrimRight(graphURL, "/"),
		igBusinessID: igBusinessID,
		pageID:       pageID,
		accessToken:  accessToken,
		syncToFB:     syncToFB,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether the client is configured to publish at all.
func (c *Client) Enabled() bool {
	return c.accessToken != "" && c.igBusinessID != ""
}

// PublishProduct posts the product image with a caption to Instagram and,
// when enabled, the Facebook page. Items without an image are skipped.
func (c *Client) PublishProduct(ctx context.Context, item *models.CatalogItem, caption string) (models.ExternalRefs, error) {
	var refs models.ExternalRefs

	if len(item.Images) == 0 {
		c.logger.Info("No images for item %d, skipping social publish", item.ID)
		return refs, nil
	}
	image := item.Images[0]

	// Instagram: create the media container, then publish it.
	igID, err := c.post(ctx, fmt.Sprintf("%s/%s/media", c.graphURL, c.igBusinessID), url.Values{
		"image_url":    {image},
		"caption":      {caption},
		"access_token": {c.accessToken},
	})
	if err != nil {
		return refs, fmt.Errorf("instagram media create: %w", err)
	}

	if _, err := c.post(ctx, fmt.Sprintf("%s/%s/media_publish", c.graphURL, c.igBusinessID), url.Values{
		"creation_id":  {igID},
		"access_token": {c.accessToken},
	}); err != nil {
		return refs, fmt.Errorf("instagram media publish: %w", err)
	}
	refs.IGPostID = igID

	if c.syncToFB && c.pageID != "" {
		fbID, err := c.post(ctx, fmt.Sprintf("%s/%s/photos", c.graphURL, c.pageID), url.Values{
			"url":          {image},
			"caption":      {caption},
			"access_token": {c.accessToken},
		})
		if err != nil {
			// Facebook failure must not undo the Instagram post.
			c.logger.Error("Facebook publish failed for item %d: %v", item.ID, err)
		} else {
			refs.FBPostID = fbID
		}
	}

	return refs, nil
}

// DeletePosts removes previously published posts. Each deletion is attempted
// independently; the first error is returned after all attempts.
func (c *Client) DeletePosts(ctx context.Context, refs models.ExternalRefs) error {
	var firstErr error
	for _, postID := range []string{refs.IGPostID, refs.FBPostID} {
		if postID == "" {
			continue
		}
		if err := c.delete(ctx, fmt.Sprintf("%s/%s", c.graphURL, postID)); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Client) post(ctx context.Context, endpoint string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("graph API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return result.ID, nil
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", endpoint+"?access_token="+url.QueryEscape(c.accessToken), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("graph API error: %d - %s", resp.StatusCode, string(body))
	}

	return nil
}

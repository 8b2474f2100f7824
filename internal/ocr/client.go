// Package ocr is the client for the external text-recognition service used
// on scanned documents.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client posts page images to the recognition service and returns the text
// lines it found.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Recognize sends one PNG-encoded page image and returns recognized lines in
// reading order.
func (c *Client) Recognize(ctx context.Context, pngImage []byte) ([]string, error) {
	if len(pngImage) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recognize", bytes.NewReader(pngImage))
	if err != nil {
		return nil, fmt.Errorf("build ocr request failed: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ocr response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ocr response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Lines []string `json:"lines"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse ocr json failed: %w", err)
	}
	return parsed.Lines, nil
}

package revalidate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/folio/internal/utils"
)

// SecretHeader carries the shared secret expected by the public site.
const SecretHeader = "X-Revalidate-Secret"

// Webhook asks the public frontend to rebuild the given paths.
type Webhook struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhook returns nil when url is empty, so callers can skip it.
func NewWebhook(url, secret string, timeout time.Duration) *Webhook {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{url: url, secret: secret, client: &http.Client{Timeout: timeout}}
}

func (w *Webhook) Name() string { return "public-frontend" }

func (w *Webhook) Invalidate(ctx context.Context, paths []string) error {
	body, err := json.Marshal(struct {
		Paths []string `json:"paths"`
	}{Paths: paths})
	if err != nil {
		return fmt.Errorf("failed to marshal paths: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set(SecretHeader, w.secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call revalidate webhook: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("revalidate webhook returned status %d", resp.StatusCode)
	}
	return nil
}

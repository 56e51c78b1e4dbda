package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3/client"
)

type gatewayResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HTTPGateway posts messages as JSON to a notification service.
type HTTPGateway struct {
	url    string
	client *client.Client
}

func NewHTTPGateway(url string, timeout time.Duration) *HTTPGateway {
	c := client.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &HTTPGateway{url: url, client: c}
}

func (g *HTTPGateway) Send(ctx context.Context, msg Message) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetJSON(msg).
		Post(g.url)
	if err != nil {
		return fmt.Errorf("post notification: %w", err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return fmt.Errorf("%w: status %d", ErrRejected, status)
	}

	var out gatewayResponse
	if err := resp.JSON(&out); err != nil {
		return fmt.Errorf("%w: unreadable response: %v", ErrRejected, err)
	}
	if !out.Success {
		if out.Error != "" {
			return fmt.Errorf("%w: %s", ErrRejected, out.Error)
		}
		return ErrRejected
	}
	return nil
}

// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"marketpulse/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Client wraps the Zeebe gRPC client.
type Client struct {
	client         zbc.Client
	requestTimeout time.Duration
}

// NewClient creates a Zeebe client for the configured broker. The gRPC
// connection is established lazily; call HealthCheck to verify it.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	if cfg.BrokerAddress == "" {
		return nil, fmt.Errorf("camunda.broker_address is not configured")
	}

	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true, // TLS terminates at the gateway sidecar
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	timeout := config.GetDuration(cfg.RequestTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{client: zeebeClient, requestTimeout: timeout}, nil
}

// GetClient returns the raw Zeebe client for job worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping asks the broker for its topology.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if _, err := c.client.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

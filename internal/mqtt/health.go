package mqtt

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus is the broker-side view reported by the health endpoint.
type HealthStatus struct {
	Connected bool      `json:"connected"`
	Broker    string    `json:"broker"`
	ClientID  string    `json:"client_id"`
	CheckedAt time.Time `json:"checked_at"`
}

// Health reports the connection state of the MQTT client.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Connected: c.IsConnected(),
		Broker:    fmt.Sprintf("%s:%d", c.cfg.Broker, c.cfg.Port),
		ClientID:  c.cfg.ClientID,
		CheckedAt: time.Now(),
	}

	if !status.Connected {
		return status, fmt.Errorf("mqtt client not connected to %s", status.Broker)
	}

	return status, nil
}

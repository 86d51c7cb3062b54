package routing

import "time"

// ClientConfig is the configuration for the routing engine client.
type ClientConfig struct {
	Endpoint string
	Timeout  time.Duration // default 14s
}

// DefaultTimeout is applied when a ClientConfig leaves Timeout unset.
const DefaultTimeout = 14 * time.Second

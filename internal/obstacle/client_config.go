package obstacle

import "time"

// ClientConfig is the configuration for the obstacle service client.
type ClientConfig struct {
	Endpoint   string
	Credential string
	Timeout    time.Duration // default 4.5s
}

// DefaultTimeout is applied when a ClientConfig leaves Timeout unset.
const DefaultTimeout = 4500 * time.Millisecond

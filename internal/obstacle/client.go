package obstacle

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	geojson "github.com/paulmach/go.geojson"
	"github.com/valyala/fasthttp"
)

// Client is the HTTP client for the obstacle service, built on fasthttp's
// Acquire/Release request pattern.
type Client struct {
	config     *ClientConfig
	httpClient *fasthttp.Client
}

// NewClient creates a new obstacle service client.
func NewClient(cfg *ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		config: cfg,
		httpClient: &fasthttp.Client{
			Name: "routeplanner-obstacle-client",
		},
	}
}

type fetchRequestBody struct {
	TS            string    `json:"ts"`
	TZ            string    `json:"tz"`
	BBox          []float64 `json:"bbox"`
	BufferM       float64   `json:"buffer_m,omitempty"`
	OnlyMotorways bool      `json:"only_motorways,omitempty"`
	TimeoutMs     int       `json:"timeout_ms,omitempty"`
}

type fetchResponseBody struct {
	Type     string             `json:"type"`
	Features []*geojson.Feature `json:"features"`
	Meta     struct {
		Fetched       int    `json:"fetched"`
		Used          int    `json:"used"`
		TimeoutMsUsed int    `json:"timeout_ms_used"`
		Error         string `json:"error,omitempty"`
	} `json:"meta"`
}

// Fetch retrieves obstacles intersecting bbox at instant ts. It never
// returns an error to the caller: on timeout, HTTP error, non-JSON body,
// or any other fetch failure it returns an empty obstacle list with a
// diagnostic Meta.Error, exactly as the obstacle service's own contract
// degrades.
func (c *Client) Fetch(params FetchParams) *FetchResult {
	timeoutMs := params.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = int(c.config.Timeout / time.Millisecond)
	}

	body := fetchRequestBody{
		TS:            params.TS.UTC().Format(time.RFC3339),
		TZ:            params.TZ,
		BBox:          []float64{params.BBox.Min.Lon(), params.BBox.Min.Lat(), params.BBox.Max.Lon(), params.BBox.Max.Lat()},
		BufferM:       params.BufferM,
		OnlyMotorways: params.OnlyMotorways,
		TimeoutMs:     timeoutMs,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return &FetchResult{Meta: FetchMeta{Error: fmt.Sprintf("obstacle: failed to encode request: %v", err)}}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.Endpoint + "/roadworks")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if c.config.Credential != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Credential)
	}
	req.SetBody(bodyBytes)

	deadline := time.Duration(timeoutMs) * time.Millisecond
	if err := c.httpClient.DoTimeout(req, resp, deadline); err != nil {
		return &FetchResult{Meta: FetchMeta{Error: fmt.Sprintf("obstacle: request failed: %v", err)}}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return &FetchResult{Meta: FetchMeta{Error: fmt.Sprintf("obstacle: upstream returned status %d", resp.StatusCode())}}
	}

	var parsed fetchResponseBody
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return &FetchResult{Meta: FetchMeta{Error: fmt.Sprintf("obstacle: failed to decode response: %v", err)}}
	}

	obstacles := make([]Obstacle, 0, len(parsed.Features))
	for _, f := range parsed.Features {
		if f == nil {
			continue
		}
		o := Normalize(f)
		if params.OnlyMotorways && !isMotorway(o.ExternalID, o.SourceSystem, o.Source) {
			continue
		}
		obstacles = append(obstacles, o)
	}

	meta := FetchMeta{
		Fetched:       parsed.Meta.Fetched,
		Used:          parsed.Meta.Used,
		TimeoutMsUsed: parsed.Meta.TimeoutMsUsed,
		Error:         parsed.Meta.Error,
	}
	if meta.Fetched == 0 {
		meta.Fetched = len(parsed.Features)
	}
	if meta.Used == 0 {
		meta.Used = len(obstacles)
	}

	return &FetchResult{Obstacles: obstacles, Meta: meta}
}

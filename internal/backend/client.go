// Package backend is the HTTP client for the DHCP backend's request contract.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dhcpconsole/pkg/models"
)

// Endpoints of the backend contract
const (
	EndpointStats     = "/stats"
	EndpointDevices   = "/devices"
	EndpointTags      = "/tags"
	EndpointLeases    = "/leases"
	EndpointApplyTag  = "/apply_tag"
	EndpointCreateTag = "/create_tag"
	EndpointDeleteTag = "/delete_tag"
)

const maxResponseSize = 8 << 20

// Client talks to the backend API rooted at a base URL
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client with its own http.Client bounded by timeout
func NewClient(base string, timeout time.Duration) *Client {
	return NewClientWithHTTP(base, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a client using hc for transport
func NewClientWithHTTP(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		base: strings.TrimSuffix(base, "/"),
		http: hc,
	}
}

// Stats fetches the summary counters
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	return get[models.Stats](ctx, c, EndpointStats)
}

// Devices fetches every known device
func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	devices, err := get[[]models.Device](ctx, c, EndpointDevices)
	if err != nil {
		return nil, err
	}
	if devices == nil {
		devices = []models.Device{}
	}
	return devices, nil
}

// Tags fetches the custom tags. The built-in default is never included.
func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	tags, err := get[[]models.Tag](ctx, c, EndpointTags)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// Leases fetches the current DHCP leases
func (c *Client) Leases(ctx context.Context) ([]models.Lease, error) {
	leases, err := get[[]models.Lease](ctx, c, EndpointLeases)
	if err != nil {
		return nil, err
	}
	if leases == nil {
		leases = []models.Lease{}
	}
	return leases, nil
}

// ApplyTag assigns tag to the device with the given MAC and renames it to name
func (c *Client) ApplyTag(ctx context.Context, mac, tag, name string) error {
	form := url.Values{}
	form.Set("mac", mac)
	form.Set("tag", tag)
	form.Set("name", name)
	return c.post(ctx, EndpointApplyTag, form)
}

// CreateTag creates a custom tag
func (c *Client) CreateTag(ctx context.Context, tag models.Tag) error {
	return c.post(ctx, EndpointCreateTag, tag.Form())
}

// DeleteTag deletes a custom tag
func (c *Client) DeleteTag(ctx context.Context, name string) error {
	form := url.Values{}
	form.Set("name", name)
	return c.post(ctx, EndpointDeleteTag, form)
}

func get[T any](ctx context.Context, c *Client, endpoint string) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+endpoint, nil)
	if err != nil {
		return zero, &models.RequestError{Endpoint: endpoint, Err: err}
	}

	return do[T](c, endpoint, req)
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &models.RequestError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err = do[json.RawMessage](c, endpoint, req)
	return err
}

func do[T any](c *Client, endpoint string, req *http.Request) (T, error) {
	var zero T

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("API error %s %s: %v", req.Method, endpoint, err)
		return zero, &models.RequestError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return zero, &models.RequestError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var env models.Envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		log.Printf("API error %s %s: status %d, undecodable body: %v", req.Method, endpoint, resp.StatusCode, err)
		return zero, &models.RequestError{
			Endpoint: endpoint,
			Err:      fmt.Errorf("invalid response from %s (status %d): %w", endpoint, resp.StatusCode, err),
		}
	}

	if !env.Success {
		message := strings.TrimSpace(env.Error)
		if message == "" {
			message = models.DefaultRequestError
		}
		log.Printf("API error %s %s: %s", req.Method, endpoint, message)
		return zero, &models.RequestError{Endpoint: endpoint, Message: message}
	}

	return env.Data, nil
}

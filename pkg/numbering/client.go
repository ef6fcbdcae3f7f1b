package numbering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rmagee/quartet-integrations-sub000/pkg/transport"
)

// Poster sends a request document and returns the raw answer
type Poster interface {
	Post(ctx context.Context, endpoint string, body []byte, contentType, soapAction string) ([]byte, error)
}

// ClientConfig configures a numbering client
type ClientConfig struct {
	Endpoint   string
	SOAPAction string
	// Poster defaults to a transport.Client with default settings
	Poster Poster
	Logger *slog.Logger
}

// Client requests serial numbers from an external numbering system.
// Requests are sent once; failures are returned to the caller.
type Client struct {
	endpoint   string
	soapAction string
	poster     Poster
	logger     *slog.Logger
}

// NewClient creates a numbering client
func NewClient(cfg *ClientConfig) *Client {
	poster := cfg.Poster
	if poster == nil {
		poster = transport.NewClient(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		soapAction: cfg.SOAPAction,
		poster:     poster,
		logger:     logger,
	}
}

// Request sends req and decodes the answer. A request without an ID gets a
// generated one. The raw answer is logged before a protocol error is
// returned.
func (c *Client) Request(ctx context.Context, req *Request) (*Response, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	body, err := BuildRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build number request: %w", err)
	}

	c.logger.Debug("requesting serial numbers",
		slog.String("request_id", req.ID),
		slog.String("endpoint", c.endpoint),
		slog.String("encoding", string(req.Encoding)),
		slog.Int("quantity", req.Quantity))

	raw, err := c.poster.Post(ctx, c.endpoint, body, transport.ContentTypeSOAP11, c.soapAction)
	if err != nil {
		var se *transport.StatusError
		if errors.As(err, &se) {
			c.logger.Error("number request rejected",
				slog.String("request_id", req.ID),
				slog.Int("status", se.StatusCode),
				slog.String("response", string(se.Body)))
		}
		return nil, fmt.Errorf("number request %s: %w", req.ID, err)
	}

	resp, err := ParseResponse(raw)
	if err != nil {
		c.logger.Error("unusable number response",
			slog.String("request_id", req.ID),
			slog.String("response", string(raw)),
			slog.String("error", err.Error()))
		return nil, err
	}
	if len(resp.Serials) != req.Quantity {
		c.logger.Warn("numbering system returned a different quantity",
			slog.String("request_id", req.ID),
			slog.Int("requested", req.Quantity),
			slog.Int("received", len(resp.Serials)))
	}
	return resp, nil
}

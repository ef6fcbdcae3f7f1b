package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Content types used by the vendor endpoints
const (
	ContentTypeSOAP11 = "text/xml; charset=utf-8"
	ContentTypeSOAP12 = "application/soap+xml; charset=utf-8"
	ContentTypeXML    = "application/xml"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// Config contains HTTP client configuration
type Config struct {
	MinTLSVersion   uint16
	Certificates    []tls.Certificate
	RootCAs         *x509.CertPool
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	UserAgent       string

	// Username and Password enable HTTP basic authentication
	Username string
	Password string
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		MinTLSVersion:   TLS12,
		Timeout:         30 * time.Second,
		IdleConnTimeout: 90 * time.Second,
		UserAgent:       "epcis-adapter/1.0",
	}
}

// StatusError is returned for a non-2xx answer. Body holds the raw
// response for diagnostics.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, string(e.Body))
}

// Client posts request documents to vendor endpoints
type Client struct {
	client *http.Client
	config *Config
}

// NewClient creates a client. A nil config uses DefaultConfig.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:   config.MinTLSVersion,
			Certificates: config.Certificates,
			RootCAs:      config.RootCAs,
		},
		IdleConnTimeout:     config.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config: config,
	}
}

// Post sends body to endpoint and returns the response body. soapAction is
// sent as the SOAPAction header when not empty.
func (c *Client) Post(ctx context.Context, endpoint string, body []byte, contentType, soapAction string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if soapAction != "" {
		req.Header.Set("SOAPAction", soapAction)
	}
	if c.config.Username != "" {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: responseBody}
	}
	return responseBody, nil
}

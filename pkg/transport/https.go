// Package transport implements the HTTPS transport to the declaration web service
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sirosfoundation/go-dpiva/pkg/compression"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

const (
	// ContentTypeSOAP is the request content type the service accepts
	ContentTypeSOAP = "application/soap+xml; charset=UTF-8"
	// SOAPActionSubmit is the SOAPAction of the declaration submission operation
	SOAPActionSubmit = "https://servicos.portaldasfinancas.gov.pt/dpivaws/DeclaracaoPeriodicaIVAWebService#tns:submeterDeclaracao"
	// DefaultMaxResponseSize bounds a response body
	DefaultMaxResponseSize = 8 << 20
)

// Endpoint holds the URL and TLS material of one target
type Endpoint struct {
	URL string
	// Certificates are presented for mutual TLS when set
	Certificates []tls.Certificate
	RootCAs      *x509.CertPool
}

// HTTPSConfig contains HTTPS client configuration
type HTTPSConfig struct {
	MinTLSVersion   uint16
	MaxTLSVersion   uint16
	Endpoints       map[Target]*Endpoint
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	MaxResponseSize int64
	UserAgent       string
	Logger          *slog.Logger
}

// DefaultHTTPSConfig returns a default HTTPS configuration
func DefaultHTTPSConfig() *HTTPSConfig {
	return &HTTPSConfig{
		MinTLSVersion:   TLS12,
		MaxTLSVersion:   TLS13,
		Endpoints:       map[Target]*Endpoint{},
		Timeout:         60 * time.Second,
		IdleConnTimeout: 90 * time.Second,
		MaxResponseSize: DefaultMaxResponseSize,
		UserAgent:       "go-dpiva/1.0",
	}
}

// Response is the raw service response handed to the classifier
type Response struct {
	StatusCode    int
	StatusMessage string
	Body          []byte
}

// HTTPSClient posts SOAP requests to the configured targets. Each target
// gets its own http.Client so its client certificate is only presented to
// its own endpoint.
type HTTPSClient struct {
	clients    map[Target]*http.Client
	config     *HTTPSConfig
	compressor *compression.Compressor
	logger     *slog.Logger
}

// NewHTTPSClient creates a new HTTPS client
func NewHTTPSClient(config *HTTPSConfig) (*HTTPSClient, error) {
	if config == nil {
		config = DefaultHTTPSConfig()
	}
	if config.MaxResponseSize <= 0 {
		config.MaxResponseSize = DefaultMaxResponseSize
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	clients := make(map[Target]*http.Client, len(config.Endpoints))
	for target, ep := range config.Endpoints {
		if ep == nil || ep.URL == "" {
			return nil, fmt.Errorf("target %s: endpoint URL is required", target)
		}

		tlsConfig := &tls.Config{
			MinVersion:   config.MinTLSVersion,
			MaxVersion:   config.MaxTLSVersion,
			Certificates: ep.Certificates,
			RootCAs:      ep.RootCAs,
		}

		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			TLSClientConfig:     tlsConfig,
			IdleConnTimeout:     config.IdleConnTimeout,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			// gzip is requested and decoded explicitly
			DisableCompression: true,
		}

		clients[target] = &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		}
	}

	return &HTTPSClient{
		clients:    clients,
		config:     config,
		compressor: compression.NewCompressor(),
		logger:     logger,
	}, nil
}

// Send posts a SOAP envelope to target and returns the response whatever its
// HTTP status. Failures to obtain a response are returned as *Fault.
func (c *HTTPSClient) Send(ctx context.Context, target Target, envelope []byte) (*Response, error) {
	client, ok := c.clients[target]
	if !ok {
		return nil, &Fault{Target: target, Err: fmt.Errorf("target not configured")}
	}
	endpoint := c.config.Endpoints[target].URL

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(envelope))
	if err != nil {
		return nil, &Fault{Target: target, Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", ContentTypeSOAP)
	req.Header.Set("SOAPAction", SOAPActionSubmit)
	req.Header.Set("Accept-Encoding", compression.EncodingGzip)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.ContentLength = int64(len(envelope))

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, &Fault{Target: target, Endpoint: endpoint, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize+1))
	if err != nil {
		return nil, &Fault{Target: target, Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if int64(len(raw)) > c.config.MaxResponseSize {
		return nil, &Fault{Target: target, Endpoint: endpoint, Err: fmt.Errorf("response exceeds %d bytes", c.config.MaxResponseSize)}
	}

	body, err := c.compressor.DecodeBody(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return nil, &Fault{Target: target, Endpoint: endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.Debug("webservice response",
		slog.String("target", target.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		StatusCode:    resp.StatusCode,
		StatusMessage: statusMessage(resp),
		Body:          body,
	}, nil
}

// statusMessage returns the reason phrase without the numeric code.
func statusMessage(resp *http.Response) string {
	code := fmt.Sprintf("%d", resp.StatusCode)
	msg := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}

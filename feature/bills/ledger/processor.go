package ledger

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Config holds configuration for the ledger connector.
type Config struct {
	// Endpoint is the URL of the remote ledger connector.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:8166"`
	// AppName identifies this application to the ledger.
	AppName string `mapstructure:"app_name" default:"bill-reconciler"`
	// CompanyFile selects the company data file; empty means the one
	// currently open on the connector side.
	CompanyFile string `mapstructure:"company_file" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// RequestProcessor models the ledger's session protocol: open a connection,
// begin a session, exchange one or more payloads, end the session, close the
// connection. One session is held per exchange.
type RequestProcessor interface {
	// OpenConnection establishes a connection under the given application name.
	OpenConnection(ctx context.Context, appName string) error
	// BeginSession starts a session and returns its ticket.
	BeginSession(ctx context.Context) (string, error)
	// ProcessRequest sends a qbXML payload and returns the raw response.
	ProcessRequest(ctx context.Context, ticket, payload string) (string, error)
	// EndSession releases the session ticket.
	EndSession(ctx context.Context, ticket string) error
	// CloseConnection tears down the connection.
	CloseConnection(ctx context.Context) error
}

// NewProcessor creates a RequestProcessor speaking HTTP to a remote
// connector bridge.
func NewProcessor(cfg Config) RequestProcessor {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &httpProcessor{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
	}
}

// httpProcessor bridges the session protocol over HTTP:
//
//	POST   /connection  (open, body = app name)
//	POST   /session     (begin, response body = ticket)
//	POST   /process     (payload exchange, X-Session-Ticket header)
//	DELETE /session     (end)
//	DELETE /connection  (close)
type httpProcessor struct {
	cfg    Config
	client *http.Client
}

func (p *httpProcessor) OpenConnection(ctx context.Context, appName string) error {
	_, err := p.do(ctx, http.MethodPost, "/connection", appName, nil)
	if err != nil {
		return fmt.Errorf("failed to open ledger connection: %w", err)
	}
	return nil
}

func (p *httpProcessor) BeginSession(ctx context.Context) (string, error) {
	headers := map[string]string{}
	if p.cfg.CompanyFile != "" {
		headers["X-Company-File"] = p.cfg.CompanyFile
	}

	ticket, err := p.do(ctx, http.MethodPost, "/session", "", headers)
	if err != nil {
		return "", fmt.Errorf("failed to begin ledger session: %w", err)
	}
	ticket = strings.TrimSpace(ticket)
	if ticket == "" {
		return "", fmt.Errorf("ledger connector returned an empty session ticket")
	}
	return ticket, nil
}

func (p *httpProcessor) ProcessRequest(ctx context.Context, ticket, payload string) (string, error) {
	headers := map[string]string{
		"Content-Type":     "text/xml",
		"X-Session-Ticket": ticket,
	}
	return p.do(ctx, http.MethodPost, "/process", payload, headers)
}

func (p *httpProcessor) EndSession(ctx context.Context, ticket string) error {
	_, err := p.do(ctx, http.MethodDelete, "/session", "", map[string]string{"X-Session-Ticket": ticket})
	return err
}

func (p *httpProcessor) CloseConnection(ctx context.Context) error {
	_, err := p.do(ctx, http.MethodDelete, "/connection", "", nil)
	return err
}

func (p *httpProcessor) do(ctx context.Context, method, path, body string, headers map[string]string) (string, error) {
	url := strings.TrimSuffix(p.cfg.Endpoint, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("connector returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return string(data), nil
}

// Package api is the client for the Hydra main cluster-management service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultHost is used when neither URL nor Host is configured.
	DefaultHost = "localhost"
	// DefaultPort is the service's default listen port.
	DefaultPort = 3013
	// DefaultTimeout bounds every request.
	DefaultTimeout = 60 * time.Second

	// nodesPageLimit is the page size used for node listings.
	nodesPageLimit = 50
	// statusNodesLimit is large enough to count every node in one page.
	statusNodesLimit = 1000
)

// Config configures a Client.
type Config struct {
	// URL is the service base URL. It takes precedence over Host and Port.
	URL      string
	Host     string
	Port     int
	Timeout  time.Duration
	Username string
	Password string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the cluster-management API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	username   string
	password   string
	logger     *slog.Logger

	mu          sync.RWMutex
	accessToken string
}

// NewClient creates a client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := strings.TrimRight(cfg.URL, "/")
	if baseURL == "" {
		host := cfg.Host
		if host == "" {
			host = DefaultHost
		}
		port := cfg.Port
		if port == 0 {
			port = DefaultPort
		}
		baseURL = fmt.Sprintf("http://%s:%d", host, port)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		httpClient: httpClient,
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     logger,
	}
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Login exchanges the configured credentials for an access token.
func (c *Client) Login(ctx context.Context) error {
	if c.username == "" || c.password == "" {
		return &Error{Kind: KindCredentialsRequired, Message: "Username and password required for login", Err: ErrCredentialsRequired}
	}

	body := map[string]string{"username": c.username, "password": c.password}
	data, err := c.do(ctx, http.MethodPost, "/hydra-main/login", body, "Login failed")
	if err != nil {
		return err
	}

	var resp loginResponse
	if err := decode(data, &resp); err != nil || resp.AccessToken == "" {
		return &Error{Kind: KindUnauthorized, Message: "Login failed: no access token in response", Err: err}
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.mu.Unlock()

	c.logger.Info("login successful", "url", c.baseURL, "user", c.username)
	return nil
}

// IsAuthenticated reports whether Login has succeeded.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken != ""
}

// GetHeads lists all heads.
func (c *Client) GetHeads(ctx context.Context) ([]Head, error) {
	const msg = "Failed to fetch heads"
	data, err := c.do(ctx, http.MethodGet, "/hydra-main/list-party", nil, msg)
	if err != nil {
		return nil, err
	}
	return decodeList[Head](data, msg)
}

// GetHeadInfo fetches a single head with its nodes.
func (c *Client) GetHeadInfo(ctx context.Context, headID string) (*Head, error) {
	msg := fmt.Sprintf("Head '%s' not found", headID)
	data, err := c.do(ctx, http.MethodGet, "/hydra-main/hydra-node/"+url.PathEscape(headID), nil, msg)
	if err != nil {
		return nil, err
	}
	var head Head
	if err := decode(data, &head); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: msg, Err: err}
	}
	return &head, nil
}

// CreateHead creates a head funded from the first of accountIDs.
func (c *Client) CreateHead(ctx context.Context, accountIDs []string) (*Head, error) {
	const msg = "Failed to create head"

	from := 1
	if len(accountIDs) > 0 {
		id, err := ID(strings.TrimSpace(accountIDs[0])).Int()
		if err != nil {
			return nil, &Error{Kind: KindBadRequest, Message: fmt.Sprintf("Invalid account id '%s'", accountIDs[0]), Err: err}
		}
		from = id
	}

	body := createHeadRequest{FromAccountID: from, Description: "Hydra Node"}
	data, err := c.do(ctx, http.MethodPost, "/hydra-main/create-node", body, msg)
	if err != nil {
		return nil, err
	}
	var head Head
	if err := decode(data, &head); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: msg, Err: err}
	}
	return &head, nil
}

// StopHead stops a running head.
func (c *Client) StopHead(ctx context.Context, headID string) error {
	msg := fmt.Sprintf("Failed to stop head '%s'", headID)
	_, err := c.do(ctx, http.MethodPost, "/hydra-main/hydra-node/"+url.PathEscape(headID)+"/stop", nil, msg)
	return err
}

// GetAccounts lists wallet accounts.
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	const msg = "Failed to fetch accounts"
	data, err := c.do(ctx, http.MethodGet, "/hydra-main/list-account", nil, msg)
	if err != nil {
		return nil, err
	}
	return decodeList[Account](data, msg)
}

// AddAccount registers a wallet account from a mnemonic phrase.
func (c *Client) AddAccount(ctx context.Context, mnemonic string) (*Account, error) {
	const msg = "Failed to add account"
	data, err := c.do(ctx, http.MethodPost, "/hydra-main/create-account", map[string]string{"mnemonic": mnemonic}, msg)
	if err != nil {
		return nil, err
	}
	var acc Account
	if err := decode(data, &acc); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: msg, Err: err}
	}
	return &acc, nil
}

// GetNodes lists nodes (first page).
func (c *Client) GetNodes(ctx context.Context) ([]Node, error) {
	return c.listNodes(ctx, nodesPageLimit, "Failed to fetch nodes")
}

// GetActiveNodes lists the liveness records of running nodes.
func (c *Client) GetActiveNodes(ctx context.Context) ([]ActiveNode, error) {
	const msg = "Failed to fetch active nodes"
	data, err := c.do(ctx, http.MethodGet, "/hydra-main/active-nodes", nil, msg)
	if err != nil {
		return nil, err
	}
	return decodeList[ActiveNode](data, msg)
}

func (c *Client) listNodes(ctx context.Context, limit int, msg string) ([]Node, error) {
	path := fmt.Sprintf("/hydra-main/hydra-nodes?page=1&limit=%d", limit)
	data, err := c.do(ctx, http.MethodGet, path, nil, msg)
	if err != nil {
		return nil, err
	}
	return decodeList[Node](data, msg)
}

// do performs a request and returns the "data" member of the response envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, defaultMessage string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindUnknown, Message: defaultMessage, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Message: defaultMessage, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.mu.RLock()
	token := c.accessToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return nil, c.transportError(err, defaultMessage)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(fmt.Errorf("failed to read response: %w", err), defaultMessage)
	}

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw, defaultMessage)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &Error{Kind: KindUnknown, StatusCode: resp.StatusCode, Message: defaultMessage, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return env.Data, nil
}

func isNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decode(data json.RawMessage, v any) error {
	if isNull(data) {
		return nil
	}
	return json.Unmarshal(data, v)
}

// decodeList decodes either a bare array or a paginated {"data": [...]} object.
func decodeList[T any](data json.RawMessage, msg string) ([]T, error) {
	if isNull(data) {
		return []T{}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, &Error{Kind: KindUnknown, Message: msg, Err: err}
		}
		return items, nil
	}

	var page struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, &Error{Kind: KindUnknown, Message: msg, Err: err}
	}
	if page.Data == nil {
		return []T{}, nil
	}
	return page.Data, nil
}

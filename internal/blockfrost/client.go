// Package blockfrost looks up address UTxOs on the Blockfrost Cardano API.
package blockfrost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Network base URLs, selected by project id prefix.
const (
	MainnetURL = "https://cardano-mainnet.blockfrost.io/api/v0"
	PreprodURL = "https://cardano-preprod.blockfrost.io/api/v0"
	PreviewURL = "https://cardano-preview.blockfrost.io/api/v0"
)

const (
	// LovelaceUnit is the unit name of the native coin.
	LovelaceUnit = "lovelace"

	pageSize = 100
	maxPages = 50
)

// ErrNoProjectID is returned when no project id was configured.
var ErrNoProjectID = errors.New("blockfrost API key is required (use --blockfrost-api-key)")

// Amount is a quantity of one asset unit.
type Amount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// UTxO is an unspent output at an address.
type UTxO struct {
	Address     string   `json:"address"`
	TxHash      string   `json:"tx_hash"`
	OutputIndex int      `json:"output_index"`
	Amount      []Amount `json:"amount"`
	Block       string   `json:"block"`
	DataHash    *string  `json:"data_hash"`
	InlineDatum *string  `json:"inline_datum"`
}

// Client is a Blockfrost API client.
type Client struct {
	BaseURL   string
	ProjectID string
	Client    *http.Client
}

// NewClient creates a client for the network the project id belongs to.
func NewClient(projectID string) *Client {
	return &Client{
		BaseURL:   NetworkURL(projectID),
		ProjectID: projectID,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NetworkURL returns the API base URL for a project id.
func NetworkURL(projectID string) string {
	switch {
	case strings.HasPrefix(projectID, "preprod"):
		return PreprodURL
	case strings.HasPrefix(projectID, "preview"):
		return PreviewURL
	default:
		return MainnetURL
	}
}

// AddressUTxOs returns every UTxO at address. An address that has never
// been used is reported by the API as 404 and yields an empty set.
func (c *Client) AddressUTxOs(ctx context.Context, address string) ([]UTxO, error) {
	if c.ProjectID == "" {
		return nil, ErrNoProjectID
	}

	var all []UTxO
	for page := 1; page <= maxPages; page++ {
		batch, err := c.utxoPage(ctx, address, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			break
		}
	}
	if all == nil {
		all = []UTxO{}
	}
	return all, nil
}

func (c *Client) utxoPage(ctx context.Context, address string, page int) ([]UTxO, error) {
	u := fmt.Sprintf("%s/addresses/%s/utxos?page=%d&count=%d", c.BaseURL, url.PathEscape(address), page, pageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("project_id", c.ProjectID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch UTxOs for %s: %w", address, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("failed to fetch UTxOs for %s: HTTP %d%s", address, resp.StatusCode, apiMessage(body))
	}

	var utxos []UTxO
	if err := json.Unmarshal(body, &utxos); err != nil {
		return nil, fmt.Errorf("failed to parse UTxOs: %w", err)
	}
	return utxos, nil
}

// apiMessage extracts the "message" of an error body, prefixed for display.
func apiMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) != nil || e.Message == "" {
		return ""
	}
	return ": " + e.Message
}

// Lovelace sums the lovelace held by utxos. Unparseable quantities are skipped.
func Lovelace(utxos []UTxO) uint64 {
	var total uint64
	for _, u := range utxos {
		for _, a := range u.Amount {
			if a.Unit != LovelaceUnit {
				continue
			}
			q, err := strconv.ParseUint(a.Quantity, 10, 64)
			if err != nil {
				continue
			}
			total += q
		}
	}
	return total
}

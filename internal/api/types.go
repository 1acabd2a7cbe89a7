package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server-side identifier. The backend is not consistent about
// sending ids as numbers or strings, so both decode into an ID.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string { return string(id) }

// Int returns the id as an integer, if it is one.
func (id ID) Int() (int, error) { return strconv.Atoi(string(id)) }

// Resource statuses reported by the backend.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// CardanoAccount is the wallet account a node signs with.
type CardanoAccount struct {
	ID             ID     `json:"id" yaml:"id"`
	BaseAddress    string `json:"baseAddress" yaml:"baseAddress"`
	PointerAddress string `json:"pointerAddress" yaml:"pointerAddress"`
	CreatedAt      string `json:"createdAt" yaml:"createdAt"`
}

// Node is a single worker process.
type Node struct {
	ID             ID              `json:"id" yaml:"id"`
	Description    string          `json:"description" yaml:"description"`
	Port           int             `json:"port" yaml:"port"`
	VKey           string          `json:"vkey" yaml:"vkey"`
	CreatedAt      string          `json:"createdAt" yaml:"createdAt"`
	CardanoAccount *CardanoAccount `json:"cardanoAccount,omitempty" yaml:"cardanoAccount,omitempty"`
	Status         string          `json:"status" yaml:"status"`
}

// Head is a managed group of nodes.
type Head struct {
	ID          ID      `json:"id" yaml:"id"`
	Description *string `json:"description" yaml:"description"`
	Nodes       int     `json:"nodes" yaml:"nodes"`
	Status      string  `json:"status" yaml:"status"`
	CreatedAt   string  `json:"createdAt" yaml:"createdAt"`
	HydraNodes  []Node  `json:"hydraNodes,omitempty" yaml:"hydraNodes,omitempty"`
}

// DescriptionText returns the description or an empty string.
func (h Head) DescriptionText() string {
	if h.Description == nil {
		return ""
	}
	return *h.Description
}

// Account is a wallet account registered with the backend.
type Account struct {
	ID             ID     `json:"id" yaml:"id"`
	BaseAddress    string `json:"baseAddress" yaml:"baseAddress"`
	PointerAddress string `json:"pointerAddress" yaml:"pointerAddress"`
	CreatedAt      string `json:"createdAt" yaml:"createdAt"`
}

// Container is the subset of the docker container record we display.
type Container struct {
	ID      string   `json:"Id"`
	Names   []string `json:"Names"`
	Image   string   `json:"Image"`
	Created int64    `json:"Created"`
	State   string   `json:"State"`
	Status  string   `json:"Status"`
}

// ActiveNode is a liveness record linking a node to its container.
type ActiveNode struct {
	HydraNodeID  ID        `json:"hydraNodeId"`
	HydraPartyID ID        `json:"hydraPartyId"`
	Container    Container `json:"container"`
	IsActive     bool      `json:"isActive"`
}

// Health values of SystemStatus.
const (
	HealthHealthy = "healthy"
	HealthError   = "error"
)

// SystemStatus is an aggregated health snapshot.
type SystemStatus struct {
	RunningNodes int    `json:"runningNodes" yaml:"runningNodes"`
	RunningHeads int    `json:"runningHeads" yaml:"runningHeads"`
	TotalHeads   int    `json:"totalHeads" yaml:"totalHeads"`
	Status       string `json:"status" yaml:"status"`
}

// Healthy reports whether both status-determining fetches succeeded.
func (s SystemStatus) Healthy() bool { return s.Status == HealthHealthy }

// Equal compares two snapshots field by field.
func (s SystemStatus) Equal(o SystemStatus) bool {
	return s.RunningNodes == o.RunningNodes &&
		s.RunningHeads == o.RunningHeads &&
		s.TotalHeads == o.TotalHeads &&
		s.Status == o.Status
}

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Data       json.RawMessage `json:"data"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Status     string          `json:"status"`
}

// loginResponse is the payload of a successful login.
type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// createHeadRequest is the body of POST /create-node.
type createHeadRequest struct {
	FromAccountID int    `json:"fromAccountId"`
	Description   string `json:"description"`
}

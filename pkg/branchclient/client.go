/**
 * @description
 * This package provides a client for the branch directory service. It
 * resolves customer and branch display metadata used to backfill pending
 * accounts on their funding transaction. Failures degrade the backfill;
 * they never fail a settlement.
 */
package branchclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client is a client for the branch directory service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new branch directory client.
func NewClient(baseURL string, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type customerResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

type branchResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerName resolves the display name of a customer.
func (c *Client) CustomerName(ctx context.Context, customerID uuid.UUID) (string, error) {
	var resp customerResponse
	if err := c.get(ctx, fmt.Sprintf("/internal/customers/%s", customerID), &resp); err != nil {
		return "", err
	}
	return resp.FullName, nil
}

// BranchName resolves the display name of a branch.
func (c *Client) BranchName(ctx context.Context, branchID uuid.UUID) (string, error) {
	var resp branchResponse
	if err := c.get(ctx, fmt.Sprintf("/internal/branches/%s", branchID), &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("branch directory base url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if strings.TrimSpace(c.apiKey) != "" {
		req.Header.Set("X-Internal-API-Key", strings.TrimSpace(c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request to branch directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("branch directory returned error status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

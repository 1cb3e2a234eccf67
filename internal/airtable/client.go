// Package airtable is a minimal read-only client for the attendance base.
// Each reporting month lives in its own table; a fetch walks every page of
// that table into a single batch.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"absensi-service/internal/config"
)

type Record struct {
	ID          string         `json:"id"`
	CreatedTime time.Time      `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

type Client struct {
	apiURL  string
	apiKey  string
	baseID  string
	timeout time.Duration
	http    *http.Client
}

func New(cfg config.Airtable) *Client {
	return &Client{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		timeout: cfg.FetchTimeout,
		http:    &http.Client{},
	}
}

// FetchTable retrieves every record of table, following pagination offsets
// until the source stops returning one. The whole walk shares one deadline
// derived from ctx, so a disconnected caller cancels the fetch.
func (c *Client) FetchTable(ctx context.Context, table string) ([]Record, error) {
	const op = "airtable.Client.FetchTable"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		records []Record
		offset  string
	)

	for {
		page, next, err := c.fetchPage(ctx, table, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		records = append(records, page...)

		if next == "" {
			return records, nil
		}
		offset = next
	}
}

func (c *Client) fetchPage(ctx context.Context, table, offset string) ([]Record, string, error) {
	u := fmt.Sprintf("%s/%s/%s", c.apiURL, c.baseID, url.PathEscape(table))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, "", err
	}

	return body.Records, body.Offset, nil
}

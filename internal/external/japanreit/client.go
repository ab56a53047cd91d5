package japanreit

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/pkg/httputil"
	"github.com/wonny/jreit-finder/pkg/logger"
)

// DefaultURL is the all-REIT ranking page; its tables carry every column the selector needs
const DefaultURL = "https://www.japan-reit.com/ranking/all"

// Client scrapes the J-REIT ranking tables from japan-reit.com
// ⭐ SSOT: japan-reit.com 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
	encoding   encoding.Encoding
}

// NewClient creates a new japan-reit.com client
func NewClient(httpClient *httputil.Client, log *logger.Logger, url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("scraper"),
		url:        url,
		encoding:   japanese.ShiftJIS, // the site serves cp932
	}
}

// Source identifies where the table comes from (used as cache key)
func (c *Client) Source() string {
	return c.url
}

// FetchTable downloads the ranking page and returns one Entity per J-REIT
func (c *Client) FetchTable(ctx context.Context) ([]contracts.Entity, error) {
	body, err := c.httpClient.GetBody(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking page: %w", err)
	}

	decoded := transform.NewReader(bytes.NewReader(body), c.encoding.NewDecoder())

	table, err := ParseTables(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse ranking page: %w", err)
	}
	if err := contracts.ValidateTable(table); err != nil {
		return nil, fmt.Errorf("validate ranking page: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   c.url,
		"count": len(table),
	}).Info("Fetched J-REIT table")

	return table, nil
}

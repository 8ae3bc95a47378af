// Package market resolves token contracts and symbols to metadata and
// spot prices through the price API.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	boterr "github.com/tontrade/tontrade/pkg/errors"
)

// ErrRequestFailed indicates a price API request failed.
var ErrRequestFailed = boterr.New(boterr.KindGateway, "MARKET_REQUEST_FAILED", "price API request failed")

// priceRegex extracts the USD spot price from the listing description.
// The API embeds it as free text: "... is 1,234.56 USD ...".
var priceRegex = regexp.MustCompile(`is ([\d.,]+) USD`)

// Info is the result of a token lookup. Price is nil when the API had
// no parseable price for the token.
type Info struct {
	Found  bool
	Symbol string
	Name   string
	Price  *decimal.Decimal
}

// Gateway is the lookup surface used by the rest of the bot.
type Gateway interface {
	// Lookup resolves a contract address or symbol to token metadata.
	// An unknown token returns Info{Found: false} without error;
	// transport failures return an error.
	Lookup(ctx context.Context, query string) (Info, error)
}

const defaultTimeout = 10 * time.Second

// Client is an HTTP client for the price API, implementing Gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a price API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// infoResponse mirrors the info endpoint envelope.
type infoResponse struct {
	Status struct {
		ErrorCode int `json:"error_code"`
	} `json:"status"`
	Data map[string]tokenInfo `json:"data"`
}

type tokenInfo struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Lookup resolves a contract address or symbol to token metadata.
func (c *Client) Lookup(ctx context.Context, query string) (Info, error) {
	endpoint := c.baseURL + "/v1/cryptocurrency/info?address=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Info{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Info{}, boterr.Gateway("MARKET_REQUEST_FAILED", "price API request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// The API reports unknown tokens through the envelope error code,
	// often alongside a non-200 status. Both map to "not found".
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Info{}, ErrRequestFailed.
			WithDetail("status", strconv.Itoa(resp.StatusCode)).
			WithDetail("body", string(text))
	}

	var parsed infoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Info{}, boterr.Gateway("MARKET_INVALID_RESPONSE", "invalid price API response", err)
	}

	if parsed.Status.ErrorCode != 0 || len(parsed.Data) == 0 {
		return Info{Found: false}, nil
	}

	// The data map is keyed by internal currency id; take the first entry.
	var tok tokenInfo
	for _, v := range parsed.Data {
		tok = v
		break
	}

	return Info{
		Found:  true,
		Symbol: tok.Symbol,
		Name:   tok.Name,
		Price:  extractPrice(tok.Description),
	}, nil
}

// extractPrice pulls the USD price out of the description text.
// Returns nil when no price is present.
func extractPrice(description string) *decimal.Decimal {
	match := priceRegex.FindStringSubmatch(description)
	if match == nil {
		return nil
	}

	price, err := decimal.NewFromString(strings.ReplaceAll(match[1], ",", ""))
	if err != nil {
		return nil
	}
	return &price
}

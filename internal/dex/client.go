// Package dex quotes swaps on the DEX aggregator and builds the router
// transfer instruction that executes them.
package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	boterr "github.com/tontrade/tontrade/pkg/errors"
)

var (
	// ErrRequestFailed indicates a DEX API request failed.
	ErrRequestFailed = boterr.New(boterr.KindGateway, "DEX_REQUEST_FAILED", "DEX API request failed")

	// ErrNoRoute indicates the simulation returned no router for the pair.
	ErrNoRoute = boterr.New(boterr.KindGateway, "DEX_NO_ROUTE", "no swap route for token pair")
)

// Slippage tolerance sent with every simulation, in percent.
const slippageTolerance = "1"

// Instruction is an executable transfer descriptor returned by the DEX:
// a native transfer of Value nano to Destination carrying the opaque
// Payload executes the swap through the router.
type Instruction struct {
	Destination string
	Value       int64
	Payload     string
}

// Gateway is the swap surface used by the conversation controller.
type Gateway interface {
	// QuoteNativeToToken quotes a native -> jetton swap of amount nano.
	QuoteNativeToToken(ctx context.Context, askContract string, amount int64) (Instruction, error)

	// QuoteTokenToNative quotes a jetton -> native swap of amount
	// smallest units of the offered jetton.
	QuoteTokenToNative(ctx context.Context, offerContract string, amount int64) (Instruction, error)

	// QuoteTokenToToken quotes a jetton -> jetton swap.
	QuoteTokenToToken(ctx context.Context, offerContract, askContract string, amount int64) (Instruction, error)
}

const defaultTimeout = 10 * time.Second

// Client is an HTTP client for the DEX aggregator, implementing Gateway.
type Client struct {
	baseURL    string
	pton       string
	httpClient *http.Client
}

// NewClient creates a DEX client. pton is the proxy-TON contract the
// aggregator uses for the native side of a pair.
func NewClient(baseURL, pton string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		pton:       pton,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// simulateResponse is the swap simulation result.
type simulateResponse struct {
	RouterAddress string `json:"router_address"`
	TxValue       string `json:"tx_value"`
	TxPayload     string `json:"tx_payload"`
}

// QuoteNativeToToken quotes a native -> jetton swap.
func (c *Client) QuoteNativeToToken(ctx context.Context, askContract string, amount int64) (Instruction, error) {
	return c.simulate(ctx, c.pton, askContract, amount)
}

// QuoteTokenToNative quotes a jetton -> native swap.
func (c *Client) QuoteTokenToNative(ctx context.Context, offerContract string, amount int64) (Instruction, error) {
	return c.simulate(ctx, offerContract, c.pton, amount)
}

// QuoteTokenToToken quotes a jetton -> jetton swap.
func (c *Client) QuoteTokenToToken(ctx context.Context, offerContract, askContract string, amount int64) (Instruction, error) {
	return c.simulate(ctx, offerContract, askContract, amount)
}

func (c *Client) simulate(ctx context.Context, offer, ask string, amount int64) (Instruction, error) {
	params := url.Values{
		"offer_address":      {offer},
		"ask_address":        {ask},
		"units":              {strconv.FormatInt(amount, 10)},
		"slippage_tolerance": {slippageTolerance},
		"dex_v2":             {"true"},
	}

	endpoint := c.baseURL + "/v1/swap/simulate?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return Instruction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Instruction{}, boterr.Gateway("DEX_REQUEST_FAILED", "DEX API request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Instruction{}, ErrRequestFailed.
			WithDetail("status", strconv.Itoa(resp.StatusCode)).
			WithDetail("body", string(text))
	}

	var sim simulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&sim); err != nil {
		return Instruction{}, boterr.Gateway("DEX_INVALID_RESPONSE", "invalid DEX API response", err)
	}

	if sim.RouterAddress == "" {
		return Instruction{}, ErrNoRoute
	}

	value, err := strconv.ParseInt(sim.TxValue, 10, 64)
	if err != nil {
		return Instruction{}, boterr.Gateway("DEX_INVALID_RESPONSE", "invalid DEX transfer value", err).
			WithDetail("tx_value", sim.TxValue)
	}

	return Instruction{
		Destination: sim.RouterAddress,
		Value:       value,
		Payload:     sim.TxPayload,
	}, nil
}

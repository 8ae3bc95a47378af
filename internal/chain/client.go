package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tontrade/tontrade/internal/wallet"
	boterr "github.com/tontrade/tontrade/pkg/errors"
)

var (
	// ErrRequestFailed indicates a chain API request failed.
	ErrRequestFailed = boterr.New(boterr.KindGateway, "CHAIN_REQUEST_FAILED", "chain API request failed")

	// ErrInvalidResponse indicates a malformed chain API response.
	ErrInvalidResponse = boterr.New(boterr.KindGateway, "CHAIN_INVALID_RESPONSE", "invalid chain API response")

	// ErrNoWalletForKey indicates the API returned no wallet for a public key.
	ErrNoWalletForKey = boterr.New(boterr.KindGateway, "CHAIN_NO_WALLET", "no wallet found for public key")
)

// Endpoint names used for rate limiting.
const (
	endpointAccounts = "accounts"
	endpointJettons  = "jettons"
	endpointResolve  = "resolve"
	endpointTransfer = "transfer"
)

const defaultTimeout = 10 * time.Second

// Client is an HTTP client for the chain API, implementing Gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *RateLimiter
}

// NewClient creates a chain API client for the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    DefaultRateLimiter(),
	}
}

// accountResponse is the balance portion of an account lookup.
type accountResponse struct {
	Balance int64 `json:"balance"`
}

// jettonBalanceResponse carries a jetton wallet balance as a decimal string.
type jettonBalanceResponse struct {
	Balance string `json:"balance"`
}

// walletsResponse lists wallets controlled by a public key.
type walletsResponse struct {
	Accounts []struct {
		Address string `json:"address"`
	} `json:"accounts"`
}

// transferRequest is the signed transfer submission body.
type transferRequest struct {
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	Amount       int64  `json:"amount"`
	Payload      string `json:"payload,omitempty"`
	JettonMaster string `json:"jetton_master,omitempty"`
	Decimals     int    `json:"decimals,omitempty"`
	PublicKey    string `json:"public_key"`
	Signature    string `json:"signature,omitempty"`
}

// transferResponse carries the submitted transaction hash.
type transferResponse struct {
	TxHash string `json:"tx_hash"`
}

// ResolveWallet returns the wallet address controlled by a public key.
func (c *Client) ResolveWallet(ctx context.Context, pub ed25519.PublicKey) (string, error) {
	var resp walletsResponse
	path := fmt.Sprintf("/v2/pubkeys/%s/wallets", hex.EncodeToString(pub))
	if err := c.get(ctx, endpointResolve, path, &resp); err != nil {
		return "", err
	}
	if len(resp.Accounts) == 0 || resp.Accounts[0].Address == "" {
		return "", ErrNoWalletForKey
	}
	return resp.Accounts[0].Address, nil
}

// NativeBalance returns the native balance in nano units.
func (c *Client) NativeBalance(ctx context.Context, address string) (int64, error) {
	var resp accountResponse
	path := "/v2/accounts/" + url.PathEscape(address)
	if err := c.get(ctx, endpointAccounts, path, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// TokenBalance returns the jetton balance in smallest units.
func (c *Client) TokenBalance(ctx context.Context, owner, contract string) (int64, error) {
	var resp jettonBalanceResponse
	path := fmt.Sprintf("/v2/accounts/%s/jettons/%s", url.PathEscape(owner), url.PathEscape(contract))
	if err := c.get(ctx, endpointJettons, path, &resp); err != nil {
		return 0, err
	}

	balance, err := strconv.ParseInt(resp.Balance, 10, 64)
	if err != nil {
		return 0, boterr.Gateway("CHAIN_INVALID_RESPONSE", "invalid jetton balance", err).
			WithDetail("balance", resp.Balance)
	}
	return balance, nil
}

// TransferNative submits a native transfer.
func (c *Client) TransferNative(ctx context.Context, key *wallet.Key, source, destination string, amount int64, payload string) (string, error) {
	return c.submitTransfer(ctx, key, transferRequest{
		Source:      source,
		Destination: destination,
		Amount:      amount,
		Payload:     payload,
	})
}

// TransferToken submits a jetton transfer.
func (c *Client) TransferToken(ctx context.Context, key *wallet.Key, source, destination, contract string, amount int64, decimals int, payload string) (string, error) {
	return c.submitTransfer(ctx, key, transferRequest{
		Source:       source,
		Destination:  destination,
		Amount:       amount,
		Payload:      payload,
		JettonMaster: contract,
		Decimals:     decimals,
	})
}

// submitTransfer signs the request body with the wallet key and posts it.
func (c *Client) submitTransfer(ctx context.Context, key *wallet.Key, req transferRequest) (string, error) {
	req.PublicKey = hex.EncodeToString(key.Public)

	// Sign the canonical body digest before attaching the signature.
	unsigned, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling transfer: %w", err)
	}
	digest := sha256.Sum256(unsigned)
	req.Signature = hex.EncodeToString(ed25519.Sign(key.Private, digest[:]))

	var resp transferResponse
	if err := c.post(ctx, endpointTransfer, "/v2/wallet/transfer", req, &resp); err != nil {
		return "", err
	}
	if resp.TxHash == "" {
		return "", ErrInvalidResponse
	}
	return resp.TxHash, nil
}

// get performs a rate-limited GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	return c.do(ctx, endpoint, http.MethodGet, path, nil, out)
}

// post performs a rate-limited POST with a JSON body.
func (c *Client) post(ctx context.Context, endpoint, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	return c.do(ctx, endpoint, http.MethodPost, path, data, out)
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return boterr.Gateway("CHAIN_REQUEST_FAILED", "chain API request failed", err)
	}
	// Body.Close error is intentionally ignored as it only fails if the
	// connection is already broken, and there's no recovery action.
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ErrRequestFailed.
			WithDetail("status", strconv.Itoa(resp.StatusCode)).
			WithDetail("body", string(text))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return boterr.Gateway("CHAIN_INVALID_RESPONSE", "invalid chain API response", err)
	}
	return nil
}

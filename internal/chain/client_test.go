package chain_test

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tontrade/tontrade/internal/chain"
	"github.com/tontrade/tontrade/internal/wallet"
	boterr "github.com/tontrade/tontrade/pkg/errors"
)

func testKey(t *testing.T) *wallet.Key {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return &wallet.Key{Public: pub, Private: priv}
}

func TestNativeBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/EQtest", r.URL.Path)
		assert.Equal(t, "Bearer key123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"balance": 5000000000}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "key123")
	balance, err := c.NativeBalance(context.Background(), "EQtest")
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000_000), balance)
}

func TestTokenBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/EQowner/jettons/EQjetton", r.URL.Path)
		_, _ = w.Write([]byte(`{"balance": "123456789"}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	balance, err := c.TokenBalance(context.Background(), "EQowner", "EQjetton")
	require.NoError(t, err)
	assert.Equal(t, int64(123_456_789), balance)
}

func TestTokenBalance_BadNumber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"balance": "not-a-number"}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	_, err := c.TokenBalance(context.Background(), "EQo", "EQj")
	require.Error(t, err)
	assert.True(t, boterr.IsGateway(err))
}

func TestResolveWallet(t *testing.T) {
	key := testKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/pubkeys/"+hex.EncodeToString(key.Public)+"/wallets", r.URL.Path)
		_, _ = w.Write([]byte(`{"accounts": [{"address": "EQresolved"}]}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	addr, err := c.ResolveWallet(context.Background(), key.Public)
	require.NoError(t, err)
	assert.Equal(t, "EQresolved", addr)
}

func TestResolveWallet_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accounts": []}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	_, err := c.ResolveWallet(context.Background(), testKey(t).Public)
	assert.ErrorIs(t, err, chain.ErrNoWalletForKey)
}

func TestTransferNative_SignedBody(t *testing.T) {
	key := testKey(t)

	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/wallet/transfer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"tx_hash": "abc123"}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	hash, err := c.TransferNative(context.Background(), key, "EQfrom", "EQto", 1_000_000_000, chain.DefaultPayload)
	require.NoError(t, err)
	assert.Equal(t, "abc123", hash)

	assert.Equal(t, "EQfrom", captured["source"])
	assert.Equal(t, "EQto", captured["destination"])
	assert.Equal(t, float64(1_000_000_000), captured["amount"])
	assert.Equal(t, chain.DefaultPayload, captured["payload"])
	assert.Equal(t, hex.EncodeToString(key.Public), captured["public_key"])

	// The signature verifies against the body with the signature removed
	sig, err := hex.DecodeString(captured["signature"].(string))
	require.NoError(t, err)
	delete(captured, "signature")
	unsigned := map[string]interface{}{
		"source":      captured["source"],
		"destination": captured["destination"],
		"amount":      int64(1_000_000_000),
		"payload":     captured["payload"],
		"public_key":  captured["public_key"],
	}
	body, err := json.Marshal(struct {
		Source      string `json:"source"`
		Destination string `json:"destination"`
		Amount      int64  `json:"amount"`
		Payload     string `json:"payload,omitempty"`
		PublicKey   string `json:"public_key"`
	}{
		Source:      unsigned["source"].(string),
		Destination: unsigned["destination"].(string),
		Amount:      1_000_000_000,
		Payload:     unsigned["payload"].(string),
		PublicKey:   unsigned["public_key"].(string),
	})
	require.NoError(t, err)
	digest := sha256.Sum256(body)
	assert.True(t, ed25519.Verify(key.Public, digest[:], sig))
}

func TestTransferToken_CarriesContractAndDecimals(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"tx_hash": "def456"}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	hash, err := c.TransferToken(context.Background(), testKey(t), "EQfrom", "EQto", "EQjetton", 500, 9, "TonTrade")
	require.NoError(t, err)
	assert.Equal(t, "def456", hash)
	assert.Equal(t, "EQjetton", captured["jetton_master"])
	assert.Equal(t, float64(9), captured["decimals"])
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	_, err := c.NativeBalance(context.Background(), "EQx")
	require.Error(t, err)
	assert.True(t, boterr.IsGateway(err))
	assert.Contains(t, err.Error(), "500")
}

func TestTransfer_EmptyHashRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := chain.NewClient(srv.URL, "")
	_, err := c.TransferNative(context.Background(), testKey(t), "a", "b", 1, "")
	assert.ErrorIs(t, err, chain.ErrInvalidResponse)
}

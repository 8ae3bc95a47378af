package chain_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tontrade/tontrade/internal/chain"
)

func TestRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := chain.NewRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("accounts"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("accounts"))

	// Endpoints are limited independently
	assert.True(t, rl.Allow("transfer"))
}

func TestRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := chain.NewRateLimiter(0.001, 1)
	require.NoError(t, rl.Wait(context.Background(), "x"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, rl.Wait(ctx, "x"))
}

package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerPutGetClear(t *testing.T) {
	m := NewManager(time.Minute)

	_, ok := m.Get(1)
	assert.False(t, ok)

	m.Put(1, &State{Flow: KindSend, Step: StepSelectToken, ID: "a"})
	st, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, KindSend, st.Flow)

	m.Clear(1)
	assert.False(t, m.Active(1))
}

func TestManagerStatesArePerUser(t *testing.T) {
	m := NewManager(time.Minute)

	m.Put(1, &State{Flow: KindSend, ID: "a"})
	m.Put(2, &State{Flow: KindSwap, ID: "b"})

	st1, _ := m.Get(1)
	st2, _ := m.Get(2)
	assert.Equal(t, KindSend, st1.Flow)
	assert.Equal(t, KindSwap, st2.Flow)

	m.Clear(1)
	assert.False(t, m.Active(1))
	assert.True(t, m.Active(2))
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(time.Minute)

	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(1, &State{Flow: KindSend, ID: "a"})
	require.True(t, m.Active(1))

	now = now.Add(2 * time.Minute)
	_, ok := m.Get(1)
	assert.False(t, ok)
}

func TestManagerGetRefreshesExpiry(t *testing.T) {
	m := NewManager(time.Minute)

	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(1, &State{Flow: KindSend, ID: "a"})

	now = now.Add(45 * time.Second)
	_, ok := m.Get(1)
	require.True(t, ok)

	now = now.Add(45 * time.Second)
	_, ok = m.Get(1)
	assert.True(t, ok)
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(time.Minute)

	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(1, &State{Flow: KindSend, ID: "a"})
	m.Put(2, &State{Flow: KindSwap, ID: "b"})

	now = now.Add(30 * time.Second)
	m.Put(3, &State{Flow: KindAddToken, ID: "c"})

	now = now.Add(45 * time.Second)
	removed := m.Sweep()
	assert.Equal(t, 2, removed)
	assert.False(t, m.Active(1))
	assert.False(t, m.Active(2))
	assert.True(t, m.Active(3))
}

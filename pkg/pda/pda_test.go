package pda

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAddress(t *testing.T) {
	addr, err := ConfigAddress()
	require.NoError(t, err)
	assert.False(t, addr.IsZero())

	// Derivation is deterministic.
	again, err := ConfigAddress()
	require.NoError(t, err)
	assert.Equal(t, addr, again)
}

func TestTreasuryAddress(t *testing.T) {
	seen := make(map[string]uint8)
	for _, id := range []uint8{0, 1, 2, 255} {
		addr, err := TreasuryAddress(id)
		require.NoError(t, err)
		assert.False(t, addr.IsZero())

		// Distinct treasury ids land on distinct accounts.
		if prev, ok := seen[addr.String()]; ok {
			t.Fatalf("treasury ids %d and %d collide on %s", prev, id, addr)
		}
		seen[addr.String()] = id
	}
}

func TestGuardianSetAddress(t *testing.T) {
	a, err := GuardianSetAddress(WormholeReceiverProgramID, 0)
	require.NoError(t, err)
	b, err := GuardianSetAddress(WormholeReceiverProgramID, 4)
	require.NoError(t, err)

	assert.False(t, a.IsZero())
	assert.NotEqual(t, a, b)
}

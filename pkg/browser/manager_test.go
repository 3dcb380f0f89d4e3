package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_StartRequiresInitialize(t *testing.T) {
	m := NewSessionManager(nil)

	_, err := m.StartSession("guestlist", SessionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestSessionManager_ShutdownIsRepeatable(t *testing.T) {
	m := NewSessionManager(nil)

	assert.NoError(t, m.Shutdown())
	assert.NoError(t, m.Shutdown())
}

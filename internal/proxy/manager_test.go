package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RotatesProxies(t *testing.T) {
	m := NewManager([]string{"http://p1:8000", "", "::bad", "http://p2:8000"})

	first := m.GetProxy()
	require.NotNil(t, first)
	assert.Equal(t, "p1:8000", first.Host)
	assert.Equal(t, "p2:8000", m.GetProxy().Host)
	assert.Equal(t, "p1:8000", m.GetProxy().Host)
}

func TestManager_NoProxies(t *testing.T) {
	m := NewManager(nil)
	assert.Nil(t, m.GetProxy())
	u, err := m.ProxyFunc(nil)
	assert.NoError(t, err)
	assert.Nil(t, u)
	assert.Equal(t, "", m.GetUserAgent())
}

func TestManager_UserAgent(t *testing.T) {
	m := NewManager(nil, "ua-1", "ua-2")
	for i := 0; i < 10; i++ {
		assert.Contains(t, []string{"ua-1", "ua-2"}, m.GetUserAgent())
	}
}

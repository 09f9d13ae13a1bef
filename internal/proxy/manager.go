package proxy

import (
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Manager handles the rotation of proxies and user agents used to fetch pages.
type Manager struct {
	proxies    []*url.URL
	userAgents []string
	mu         sync.Mutex
	proxyIndex int
	rnd        *rand.Rand
}

// NewManager builds a manager. Unparseable proxy URLs are skipped; with no
// user agents the manager hands out "".
func NewManager(proxyURLs []string, userAgents ...string) *Manager {
	m := &Manager{
		userAgents: userAgents,
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, raw := range proxyURLs {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			m.proxies = append(m.proxies, u)
		}
	}
	return m
}

// GetProxy returns a proxy URL from the list, rotating sequentially, or nil.
func (m *Manager) GetProxy() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.proxies) == 0 {
		return nil
	}
	proxy := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return proxy
}

// ProxyFunc adapts GetProxy to http.Transport.Proxy.
func (m *Manager) ProxyFunc(*http.Request) (*url.URL, error) {
	return m.GetProxy(), nil
}

// GetUserAgent returns a random user agent string.
func (m *Manager) GetUserAgent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.userAgents) == 0 {
		return ""
	}
	return m.userAgents[m.rnd.Intn(len(m.userAgents))]
}

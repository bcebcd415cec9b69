package testutil

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/valtokens/internal/api"
	"github.com/dimitrije/valtokens/internal/config"
	"github.com/dimitrije/valtokens/internal/devserver"
	"golang.org/x/crypto/bcrypt"
)

// TestDevServerConfig returns a dev server configuration suitable for tests
func TestDevServerConfig() config.DevServerConfig {
	return config.DevServerConfig{
		Addr:           "127.0.0.1:0",
		JWTSecret:      "test-secret-key-for-testing-only",
		TokenExpiry:    15 * time.Minute,
		GameExpiry:     30 * time.Minute,
		LoginPerMinute: 600,
		LoginBurst:     100,
	}
}

// DevServer is a dev API server listening on a local test port
type DevServer struct {
	*devserver.Server
	URL      string
	Fixtures *Fixtures
}

// NewDevServer starts an in-memory API server that is closed when the test ends
func NewDevServer(t *testing.T, opts ...devserver.StoreOption) *DevServer {
	t.Helper()

	opts = append([]devserver.StoreOption{devserver.WithBcryptCost(bcrypt.MinCost)}, opts...)
	srv := devserver.New(TestDevServerConfig(), false, nil, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &DevServer{Server: srv, URL: ts.URL, Fixtures: NewFixtures(srv)}
}

// Client returns an API client for the server reading its credential from tokens
func (d *DevServer) Client(tokens api.TokenSource) *api.Client {
	return api.New(d.URL, tokens)
}

// StaticTokens is a TokenSource holding a single credential
type StaticTokens struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

// NewStaticTokens creates a token source holding token
func NewStaticTokens(token string) *StaticTokens {
	return &StaticTokens{token: token}
}

func (s *StaticTokens) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *StaticTokens) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.invalidated++
}

// Invalidations reports how many times the credential was dropped
func (s *StaticTokens) Invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// AuthHeader returns an Authorization header value with a Bearer token
func AuthHeader(token string) string {
	return "Bearer " + token
}

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dimitrije/valtokens/internal/api"
	"github.com/dimitrije/valtokens/internal/listing"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/internal/session"
	"github.com/dimitrije/valtokens/tests/testutil"
	"github.com/stretchr/testify/require"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// player is one signed-in client: its own session, REST client and listing controller.
type player struct {
	user     *models.User
	store    *session.FileStore
	session  *session.Session
	auth     *session.Controller
	client   *api.Client
	listing  *listing.Controller
	reloaded chan struct{}
}

func setupTest(t *testing.T) *testutil.DevServer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	return testutil.NewDevServer(t)
}

// signIn creates a user on ds and logs a fresh client in as them.
func signIn(t *testing.T, ds *testutil.DevServer, opts ...testutil.UserOption) *player {
	t.Helper()

	user := ds.Fixtures.CreateUser(t, opts...)
	p := newPlayer(t, ds.URL)
	p.user = user

	st, err := p.auth.Login(context.Background(), ds.Fixtures.Token(t, user))
	require.NoError(t, err)
	require.True(t, st.Authenticated)
	require.NoError(t, p.listing.Start(context.Background()))
	return p
}

func newPlayer(t *testing.T, baseURL string) *player {
	t.Helper()

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	sess := session.New(store, nil)
	client := api.New(baseURL, sess)

	p := &player{
		store:    store,
		session:  sess,
		auth:     session.NewController(sess, client, nil),
		client:   client,
		reloaded: make(chan struct{}, 1),
	}
	p.listing = listing.New(client, sess,
		listing.WithPollInterval(time.Hour),
		listing.WithBannerTTL(time.Hour),
		listing.WithReloadHook(func() {
			select {
			case p.reloaded <- struct{}{}:
			default:
			}
		}),
	)
	t.Cleanup(p.listing.Close)
	return p
}

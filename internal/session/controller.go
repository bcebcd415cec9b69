package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dimitrije/valtokens/internal/models"
)

// ProfileFetcher resolves the user behind the session's current credential.
type ProfileFetcher interface {
	Profile(ctx context.Context) (*models.User, error)
}

type Controller struct {
	session *Session
	store   Store
	profile ProfileFetcher
	logger  *slog.Logger
}

func NewController(sess *Session, profile ProfileFetcher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		session: sess,
		store:   sess.store,
		profile: profile,
		logger:  logger,
	}
}

func (c *Controller) Session() *Session {
	return c.session
}

// CheckAuth validates the stored credential against /profile. Any failure drops the
// credential, which is the only way a stale token is recovered from.
func (c *Controller) CheckAuth(ctx context.Context) State {
	c.checkAuth(ctx)
	c.session.settle()
	return c.session.State()
}

func (c *Controller) checkAuth(ctx context.Context) {
	token, err := c.store.Load()
	if err != nil {
		c.logger.Warn("failed to load stored token", "error", err)
		token = ""
	}
	if token == "" {
		c.session.Invalidate()
		return
	}

	c.session.install(token)

	user, err := c.profile.Profile(ctx)
	if err != nil {
		c.logger.Info("stored token rejected", "error", err)
		c.session.Invalidate()
		return
	}

	c.session.authenticate(token, user)
	c.logger.Info("session authenticated", "user_id", user.ID)
}

// Login persists a freshly issued token and re-validates it through CheckAuth.
func (c *Controller) Login(ctx context.Context, token string) (State, error) {
	if err := c.store.Save(token); err != nil {
		return c.session.State(), fmt.Errorf("failed to store token: %w", err)
	}
	return c.CheckAuth(ctx), nil
}

// Logout drops the credential and profile without contacting the server.
func (c *Controller) Logout() {
	c.session.Invalidate()
	c.logger.Info("logged out")
}

// Authenticate is Login for callers that only care whether the token could be stored.
func (c *Controller) Authenticate(ctx context.Context, token string) error {
	_, err := c.Login(ctx, token)
	return err
}

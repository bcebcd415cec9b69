package devserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dimitrije/valtokens/internal/config"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg     config.DevServerConfig
	app     http.Handler
	store   *Store
	tokens  *TokenService
	limiter *RateLimiter
	logger  *slog.Logger
}

func New(cfg config.DevServerConfig, production bool, logger *slog.Logger, opts ...StoreOption) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts = append([]StoreOption{WithGameExpiry(cfg.GameExpiry)}, opts...)
	store := NewStore(opts...)
	tokens := NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	limiter := NewRateLimiter(cfg.LoginPerMinute, cfg.LoginBurst)
	h := NewHandler(store, tokens, logger)

	app := drift.New()
	if production {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(driftmw.Recovery())
	app.Use(driftmw.CORSWithConfig(driftmw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))

	app.Post("/signup", h.Signup)

	login := app.Group("")
	login.Use(limiter.Middleware(logger))
	login.Post("/token", h.Token)

	protected := app.Group("")
	protected.Use(Auth(tokens, store))

	protected.Get("/profile", h.Profile)
	protected.Get("/users", h.Users)

	protected.Post("/parties", h.CreateParty)
	protected.Get("/parties/:id", h.PartiesOf)
	protected.Delete("/parties/:id", h.DeleteParty)
	protected.Post("/parties/:id/invite", h.Invite)

	protected.Get("/invitations/received", h.ReceivedInvitations)
	protected.Post("/invitations/:id/respond", h.RespondToInvitation)

	protected.Get("/games", h.Games)
	protected.Post("/games", h.CreateGame)
	protected.Get("/games/party/:id", h.PartyGames)
	protected.Delete("/games/:id", h.DeleteGame)
	protected.Post("/games/:id/join", h.JoinGame)
	protected.Post("/games/:id/leave", h.LeaveGame)
	protected.Post("/games/:id/ready", h.ReadyUp)
	protected.Post("/games/:id/result", h.SubmitResult)

	app.Get("/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &Server{
		cfg:     cfg,
		app:     app,
		store:   store,
		tokens:  tokens,
		limiter: limiter,
		logger:  logger,
	}
}

func (s *Server) Handler() http.Handler {
	return s.app
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Tokens() *TokenService {
	return s.tokens
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("dev server starting", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("dev server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.limiter.Cleanup(10 * time.Minute)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down dev server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dimitrije/valtokens/internal/api"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultBannerTTL    = 3 * time.Second
)

var (
	ErrNoUser       = errors.New("no authenticated user")
	ErrUserNotFound = errors.New("user not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnknownParty = errors.New("unknown party")
	ErrUnknownGame  = errors.New("unknown game")
)

// API is the slice of the REST client the listing screens use.
type API interface {
	Users(ctx context.Context) ([]models.User, error)
	UserParties(ctx context.Context, userID string) ([]models.Party, error)
	CreateParty(ctx context.Context, name string) (*models.Party, error)
	DeleteParty(ctx context.Context, partyID string) error
	InviteToParty(ctx context.Context, partyID, inviteeID string) (*dto.InviteResponse, error)
	ReceivedInvitations(ctx context.Context) ([]models.Invitation, error)
	RespondToInvitation(ctx context.Context, invitationID, status string) (*dto.MessageResponse, error)
	Games(ctx context.Context) ([]models.Game, error)
	PartyGames(ctx context.Context, partyID string) ([]models.Game, error)
	CreateGame(ctx context.Context, req dto.CreateGameRequest) (*models.Game, error)
	JoinGame(ctx context.Context, gameID string, partyID *string) (*dto.MessageResponse, error)
	LeaveGame(ctx context.Context, gameID string) (*dto.MessageResponse, error)
	ReadyUp(ctx context.Context, gameID string) (*dto.MessageResponse, error)
	SubmitResult(ctx context.Context, gameID string, result dto.MatchResultRequest) (*dto.MessageResponse, error)
	DeleteGame(ctx context.Context, gameID string) error
}

// Session is the authenticated user context the controller reads from.
type Session interface {
	User() *models.User
	Invalidate()
}

// State is a snapshot of everything the listing screens render.
type State struct {
	View           View
	User           *models.User
	Parties        []models.Party
	Invitations    []models.Invitation
	Games          []models.Game
	AllGames       []models.Game
	PartyMembers   map[string]string
	SelectedParty  *models.Party
	GameFormat     string
	HasCreatedGame bool
	Error          string
	Success        string
}

type Option func(*Controller)

func WithPollInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

func WithBannerTTL(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.bannerTTL = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithReloadHook registers fn to run after an authentication failure on the party fetch
// has reset the controller.
func WithReloadHook(fn func()) Option {
	return func(c *Controller) {
		c.onReload = fn
	}
}

type poller struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type Controller struct {
	api          API
	session      Session
	logger       *slog.Logger
	pollInterval time.Duration
	bannerTTL    time.Duration
	onReload     func()

	// viewMu serializes transitions; it is never held while mu is wanted by a poll tick.
	viewMu sync.Mutex
	poll   *poller

	mu          sync.Mutex
	state       State
	generation  uint64
	bannerSeq   uint64
	bannerTimer *time.Timer
	closed      bool

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

func New(client API, sess Session, opts ...Option) *Controller {
	c := &Controller{
		api:          client,
		session:      sess,
		logger:       slog.New(slog.DiscardHandler),
		pollInterval: DefaultPollInterval,
		bannerTTL:    DefaultBannerTTL,
		subscribers:  make(map[int]func()),
		state:        State{PartyMembers: map[string]string{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep enough copy of the state for rendering from another goroutine.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state
	st.User = c.session.User()
	st.Parties = slices.Clone(c.state.Parties)
	st.Invitations = slices.Clone(c.state.Invitations)
	st.Games = slices.Clone(c.state.Games)
	st.AllGames = slices.Clone(c.state.AllGames)
	st.PartyMembers = maps.Clone(c.state.PartyMembers)
	if c.state.SelectedParty != nil {
		p := *c.state.SelectedParty
		st.SelectedParty = &p
	}
	return st
}

// Subscribe registers fn to be called after every state change.
func (c *Controller) Subscribe(fn func()) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subscribers, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) changed() {
	c.subMu.Lock()
	fns := make([]func(), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) update(fn func(st *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) currentUser() (*models.User, error) {
	user := c.session.User()
	if user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

// succeed shows a transient banner and clears the error banner.
func (c *Controller) succeed(msg string) {
	c.mu.Lock()
	c.state.Success = msg
	c.state.Error = ""
	c.bannerSeq++
	seq := c.bannerSeq
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
	}
	if !c.closed {
		c.bannerTimer = time.AfterFunc(c.bannerTTL, func() { c.expireBanner(seq) })
	}
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) expireBanner(seq uint64) {
	c.mu.Lock()
	if c.bannerSeq != seq {
		c.mu.Unlock()
		return
	}
	c.state.Success = ""
	c.mu.Unlock()
	c.changed()
}

// fail records a user-facing error and returns err for the caller.
func (c *Controller) fail(err error, fallback string) error {
	msg := api.Message(err, fallback)
	c.logger.Warn("listing action failed", "message", msg, "error", err)
	c.update(func(st *State) { st.Error = msg })
	return err
}

// reject records a local validation failure; no request has been made.
func (c *Controller) reject(msg string) error {
	c.update(func(st *State) { st.Error = msg })
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Start loads the data every authenticated session begins with: the user's parties and
// the pending invitations.
func (c *Controller) Start(ctx context.Context) error {
	if _, err := c.currentUser(); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error { return c.fetchParties(ctx) })
	g.Go(func() error { return c.fetchInvitations(ctx) })
	return g.Wait()
}

// SetView moves to next, tearing down any running poller before the new view's data is
// fetched.
func (c *Controller) SetView(ctx context.Context, next View) error {
	c.viewMu.Lock()

	c.mu.Lock()
	current := c.state.View
	closed := c.closed
	c.mu.Unlock()

	if closed {
		c.viewMu.Unlock()
		return context.Canceled
	}
	if current == next {
		c.viewMu.Unlock()
		return nil
	}
	if !CanTransition(current, next) {
		c.viewMu.Unlock()
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current, next)
	}

	c.stopPoller()

	c.mu.Lock()
	c.state.View = next
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	if next.Polling() {
		c.startPoller(gen)
	}
	c.viewMu.Unlock()

	c.logger.Debug("view changed", "from", current, "to", next)
	c.changed()

	switch {
	case next == ViewParties:
		return c.fetchParties(ctx)
	case next.Polling():
		return c.refreshAllGames(ctx, gen)
	}
	return nil
}

// Close stops background work. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()

	c.stopPoller()

	c.mu.Lock()
	c.closed = true
	c.generation++
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
	}
	c.mu.Unlock()
}

// startPoller must be called with viewMu held.
func (c *Controller) startPoller(gen uint64) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &poller{cancel: cancel, done: make(chan struct{})}
	c.poll = p

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = c.refreshAllGames(ctx, gen)
			}
		}
	}()
}

// stopPoller must be called with viewMu held. It returns once the poll goroutine exited.
func (c *Controller) stopPoller() {
	if c.poll == nil {
		return
	}
	c.poll.cancel()
	<-c.poll.done
	c.poll = nil
}

func (c *Controller) reload() {
	c.logger.Info("credential rejected while fetching parties, resetting")
	c.session.Invalidate()

	c.viewMu.Lock()
	c.stopPoller()
	c.mu.Lock()
	c.generation++
	c.bannerSeq++
	if c.bannerTimer != nil {
		c.bannerTimer.Stop()
	}
	c.state = State{PartyMembers: map[string]string{}}
	c.mu.Unlock()
	c.viewMu.Unlock()

	c.changed()
	if c.onReload != nil {
		c.onReload()
	}
}

func (c *Controller) fetchParties(ctx context.Context) error {
	user, err := c.currentUser()
	if err != nil {
		return err
	}

	parties, err := c.api.UserParties(ctx, user.ID)
	if err != nil {
		if api.IsUnauthorized(err) {
			c.reload()
			return err
		}
		return c.fail(err, "Failed to fetch parties")
	}

	c.update(func(st *State) {
		st.Parties = parties
		st.Error = ""
		if st.SelectedParty != nil {
			st.SelectedParty = findParty(parties, st.SelectedParty.ID)
		}
	})
	return nil
}

func (c *Controller) fetchInvitations(ctx context.Context) error {
	invitations, err := c.api.ReceivedInvitations(ctx)
	if err != nil {
		// A rejected credential is handled by the party fetch, which resets the state.
		if api.IsUnauthorized(err) {
			return err
		}
		return c.fail(err, "Failed to fetch invitations")
	}
	c.update(func(st *State) { st.Invitations = invitations })
	return nil
}

// refreshAllGames replaces both game lists unless the view moved on while the request was
// in flight.
func (c *Controller) refreshAllGames(ctx context.Context, gen uint64) error {
	games, err := c.api.Games(ctx)

	c.mu.Lock()
	stale := c.generation != gen || ctx.Err() != nil
	c.mu.Unlock()
	if stale {
		c.logger.Debug("discarding games response for a previous view")
		return nil
	}

	if err != nil {
		return c.fail(err, "Failed to fetch games")
	}
	c.update(func(st *State) {
		st.Games = games
		st.AllGames = games
	})
	return nil
}

func (c *Controller) fetchAllGames(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.refreshAllGames(ctx, gen)
}

func (c *Controller) fetchPartyGames(ctx context.Context, partyID string) error {
	games, err := c.api.PartyGames(ctx, partyID)
	if err != nil {
		return c.fail(err, "Failed to fetch games")
	}
	c.update(func(st *State) { st.Games = games })
	return nil
}

// refreshSelectedPartyGames refetches the selected party's games, if a party is selected.
func (c *Controller) refreshSelectedPartyGames(ctx context.Context) error {
	c.mu.Lock()
	selected := c.state.SelectedParty
	c.mu.Unlock()

	if selected == nil {
		return nil
	}
	return c.fetchPartyGames(ctx, selected.ID)
}

func findParty(parties []models.Party, id string) *models.Party {
	for i := range parties {
		if parties[i].ID == id {
			p := parties[i]
			return &p
		}
	}
	return nil
}

func findGame(games []models.Game, id string) *models.Game {
	for i := range games {
		if games[i].ID == id {
			g := games[i]
			return &g
		}
	}
	return nil
}

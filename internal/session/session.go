package session

import (
	"log/slog"
	"sync"

	"github.com/dimitrije/valtokens/internal/models"
)

// State is a point-in-time view of authentication.
type State struct {
	Token         string
	User          *models.User
	Authenticated bool
	Loading       bool
}

// Session owns the bearer credential and the current profile. The API client reads the
// credential through Token and drops it through Invalidate; everything else observes
// changes through Subscribe.
type Session struct {
	store  Store
	logger *slog.Logger

	mu            sync.RWMutex
	token         string
	user          *models.User
	authenticated bool
	loading       bool

	subMu       sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int
}

func New(store Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		store:       store,
		logger:      logger,
		loading:     true,
		subscribers: make(map[int]func(State)),
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		Token:         s.token,
		Authenticated: s.authenticated,
		Loading:       s.loading,
	}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}

// Subscribe registers fn for every authentication change and returns its cancel func.
func (s *Session) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// Invalidate clears the credential from memory and from the store. Subscribers are only
// notified when there was something to clear.
func (s *Session) Invalidate() {
	s.mu.Lock()
	changed := s.token != "" || s.authenticated || s.user != nil
	s.token = ""
	s.user = nil
	s.authenticated = false
	st := s.stateLocked()
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear stored token", "error", err)
	}

	if changed {
		s.logger.Info("session invalidated")
		s.notify(st)
	}
}

func (s *Session) install(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *Session) authenticate(token string, user *models.User) {
	s.mu.Lock()
	if s.token != token {
		// the credential was replaced or invalidated while the profile was in flight
		s.mu.Unlock()
		return
	}
	u := *user
	s.user = &u
	s.authenticated = true
	s.loading = false
	st := s.stateLocked()
	s.mu.Unlock()

	s.notify(st)
}

func (s *Session) settle() {
	s.mu.Lock()
	if !s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = false
	st := s.stateLocked()
	s.mu.Unlock()

	s.notify(st)
}

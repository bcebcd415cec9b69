package authform

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/dimitrije/valtokens/internal/api"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
)

type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "signup"
	}
	return "login"
}

const (
	msgRequired        = "Email and password are required"
	msgNameRequired    = "Name is required"
	msgInvalidResponse = "Invalid login response"
	msgFallback        = "An error occurred"
)

var ErrValidation = errors.New("validation failed")

// AuthAPI is the part of the REST client the form talks to.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error)
}

// SessionLogin receives the token obtained by a successful submit.
type SessionLogin interface {
	Authenticate(ctx context.Context, token string) error
}

type State struct {
	Mode       Mode
	Email      string
	Password   string
	Name       string
	Error      string
	Submitting bool
}

type Form struct {
	api     AuthAPI
	session SessionLogin
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

func New(authAPI AuthAPI, session SessionLogin, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Form{api: authAPI, session: session, logger: logger}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) SetEmail(v string) {
	f.mu.Lock()
	f.state.Email = v
	f.mu.Unlock()
}

func (f *Form) SetPassword(v string) {
	f.mu.Lock()
	f.state.Password = v
	f.mu.Unlock()
}

func (f *Form) SetName(v string) {
	f.mu.Lock()
	f.state.Name = v
	f.mu.Unlock()
}

// Toggle switches between login and signup and resets every field.
func (f *Form) Toggle() {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := ModeSignup
	if f.state.Mode == ModeSignup {
		next = ModeLogin
	}
	f.state = State{Mode: next}
}

// Submit validates locally, then logs in (or signs up and logs in) and hands the token to
// the session. The returned error is also reflected in State().Error.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	st := f.state
	f.state.Error = ""
	f.mu.Unlock()

	if msg := validate(st); msg != "" {
		f.fail(msg)
		return ErrValidation
	}

	f.setSubmitting(true)
	defer f.setSubmitting(false)

	email := strings.TrimSpace(st.Email)

	if st.Mode == ModeSignup {
		_, err := f.api.Signup(ctx, dto.SignupRequest{Email: email, Password: st.Password, Name: strings.TrimSpace(st.Name)})
		if err != nil {
			f.logger.Info("signup failed", "email", email, "error", err)
			f.fail(api.Message(err, msgFallback))
			return err
		}
		f.logger.Info("signup succeeded", "email", email)
	}

	token, err := f.api.Login(ctx, email, st.Password)
	if err != nil {
		f.logger.Info("login failed", "email", email, "error", err)
		if errors.Is(err, api.ErrMissingAccessToken) {
			f.fail(msgInvalidResponse)
		} else {
			f.fail(api.Message(err, msgFallback))
		}
		return err
	}

	if err := f.session.Authenticate(ctx, token); err != nil {
		f.logger.Warn("failed to store session", "error", err)
		f.fail(msgFallback)
		return err
	}
	return nil
}

func validate(st State) string {
	if strings.TrimSpace(st.Email) == "" || st.Password == "" {
		return msgRequired
	}
	if st.Mode == ModeSignup && strings.TrimSpace(st.Name) == "" {
		return msgNameRequired
	}
	return ""
}

func (f *Form) fail(msg string) {
	f.mu.Lock()
	f.state.Error = msg
	f.mu.Unlock()
}

func (f *Form) setSubmitting(v bool) {
	f.mu.Lock()
	f.state.Submitting = v
	f.mu.Unlock()
}

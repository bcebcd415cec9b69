package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dimitrije/valtokens/internal/authform"
	"github.com/dimitrije/valtokens/internal/listing"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/internal/session"
)

type screen int

const (
	screenLoading screen = iota
	screenAuth
	screenMain
)

type prompt int

const (
	promptNone prompt = iota
	promptPartyName
	promptInvite
	promptScore
)

// refreshMsg tells the program that session or listing state changed and the screen should
// be re-derived from the current snapshots.
type refreshMsg struct{}

type authCheckedMsg struct {
	state session.State
}

type actionDoneMsg struct {
	err error
}

type Deps struct {
	Auth       *session.Controller
	AuthAPI    authform.AuthAPI
	NewListing func() *listing.Controller
	Logger     *slog.Logger
}

type Model struct {
	ctx    context.Context
	deps   Deps
	logger *slog.Logger

	msgCh        chan tea.Msg
	unsubSession func()
	screen       screen
	width        int

	form   *authform.Form
	fields []textinput.Model
	focus  int

	listing      *listing.Controller
	unsubListing func()
	cursor       int
	prompt       prompt
	input        textinput.Model
	scoreGame    string
	scoreWin     bool
}

func New(ctx context.Context, deps Deps) *Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Model{
		ctx:    ctx,
		deps:   deps,
		logger: logger,
		msgCh:  make(chan tea.Msg, 1),
		screen: screenLoading,
		input:  textinput.New(),
	}
	m.unsubSession = deps.Auth.Session().Subscribe(func(session.State) { m.notify() })
	return m
}

// notify coalesces change notifications; one pending refresh is enough since the screen is
// rebuilt from snapshots.
func (m *Model) notify() {
	select {
	case m.msgCh <- refreshMsg{}:
	default:
	}
}

func (m *Model) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgCh
	}
}

func (m *Model) Init() tea.Cmd {
	auth := m.deps.Auth
	ctx := m.ctx
	return tea.Batch(
		func() tea.Msg { return authCheckedMsg{state: auth.CheckAuth(ctx)} },
		m.waitForMsg(),
		textinput.Blink,
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case authCheckedMsg:
		return m, m.sync()

	case refreshMsg:
		return m, tea.Batch(m.sync(), m.waitForMsg())

	case actionDoneMsg:
		if msg.err != nil {
			m.logger.Debug("action finished with error", "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Shutdown()
			return m, tea.Quit
		}
		switch m.screen {
		case screenAuth:
			return m, m.handleAuthKey(msg)
		case screenMain:
			if m.prompt != promptNone {
				return m, m.handlePromptKey(msg)
			}
			return m, m.handleMainKey(msg)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch {
	case m.screen == screenAuth && len(m.fields) > 0:
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	case m.screen == screenMain && m.prompt != promptNone:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// Shutdown releases subscriptions and background work.
func (m *Model) Shutdown() {
	m.leaveMain()
	if m.unsubSession != nil {
		m.unsubSession()
		m.unsubSession = nil
	}
}

// sync moves between screens to match the session: a signed-in session gets a fresh
// listing controller, a lost one returns to the login form.
func (m *Model) sync() tea.Cmd {
	st := m.deps.Auth.Session().State()

	switch {
	case st.Loading:
		m.screen = screenLoading
		return nil
	case st.Authenticated:
		if m.listing != nil {
			return nil
		}
		return m.enterMain()
	default:
		if m.screen == screenAuth {
			return nil
		}
		m.leaveMain()
		m.enterAuth()
		return textinput.Blink
	}
}

func (m *Model) enterMain() tea.Cmd {
	ctrl := m.deps.NewListing()
	m.listing = ctrl
	m.unsubListing = ctrl.Subscribe(m.notify)
	m.screen = screenMain
	m.cursor = 0
	m.prompt = promptNone

	ctx := m.ctx
	return func() tea.Msg { return actionDoneMsg{err: ctrl.Start(ctx)} }
}

func (m *Model) leaveMain() {
	if m.listing == nil {
		return
	}
	if m.unsubListing != nil {
		m.unsubListing()
		m.unsubListing = nil
	}
	m.listing.Close()
	m.listing = nil
	m.prompt = promptNone
}

func (m *Model) enterAuth() {
	m.form = authform.New(m.deps.AuthAPI, m.deps.Auth, m.logger)
	m.resetFields()
	m.screen = screenAuth
}

func (m *Model) resetFields() {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	name := textinput.New()
	name.Placeholder = "name"
	name.CharLimit = 64

	m.fields = []textinput.Model{email, password, name}
	m.focus = 0
	m.fields[0].Focus()
}

// fieldCount is 2 for login (email, password) and 3 for signup, which adds name.
func (m *Model) fieldCount() int {
	if m.form != nil && m.form.State().Mode == authform.ModeSignup {
		return 3
	}
	return 2
}

func (m *Model) moveFocus(delta int) {
	n := m.fieldCount()
	m.fields[m.focus].Blur()
	m.focus = (m.focus + delta + n) % n
	m.fields[m.focus].Focus()
}

func (m *Model) handleAuthKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		m.moveFocus(1)
		return nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return nil
	case "ctrl+t":
		m.form.Toggle()
		m.resetFields()
		return textinput.Blink
	case "enter":
		if m.form.State().Submitting {
			return nil
		}
		m.form.SetEmail(m.fields[0].Value())
		m.form.SetPassword(m.fields[1].Value())
		m.form.SetName(m.fields[2].Value())

		form := m.form
		ctx := m.ctx
		return func() tea.Msg { return actionDoneMsg{err: form.Submit(ctx)} }
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return cmd
}

// run executes a listing action off the UI goroutine; its outcome reaches the screen
// through the controller's state.
func (m *Model) run(fn func(ctx context.Context, ctrl *listing.Controller) error) tea.Cmd {
	ctrl := m.listing
	ctx := m.ctx
	return func() tea.Msg { return actionDoneMsg{err: fn(ctx, ctrl)} }
}

func (m *Model) setView(next listing.View) tea.Cmd {
	m.cursor = 0
	return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
		return ctrl.SetView(ctx, next)
	})
}

func (m *Model) startPrompt(p prompt, placeholder string) tea.Cmd {
	m.prompt = p
	m.input = textinput.New()
	m.input.Placeholder = placeholder
	m.input.CharLimit = 64
	m.input.Focus()
	return textinput.Blink
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		return nil
	case tea.KeyEnter:
		value := m.input.Value()
		p := m.prompt
		m.prompt = promptNone

		switch p {
		case promptPartyName:
			return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
				return ctrl.CreateParty(ctx, value)
			})
		case promptInvite:
			st := m.listing.Snapshot()
			if st.SelectedParty == nil {
				return nil
			}
			partyID := st.SelectedParty.ID
			return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
				return ctrl.InviteByUsername(ctx, partyID, value)
			})
		case promptScore:
			gameID, win := m.scoreGame, m.scoreWin
			return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
				return ctrl.SubmitResult(ctx, gameID, win, value)
			})
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleMainKey(msg tea.KeyMsg) tea.Cmd {
	st := m.listing.Snapshot()
	key := msg.String()

	if key == "esc" {
		switch st.View {
		case listing.ViewParties, listing.ViewGames:
			return m.setView(listing.ViewHome)
		case listing.ViewCreateGame:
			return m.setView(listing.ViewGames)
		}
		return nil
	}

	switch st.View {
	case listing.ViewHome:
		return m.handleHomeKey(key)
	case listing.ViewParties:
		return m.handlePartiesKey(key, st)
	case listing.ViewGames:
		return m.handleGamesKey(key, st)
	case listing.ViewCreateGame:
		return m.handleCreateGameKey(key, st)
	}
	return nil
}

func (m *Model) handleHomeKey(key string) tea.Cmd {
	switch key {
	case "p":
		return m.setView(listing.ViewParties)
	case "g":
		return m.setView(listing.ViewGames)
	case "l":
		m.deps.Auth.Logout()
		return nil
	case "q":
		m.Shutdown()
		return tea.Quit
	}
	return nil
}

func (m *Model) moveCursor(key string, n int) bool {
	switch key {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return true
	case "down":
		if m.cursor < n-1 {
			m.cursor++
		}
		return true
	}
	return false
}

func (m *Model) handlePartiesKey(key string, st listing.State) tea.Cmd {
	if m.moveCursor(key, len(st.Parties)) {
		return nil
	}

	var current *models.Party
	if m.cursor < len(st.Parties) {
		current = &st.Parties[m.cursor]
	}

	switch key {
	case "n":
		return m.startPrompt(promptPartyName, "party name")
	case "i":
		if st.SelectedParty == nil {
			return nil
		}
		return m.startPrompt(promptInvite, "username")
	case "enter":
		if current == nil {
			return nil
		}
		id := current.ID
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.SelectParty(ctx, id)
		})
	case "d":
		if current == nil {
			return nil
		}
		id := current.ID
		m.cursor = 0
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.DeleteParty(ctx, id)
		})
	case "a", "x":
		if len(st.Invitations) == 0 {
			return nil
		}
		id := st.Invitations[0].ID
		status := models.InvitationAccepted
		if key == "x" {
			status = models.InvitationDeclined
		}
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.RespondToInvitation(ctx, id, status)
		})
	}
	return nil
}

// nextParty cycles through candidates and then back to no selection.
func nextParty(candidates []models.Party, selected *models.Party) string {
	if len(candidates) == 0 {
		return ""
	}
	if selected == nil {
		return candidates[0].ID
	}
	for i, p := range candidates {
		if p.ID == selected.ID {
			if i+1 < len(candidates) {
				return candidates[i+1].ID
			}
			return ""
		}
	}
	return candidates[0].ID
}

func (m *Model) cycleParty(candidates []models.Party, selected *models.Party) tea.Cmd {
	id := nextParty(candidates, selected)
	return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
		return ctrl.SelectParty(ctx, id)
	})
}

func (m *Model) handleGamesKey(key string, st listing.State) tea.Cmd {
	if m.moveCursor(key, len(st.Games)) {
		return nil
	}

	switch key {
	case "c":
		return m.setView(listing.ViewCreateGame)
	case "tab":
		return m.cycleParty(st.Parties, st.SelectedParty)
	}

	if m.cursor >= len(st.Games) {
		return nil
	}
	game := st.Games[m.cursor]
	id := game.ID

	switch key {
	case "enter":
		if !listing.CanJoin(st.User, &game) {
			return nil
		}
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.JoinGame(ctx, id)
		})
	case "r":
		if !listing.CanReadyUp(st.User, &game) {
			return nil
		}
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.ReadyUp(ctx, id)
		})
	case "w", "o":
		if !listing.CanReport(st.User, &game) {
			return nil
		}
		m.scoreGame = id
		m.scoreWin = key == "w"
		return m.startPrompt(promptScore, "score (optional)")
	case "v":
		if !listing.CanLeave(st.User, &game) {
			return nil
		}
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.LeaveGame(ctx, id)
		})
	case "d":
		if !listing.CanDelete(st.User, &game) {
			return nil
		}
		m.cursor = 0
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.DeleteGame(ctx, id)
		})
	}
	return nil
}

func (m *Model) handleCreateGameKey(key string, st listing.State) tea.Cmd {
	switch key {
	case "1", "2", "3":
		format := listing.UIFormats[int(key[0]-'1')]
		m.listing.SetGameFormat(format)
		return nil
	case "tab":
		return m.cycleParty(m.listing.ValidParties(st.GameFormat), st.SelectedParty)
	case "enter":
		format := strings.TrimSpace(st.GameFormat)
		return m.run(func(ctx context.Context, ctrl *listing.Controller) error {
			return ctrl.CreateGame(ctx, format)
		})
	}
	return nil
}

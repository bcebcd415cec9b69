package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dimitrije/valtokens/internal/authform"
	"github.com/dimitrije/valtokens/internal/listing"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/internal/session"
	"github.com/dimitrije/valtokens/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, token string) (*Model, *testutil.MockAPI) {
	t.Helper()

	mockAPI := new(testutil.MockAPI)
	sess := session.New(session.NewMemoryStore(token), nil)
	auth := session.NewController(sess, mockAPI, nil)

	m := New(context.Background(), Deps{
		Auth:    auth,
		AuthAPI: mockAPI,
		NewListing: func() *listing.Controller {
			return listing.New(mockAPI, sess)
		},
	})
	t.Cleanup(m.Shutdown)
	return m, mockAPI
}

func checkAuth(m *Model) {
	st := m.deps.Auth.CheckAuth(context.Background())
	m.Update(authCheckedMsg{state: st})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_StartsLoading(t *testing.T) {
	m, _ := newTestModel(t, "")

	assert.Equal(t, screenLoading, m.screen)
	assert.Contains(t, m.View(), "Checking session")
}

func TestModel_NoTokenShowsLogin(t *testing.T) {
	m, mockAPI := newTestModel(t, "")

	checkAuth(m)

	assert.Equal(t, screenAuth, m.screen)
	assert.Contains(t, m.View(), "Login")
	assert.Equal(t, 2, m.fieldCount())
	mockAPI.AssertNotCalled(t, "Profile", mock.Anything)
}

func TestModel_ToggleShowsSignupFields(t *testing.T) {
	m, _ := newTestModel(t, "")
	checkAuth(m)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	assert.Equal(t, authform.ModeSignup, m.form.State().Mode)
	assert.Equal(t, 3, m.fieldCount())
	assert.Contains(t, m.View(), "Sign up")
}

func TestModel_FocusWraps(t *testing.T) {
	m, _ := newTestModel(t, "")
	checkAuth(m)

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 1, m.focus)
}

func TestModel_AuthenticatedShowsHome(t *testing.T) {
	m, mockAPI := newTestModel(t, "token")
	mockAPI.On("Profile", mock.Anything).Return(&models.User{ID: "u1", Name: "alice"}, nil)

	checkAuth(m)

	require.Equal(t, screenMain, m.screen)
	require.NotNil(t, m.listing)
	view := m.View()
	assert.Contains(t, view, "alice")
	assert.Contains(t, view, "Home")
}

func TestModel_LogoutReturnsToLogin(t *testing.T) {
	m, mockAPI := newTestModel(t, "token")
	mockAPI.On("Profile", mock.Anything).Return(&models.User{ID: "u1", Name: "alice"}, nil)
	checkAuth(m)
	require.Equal(t, screenMain, m.screen)

	m.Update(runes("l"))
	m.Update(refreshMsg{})

	assert.Equal(t, screenAuth, m.screen)
	assert.Nil(t, m.listing)
	assert.Contains(t, m.View(), "Login")
}

func TestModel_PromptCancel(t *testing.T) {
	m, mockAPI := newTestModel(t, "token")
	mockAPI.On("Profile", mock.Anything).Return(&models.User{ID: "u1", Name: "alice"}, nil)
	mockAPI.On("UserParties", mock.Anything, "u1").Return([]models.Party{}, nil)
	checkAuth(m)
	require.NoError(t, m.listing.SetView(context.Background(), listing.ViewParties))

	m.Update(runes("n"))
	assert.Equal(t, promptPartyName, m.prompt)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, promptNone, m.prompt)
	mockAPI.AssertNotCalled(t, "CreateParty", mock.Anything, mock.Anything)
}

func TestNextParty(t *testing.T) {
	parties := []models.Party{{ID: "a"}, {ID: "b"}}

	assert.Equal(t, "", nextParty(nil, nil))
	assert.Equal(t, "a", nextParty(parties, nil))
	assert.Equal(t, "b", nextParty(parties, &parties[0]))
	assert.Equal(t, "", nextParty(parties, &parties[1]))
	assert.Equal(t, "a", nextParty(parties, &models.Party{ID: "gone"}))
}

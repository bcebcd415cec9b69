package devserver

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(opts ...StoreOption) *Store {
	return NewStore(append([]StoreOption{WithBcryptCost(bcrypt.MinCost)}, opts...)...)
}

func mustUser(t *testing.T, s *Store, email, name string) models.User {
	t.Helper()
	u, err := s.CreateUser(email, "password123", name)
	require.NoError(t, err)
	return *u
}

func mustParty(t *testing.T, s *Store, creator models.User, members ...models.User) models.Party {
	t.Helper()
	p := s.CreateParty(creator.Name+"'s party", creator)
	for _, m := range members {
		inv, err := s.Invite(p.ID, m.ID, creator)
		require.NoError(t, err)
		require.NoError(t, s.RespondToInvitation(inv.ID, models.InvitationAccepted, m))
	}
	p, err := s.Party(p.ID)
	require.NoError(t, err)
	return p
}

func assertStatus(t *testing.T, err error, status int, detail string) {
	t.Helper()
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, detail, apiErr.Detail)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore()
	mustUser(t, s, "alice@example.com", "alice")

	_, err := s.CreateUser("ALICE@example.com ", "other", "alice2")

	assertStatus(t, err, http.StatusBadRequest, "Email already registered")
}

func TestStore_Authenticate(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")

	u, err := s.Authenticate("alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, u.ID)

	_, err = s.Authenticate("alice@example.com", "wrong")
	assertStatus(t, err, http.StatusUnauthorized, "Incorrect email or password")

	_, err = s.Authenticate("nobody@example.com", "password123")
	assertStatus(t, err, http.StatusUnauthorized, "Incorrect email or password")
}

func TestStore_UsersInRegistrationOrder(t *testing.T) {
	s := newTestStore()
	mustUser(t, s, "a@example.com", "a")
	mustUser(t, s, "b@example.com", "b")

	users := s.Users()

	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].Name)
	assert.Equal(t, "b", users[1].Name)
}

func TestStore_PartyMembershipViaInvitation(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")

	p := s.CreateParty("Squad", alice)
	assert.Equal(t, []string{alice.ID}, p.Members)

	inv, err := s.Invite(p.ID, bob.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "Squad", inv.PartyName)
	assert.Equal(t, "alice", inv.InviterName)

	_, err = s.Invite(p.ID, bob.ID, alice)
	assertStatus(t, err, http.StatusBadRequest, "Invitation already sent")

	pending := s.PendingInvitations(bob.ID)
	require.Len(t, pending, 1)

	require.NoError(t, s.RespondToInvitation(inv.ID, models.InvitationAccepted, bob))
	assert.Empty(t, s.PendingInvitations(bob.ID))

	parties := s.PartiesOf(bob.ID)
	require.Len(t, parties, 1)
	assert.Equal(t, []string{alice.ID, bob.ID}, parties[0].Members)

	_, err = s.Invite(p.ID, bob.ID, alice)
	assertStatus(t, err, http.StatusBadRequest, "User is already a member")

	err = s.RespondToInvitation(inv.ID, models.InvitationDeclined, bob)
	assertStatus(t, err, http.StatusBadRequest, "Invitation already processed")
}

func TestStore_InviteRules(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	p := s.CreateParty("Squad", alice)

	_, err := s.Invite(p.ID, alice.ID, bob)
	assertStatus(t, err, http.StatusForbidden, "Only the party creator can invite users")

	_, err = s.Invite(p.ID, "missing", alice)
	assertStatus(t, err, http.StatusNotFound, "User not found")

	_, err = s.Invite("missing", bob.ID, alice)
	assertStatus(t, err, http.StatusNotFound, "Party not found")
}

func TestStore_RespondToInvitation_Rules(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	p := s.CreateParty("Squad", alice)
	inv, err := s.Invite(p.ID, bob.ID, alice)
	require.NoError(t, err)

	assertStatus(t, s.RespondToInvitation(inv.ID, "maybe", bob), http.StatusBadRequest, "Invalid status")
	assertStatus(t, s.RespondToInvitation(inv.ID, models.InvitationAccepted, alice), http.StatusForbidden, "Not authorized to respond to this invitation")
	assertStatus(t, s.RespondToInvitation("missing", models.InvitationAccepted, bob), http.StatusNotFound, "Invitation not found")

	require.NoError(t, s.RespondToInvitation(inv.ID, models.InvitationDeclined, bob))
	p, err = s.Party(p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{alice.ID}, p.Members)
}

func TestStore_DeleteParty(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	p := s.CreateParty("Squad", alice)
	_, err := s.Invite(p.ID, bob.ID, alice)
	require.NoError(t, err)

	assertStatus(t, s.DeleteParty(p.ID, bob), http.StatusForbidden, "Only the party creator can delete the party")

	require.NoError(t, s.DeleteParty(p.ID, alice))
	assert.Empty(t, s.PartiesOf(alice.ID))
	assert.Empty(t, s.PendingInvitations(bob.ID))
}

func TestStore_CreateGame_Solo(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")

	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)

	require.NoError(t, err)
	assert.Equal(t, models.GameOpen, g.Status)
	assert.Equal(t, "Solo Queue", g.PartyName)
	assert.Nil(t, g.PartyID)
	assert.Equal(t, []string{alice.ID}, g.Players)
	assert.Equal(t, 2, g.MaxPlayers)
	assert.Equal(t, 30*time.Minute, g.ExpiresAt.Sub(g.CreatedAt.Time))

	_, err = s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	assertStatus(t, err, http.StatusBadRequest, "You already have an active game listing")
}

func TestStore_CreateGame_SoloRequiresDeathmatch(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")

	_, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeBestOfThree}, alice)

	assertStatus(t, err, http.StatusBadRequest, "1v1 format only supports deathmatch game type")
}

func TestStore_CreateGame_TeamRules(t *testing.T) {
	s := newTestStore()
	users := make([]models.User, 4)
	for i, name := range []string{"a", "b", "c", "d"} {
		users[i] = mustUser(t, s, name+"@example.com", name)
	}
	small := mustParty(t, s, users[0], users[1])

	_, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch}, users[0])
	assertStatus(t, err, http.StatusBadRequest, "Party ID is required for team games")

	_, err = s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: small.ID}, users[0])
	assertStatus(t, err, http.StatusBadRequest, "Need at least 4 players in party for 4v4")

	_, err = s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: small.ID}, users[1])
	assertStatus(t, err, http.StatusForbidden, "Only the party creator can create team format games")

	full := mustParty(t, s, users[0], users[1], users[2], users[3])
	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: full.ID}, users[0])
	require.NoError(t, err)
	require.NotNil(t, g.PartyID)
	assert.Equal(t, full.ID, *g.PartyID)
	assert.Equal(t, full.ID, *g.Team1PartyID)
	assert.Equal(t, 8, g.MaxPlayers)
}

func TestStore_Games_MasksOpenCreator(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	require.NoError(t, err)

	assert.Equal(t, "alice", s.Games(alice.ID, "")[0].CreatorName)
	assert.Equal(t, "Anonymous", s.Games(bob.ID, "")[0].CreatorName)

	require.NoError(t, s.JoinGame(g.ID, nil, bob))
	assert.Equal(t, "alice", s.Games(bob.ID, "")[0].CreatorName)
}

func TestStore_Games_FilterByParty(t *testing.T) {
	s := newTestStore()
	users := make([]models.User, 5)
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		users[i] = mustUser(t, s, name+"@example.com", name)
	}
	p := mustParty(t, s, users[0], users[1], users[2], users[3])
	_, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: p.ID}, users[0])
	require.NoError(t, err)
	_, err = s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, users[4])
	require.NoError(t, err)

	assert.Len(t, s.Games(users[0].ID, ""), 2)
	games := s.Games(users[0].ID, p.ID)
	require.Len(t, games, 1)
	assert.Equal(t, models.FormatFourVFour, games[0].Format)
}

func TestStore_GameExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(WithClock(clock.Now), WithGameExpiry(10*time.Minute))
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")

	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)

	assert.Equal(t, models.GameExpired, s.Games(alice.ID, "")[0].Status)
	assertStatus(t, s.JoinGame(g.ID, nil, bob), http.StatusBadRequest, "Game has expired")

	_, err = s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	assert.NoError(t, err)
}

func TestStore_SoloLifecycle(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	carol := mustUser(t, s, "carol@example.com", "carol")
	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	require.NoError(t, err)

	assertStatus(t, s.JoinGame(g.ID, nil, alice), http.StatusBadRequest, "You are already in this game")
	require.NoError(t, s.JoinGame(g.ID, nil, bob))
	assertStatus(t, s.JoinGame(g.ID, nil, carol), http.StatusBadRequest, "Game is full")

	_, err = s.ReadyUp(g.ID, carol)
	assertStatus(t, err, http.StatusForbidden, "You must be a player to ready up")

	allReady, err := s.ReadyUp(g.ID, alice)
	require.NoError(t, err)
	assert.False(t, allReady)
	allReady, err = s.ReadyUp(g.ID, bob)
	require.NoError(t, err)
	assert.True(t, allReady)
	assert.Equal(t, models.GameReadyToStart, s.Games(alice.ID, "")[0].Status)

	err = s.SubmitResult(g.ID, dto.MatchResultRequest{WinnerID: alice.ID, LoserID: carol.ID}, carol)
	assertStatus(t, err, http.StatusForbidden, "You must be a player to submit results")

	result := dto.MatchResultRequest{WinnerID: bob.ID, WinnerName: "bob", LoserID: alice.ID, LoserName: "alice", Score: "Deathmatch"}
	require.NoError(t, s.SubmitResult(g.ID, result, alice))

	got := s.Games(alice.ID, "")[0]
	assert.Equal(t, models.GameCompleted, got.Status)
	require.NotNil(t, got.MatchResult)
	assert.Equal(t, bob.ID, got.MatchResult.WinnerID)
	assert.Equal(t, alice.ID, got.MatchResult.ReportedBy)
	assert.NotNil(t, got.MatchResult.ReportedAt)

	err = s.SubmitResult(g.ID, result, bob)
	assertStatus(t, err, http.StatusBadRequest, "Game is not in progress")
}

func TestStore_LeaveGameReopens(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	require.NoError(t, err)
	require.NoError(t, s.JoinGame(g.ID, nil, bob))

	assertStatus(t, s.LeaveGame(g.ID, alice), http.StatusBadRequest, "The creator cannot leave the game; delete it instead")
	require.NoError(t, s.LeaveGame(g.ID, bob))

	got := s.Games(alice.ID, "")[0]
	assert.Equal(t, models.GameOpen, got.Status)
	assert.Equal(t, []string{alice.ID}, got.Players)
}

func TestStore_TeamJoinAndResultAuthorization(t *testing.T) {
	s := newTestStore()
	users := make([]models.User, 8)
	for i, name := range []string{"a1", "a2", "a3", "a4", "b1", "b2", "b3", "b4"} {
		users[i] = mustUser(t, s, name+"@example.com", name)
	}
	home := mustParty(t, s, users[0], users[1:4]...)
	away := mustParty(t, s, users[4], users[5:8]...)

	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: home.ID}, users[0])
	require.NoError(t, err)

	assertStatus(t, s.JoinGame(g.ID, &home.ID, users[5]), http.StatusBadRequest, "You must be a party creator to join team format games")
	require.NoError(t, s.JoinGame(g.ID, &away.ID, users[4]))

	got := s.Games(users[0].ID, "")[0]
	require.NotNil(t, got.Team2PartyID)
	assert.Equal(t, away.ID, *got.Team2PartyID)
	assert.Equal(t, models.GameInProgress, got.Status)

	result := dto.MatchResultRequest{WinnerID: users[0].ID, LoserID: users[4].ID}
	assertStatus(t, s.SubmitResult(g.ID, result, users[5]), http.StatusForbidden, "Only party creators can submit results for team games")
	require.NoError(t, s.SubmitResult(g.ID, result, users[4]))
}

func TestStore_TeamJoinFallsBackToCaptainedParty(t *testing.T) {
	s := newTestStore()
	users := make([]models.User, 8)
	for i, name := range []string{"a1", "a2", "a3", "a4", "b1", "b2", "b3", "b4"} {
		users[i] = mustUser(t, s, name+"@example.com", name)
	}
	home := mustParty(t, s, users[0], users[1:4]...)
	mustParty(t, s, users[4], users[5])
	away := mustParty(t, s, users[4], users[5:8]...)

	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatFourVFour, GameType: models.GameTypeDeathmatch, PartyID: home.ID}, users[0])
	require.NoError(t, err)

	require.NoError(t, s.JoinGame(g.ID, nil, users[4]))
	assert.Equal(t, away.ID, *s.Games(users[4].ID, "")[0].Team2PartyID)
}

func TestStore_DeleteGame(t *testing.T) {
	s := newTestStore()
	alice := mustUser(t, s, "alice@example.com", "alice")
	bob := mustUser(t, s, "bob@example.com", "bob")
	g, err := s.CreateGame(dto.CreateGameRequest{Format: models.FormatOneVOne, GameType: models.GameTypeDeathmatch}, alice)
	require.NoError(t, err)

	assertStatus(t, s.DeleteGame(g.ID, bob), http.StatusForbidden, "Only the game creator can delete the game")
	require.NoError(t, s.DeleteGame(g.ID, alice))
	assert.Empty(t, s.Games(alice.ID, ""))
	assertStatus(t, s.DeleteGame(g.ID, alice), http.StatusNotFound, "Game not found")
}

package testutil

import (
	"fmt"
	"testing"

	"github.com/dimitrije/valtokens/internal/devserver"
	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
)

// DefaultPassword is the password every fixture user is created with
const DefaultPassword = "password123"

// Fixtures provides factory methods for seeding the dev server's store
type Fixtures struct {
	server  *devserver.Server
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(server *devserver.Server) *Fixtures {
	return &Fixtures{server: server}
}

// CreateUser registers a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("user%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	created, err := f.server.Store().CreateUser(user.Email, DefaultPassword, user.Name)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return created
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// Token issues an access token for user
func (f *Fixtures) Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := f.server.Tokens().Generate(user.ID, user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// CreateParty creates a party owned by creator with the given members already accepted
func (f *Fixtures) CreateParty(t *testing.T, creator *models.User, members ...*models.User) models.Party {
	t.Helper()
	f.counter++

	store := f.server.Store()
	party := store.CreateParty(fmt.Sprintf("Test Party %d", f.counter), *creator)

	for _, m := range members {
		inv, err := store.Invite(party.ID, m.ID, *creator)
		if err != nil {
			t.Fatalf("failed to invite member: %v", err)
		}
		if err := store.RespondToInvitation(inv.ID, models.InvitationAccepted, *m); err != nil {
			t.Fatalf("failed to accept invitation: %v", err)
		}
	}

	party, err := store.Party(party.ID)
	if err != nil {
		t.Fatalf("failed to reload party: %v", err)
	}
	return party
}

// CreateGame opens a game listing for creator
func (f *Fixtures) CreateGame(t *testing.T, creator *models.User, format models.Format, partyID string) models.Game {
	t.Helper()

	game, err := f.server.Store().CreateGame(dto.CreateGameRequest{
		Format:   format,
		GameType: models.GameTypeDeathmatch,
		PartyID:  partyID,
	}, *creator)
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	return game
}

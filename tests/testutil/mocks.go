package testutil

import (
	"context"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"github.com/stretchr/testify/mock"
)

// MockAPI mocks the REST API client for controller tests
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockAPI) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAPI) Profile(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAPI) Users(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockAPI) UserParties(ctx context.Context, userID string) ([]models.Party, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Party), args.Error(1)
}

func (m *MockAPI) CreateParty(ctx context.Context, name string) (*models.Party, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Party), args.Error(1)
}

func (m *MockAPI) DeleteParty(ctx context.Context, partyID string) error {
	args := m.Called(ctx, partyID)
	return args.Error(0)
}

func (m *MockAPI) InviteToParty(ctx context.Context, partyID, inviteeID string) (*dto.InviteResponse, error) {
	args := m.Called(ctx, partyID, inviteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InviteResponse), args.Error(1)
}

func (m *MockAPI) ReceivedInvitations(ctx context.Context) ([]models.Invitation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockAPI) RespondToInvitation(ctx context.Context, invitationID, status string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, invitationID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAPI) Games(ctx context.Context) ([]models.Game, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}

func (m *MockAPI) PartyGames(ctx context.Context, partyID string) ([]models.Game, error) {
	args := m.Called(ctx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Game), args.Error(1)
}

func (m *MockAPI) CreateGame(ctx context.Context, req dto.CreateGameRequest) (*models.Game, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockAPI) JoinGame(ctx context.Context, gameID string, partyID *string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, gameID, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAPI) LeaveGame(ctx context.Context, gameID string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAPI) ReadyUp(ctx context.Context, gameID string) (*dto.MessageResponse, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAPI) SubmitResult(ctx context.Context, gameID string, result dto.MatchResultRequest) (*dto.MessageResponse, error) {
	args := m.Called(ctx, gameID, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MessageResponse), args.Error(1)
}

func (m *MockAPI) DeleteGame(ctx context.Context, gameID string) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

// MockSessionLogin mocks the session controller's Login as seen by the auth form
type MockSessionLogin struct {
	mock.Mock
}

func (m *MockSessionLogin) Authenticate(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
)

func gamePath(gameID, action string) string {
	p := "/games/" + url.PathEscape(gameID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func (c *Client) Games(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := c.Do(ctx, http.MethodGet, "/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) PartyGames(ctx context.Context, partyID string) ([]models.Game, error) {
	var games []models.Game
	if err := c.Do(ctx, http.MethodGet, "/games/party/"+url.PathEscape(partyID), nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

func (c *Client) CreateGame(ctx context.Context, req dto.CreateGameRequest) (*models.Game, error) {
	var game models.Game
	if err := c.Do(ctx, http.MethodPost, "/games", req, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) JoinGame(ctx context.Context, gameID string, partyID *string) (*dto.MessageResponse, error) {
	var resp dto.MessageResponse
	if err := c.Do(ctx, http.MethodPost, gamePath(gameID, "join"), dto.JoinGameRequest{PartyID: partyID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LeaveGame(ctx context.Context, gameID string) (*dto.MessageResponse, error) {
	var resp dto.MessageResponse
	if err := c.Do(ctx, http.MethodPost, gamePath(gameID, "leave"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ReadyUp(ctx context.Context, gameID string) (*dto.MessageResponse, error) {
	var resp dto.MessageResponse
	if err := c.Do(ctx, http.MethodPost, gamePath(gameID, "ready"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SubmitResult(ctx context.Context, gameID string, result dto.MatchResultRequest) (*dto.MessageResponse, error) {
	var resp dto.MessageResponse
	if err := c.Do(ctx, http.MethodPost, gamePath(gameID, "result"), result, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteGame(ctx context.Context, gameID string) error {
	return c.Do(ctx, http.MethodDelete, gamePath(gameID, ""), nil, nil)
}

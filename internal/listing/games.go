package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
)

// UI format vocabulary. "ffa" is what the create-game screen calls a 1v1 game.
const (
	UIFormatFFA  = "ffa"
	UIFormat4v4  = "4v4"
	UIFormat5v5  = "5v5"
	anonymousTag = "Anonymous"
)

var UIFormats = []string{UIFormatFFA, UIFormat4v4, UIFormat5v5}

// ServerFormat maps a UI format to the API's vocabulary; unknown values pass through.
func ServerFormat(uiFormat string) models.Format {
	if strings.EqualFold(uiFormat, UIFormatFFA) {
		return models.FormatOneVOne
	}
	return models.Format(uiFormat)
}

// SetGameFormat chooses the format shown on the create-game screen. It hides games from a
// previous creation and clears the party selection.
func (c *Controller) SetGameFormat(uiFormat string) {
	c.update(func(st *State) {
		st.GameFormat = uiFormat
		st.HasCreatedGame = false
		st.SelectedParty = nil
		st.PartyMembers = map[string]string{}
	})
}

func (c *Controller) CreateGame(ctx context.Context, uiFormat string) error {
	if strings.TrimSpace(uiFormat) == "" {
		return c.reject("Please select a game format")
	}

	format := ServerFormat(uiFormat)
	req := dto.CreateGameRequest{
		Format:   format,
		GameType: models.GameTypeDeathmatch,
	}

	if format.IsTeam() {
		c.mu.Lock()
		selected := c.state.SelectedParty
		c.mu.Unlock()
		if selected == nil {
			return c.reject("Please select a party for team games")
		}
		req.PartyID = selected.ID
	}

	c.update(func(st *State) { st.GameFormat = uiFormat })

	game, err := c.api.CreateGame(ctx, req)
	if err != nil {
		return c.fail(err, "Failed to create game")
	}
	c.logger.Info("game created", "game_id", game.ID, "format", format)

	c.update(func(st *State) { st.HasCreatedGame = true })
	c.succeed("Game created successfully!")
	return c.fetchAllGames(ctx)
}

func (c *Controller) lookupGame(gameID string) *models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g := findGame(c.state.AllGames, gameID); g != nil {
		return g
	}
	return findGame(c.state.Games, gameID)
}

func (c *Controller) JoinGame(ctx context.Context, gameID string) error {
	game := c.lookupGame(gameID)
	if game == nil {
		return ErrUnknownGame
	}

	var partyID *string
	if game.Format.IsTeam() {
		c.mu.Lock()
		selected := c.state.SelectedParty
		c.mu.Unlock()

		if selected == nil {
			return c.reject("Please select a party to join team games")
		}
		if required := game.Format.RequiredPartySize(); selected.Size() != required {
			return c.reject(fmt.Sprintf("Your party needs exactly %d players to join this game", required))
		}
		id := selected.ID
		partyID = &id
	}

	if _, err := c.api.JoinGame(ctx, gameID, partyID); err != nil {
		return c.fail(err, "Failed to join game")
	}
	c.logger.Info("joined game", "game_id", gameID)

	c.succeed("Joined game successfully!")
	if err := c.fetchAllGames(ctx); err != nil {
		return err
	}
	return c.refreshSelectedPartyGames(ctx)
}

func (c *Controller) LeaveGame(ctx context.Context, gameID string) error {
	if _, err := c.api.LeaveGame(ctx, gameID); err != nil {
		return c.fail(err, "Failed to leave game")
	}
	c.logger.Info("left game", "game_id", gameID)

	c.succeed("Left game successfully!")
	return c.refreshSelectedPartyGames(ctx)
}

func (c *Controller) ReadyUp(ctx context.Context, gameID string) error {
	resp, err := c.api.ReadyUp(ctx, gameID)
	if err != nil {
		return c.fail(err, "Failed to ready up")
	}

	c.succeed(resp.Message)
	return c.refreshSelectedPartyGames(ctx)
}

// SubmitResult reports the current user as winner or loser against the game's only other
// player. Rosters with no or several other players are rejected before any request.
func (c *Controller) SubmitResult(ctx context.Context, gameID string, isWinner bool, score string) error {
	user, err := c.currentUser()
	if err != nil {
		return err
	}
	game := c.lookupGame(gameID)
	if game == nil {
		return ErrUnknownGame
	}

	opponents := game.Opponents(user.ID)
	switch {
	case len(opponents) == 0:
		return c.reject("No opponent has joined this game yet")
	case len(opponents) > 1:
		return c.reject("Unable to determine the opposing player")
	}

	opponentID := opponents[0]
	opponentName, err := c.playerName(ctx, game, opponentID)
	if err != nil {
		return c.fail(err, "Failed to submit match result")
	}

	result := dto.MatchResultRequest{
		WinnerID:   user.ID,
		WinnerName: user.Name,
		LoserID:    opponentID,
		LoserName:  opponentName,
		Score:      strings.TrimSpace(score),
	}
	if !isWinner {
		result.WinnerID, result.LoserID = result.LoserID, result.WinnerID
		result.WinnerName, result.LoserName = result.LoserName, result.WinnerName
	}

	if _, err := c.api.SubmitResult(ctx, gameID, result); err != nil {
		return c.fail(err, "Failed to submit match result")
	}
	c.logger.Info("match result submitted", "game_id", gameID, "winner_id", result.WinnerID)

	c.succeed("Match result submitted successfully!")
	return c.refreshSelectedPartyGames(ctx)
}

// playerName resolves a display name from what is already loaded before asking the server.
func (c *Controller) playerName(ctx context.Context, game *models.Game, userID string) (string, error) {
	if game.CreatorID == userID && game.CreatorName != "" && game.CreatorName != anonymousTag {
		return game.CreatorName, nil
	}

	c.mu.Lock()
	name, ok := c.state.PartyMembers[userID]
	c.mu.Unlock()
	if ok {
		return name, nil
	}

	users, err := c.api.Users(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if u.ID == userID {
			return u.Name, nil
		}
	}
	return "", nil
}

func (c *Controller) DeleteGame(ctx context.Context, gameID string) error {
	if err := c.api.DeleteGame(ctx, gameID); err != nil {
		return c.fail(err, "Failed to delete game")
	}
	c.logger.Info("game deleted", "game_id", gameID)

	c.succeed("Game deleted successfully!")
	return c.refreshSelectedPartyGames(ctx)
}

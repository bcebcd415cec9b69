package listing

import (
	"strings"

	"github.com/dimitrije/valtokens/internal/models"
)

// CanSubmitResult gates the result controls. Team games accept the creator, or any listed
// player once a second party has joined; 1v1 games accept any listed player. The server
// authorizes independently.
func CanSubmitResult(user *models.User, game *models.Game) bool {
	if user == nil || game == nil {
		return false
	}
	if game.Format.IsTeam() {
		return game.CreatorID == user.ID ||
			(game.Team2PartyID != nil && *game.Team2PartyID != "" && game.HasPlayer(user.ID))
	}
	return game.HasPlayer(user.ID)
}

func CanReadyUp(user *models.User, game *models.Game) bool {
	return game != nil && game.Status == models.GameInProgress &&
		CanSubmitResult(user, game) && !game.IsReady(user.ID)
}

// CanReport is CanSubmitResult restricted to games that are being played.
func CanReport(user *models.User, game *models.Game) bool {
	return game != nil && game.Status.Playing() && CanSubmitResult(user, game)
}

func CanJoin(user *models.User, game *models.Game) bool {
	return user != nil && game != nil && game.Status == models.GameOpen && !game.HasPlayer(user.ID)
}

func CanLeave(user *models.User, game *models.Game) bool {
	return user != nil && game != nil && game.Status.Active() &&
		game.CreatorID != user.ID && game.HasPlayer(user.ID)
}

func CanDelete(user *models.User, game *models.Game) bool {
	return user != nil && game != nil && game.CreatorID == user.ID && game.Status != models.GameCompleted
}

// ValidParties returns the parties whose size exactly matches uiFormat's requirement. Solo
// and empty formats have no valid parties.
func ValidParties(parties []models.Party, uiFormat string) []models.Party {
	required := ServerFormat(uiFormat).RequiredPartySize()
	if uiFormat == "" || required == 0 {
		return []models.Party{}
	}

	out := []models.Party{}
	for _, p := range parties {
		if p.Size() == required {
			out = append(out, p)
		}
	}
	return out
}

// FilterGames keeps the games of the given UI format.
func FilterGames(games []models.Game, uiFormat string) []models.Game {
	out := []models.Game{}
	if uiFormat == "" {
		return out
	}
	want := ServerFormat(uiFormat)
	for _, g := range games {
		if strings.EqualFold(string(g.Format), string(want)) {
			out = append(out, g)
		}
	}
	return out
}

func (c *Controller) ValidParties(uiFormat string) []models.Party {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ValidParties(c.state.Parties, uiFormat)
}

func (c *Controller) FilteredGames() []models.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterGames(c.state.Games, c.state.GameFormat)
}

func (c *Controller) CanSubmitResult(game *models.Game) bool {
	return CanSubmitResult(c.session.User(), game)
}

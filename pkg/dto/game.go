package dto

import "github.com/dimitrije/valtokens/internal/models"

type CreateGameRequest struct {
	Format   models.Format   `json:"format"`
	GameType models.GameType `json:"game_type"`
	PartyID  string          `json:"party_id,omitempty"`
}

// JoinGameRequest carries a null party for solo formats.
type JoinGameRequest struct {
	PartyID *string `json:"party_id"`
}

type MatchResultRequest struct {
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
	LoserID    string `json:"loser_id"`
	LoserName  string `json:"loser_name"`
	Score      string `json:"score"`
}

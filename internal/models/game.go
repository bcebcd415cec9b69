package models

import "slices"

type Format string

const (
	FormatOneVOne   Format = "1v1"
	FormatFourVFour Format = "4v4"
	FormatFiveVFive Format = "5v5"
)

func (f Format) Valid() bool {
	switch f {
	case FormatOneVOne, FormatFourVFour, FormatFiveVFive:
		return true
	}
	return false
}

// IsTeam reports whether games of this format are fielded by a party.
func (f Format) IsTeam() bool {
	return f == FormatFourVFour || f == FormatFiveVFive
}

// RequiredPartySize is the exact party size a team format needs, 0 for solo formats.
func (f Format) RequiredPartySize() int {
	switch f {
	case FormatFourVFour:
		return 4
	case FormatFiveVFive:
		return 5
	}
	return 0
}

func (f Format) MaxPlayers() int {
	switch f {
	case FormatOneVOne:
		return 2
	case FormatFourVFour:
		return 8
	case FormatFiveVFive:
		return 10
	}
	return 0
}

type GameType string

const (
	GameTypeBestOfOne   GameType = "best_of_1"
	GameTypeBestOfThree GameType = "best_of_3"
	GameTypeDeathmatch  GameType = "deathmatch"
)

func (t GameType) Valid() bool {
	switch t {
	case GameTypeBestOfOne, GameTypeBestOfThree, GameTypeDeathmatch:
		return true
	}
	return false
}

type GameStatus string

const (
	GameOpen         GameStatus = "open"
	GameInProgress   GameStatus = "in_progress"
	GameReadyToStart GameStatus = "ready_to_start"
	GameCompleted    GameStatus = "completed"
	GameExpired      GameStatus = "expired"
)

// Active reports whether the game still occupies its creator's single listing slot.
func (s GameStatus) Active() bool {
	return s == GameOpen || s == GameInProgress
}

// Playing covers the statuses in which players ready up and report results.
func (s GameStatus) Playing() bool {
	return s == GameInProgress || s == GameReadyToStart
}

type MatchResult struct {
	WinnerID   string     `json:"winner_id"`
	WinnerName string     `json:"winner_name"`
	LoserID    string     `json:"loser_id"`
	LoserName  string     `json:"loser_name"`
	Score      string     `json:"score"`
	ReportedBy string     `json:"reported_by,omitempty"`
	ReportedAt *Timestamp `json:"reported_at,omitempty"`
}

type Game struct {
	ID           string       `json:"id"`
	PartyID      *string      `json:"party_id"`
	PartyName    string       `json:"party_name"`
	CreatorID    string       `json:"creator_id"`
	CreatorName  string       `json:"creator_name"`
	Format       Format       `json:"format"`
	GameType     GameType     `json:"game_type"`
	Status       GameStatus   `json:"status"`
	CreatedAt    Timestamp    `json:"created_at"`
	ExpiresAt    Timestamp    `json:"expires_at"`
	Players      []string     `json:"players"`
	ReadyPlayers []string     `json:"ready_players"`
	MaxPlayers   int          `json:"max_players"`
	Team1PartyID *string      `json:"team1_party_id,omitempty"`
	Team2PartyID *string      `json:"team2_party_id,omitempty"`
	MatchResult  *MatchResult `json:"match_result"`
}

func (g *Game) HasPlayer(userID string) bool {
	return slices.Contains(g.Players, userID)
}

func (g *Game) IsReady(userID string) bool {
	return slices.Contains(g.ReadyPlayers, userID)
}

func (g *Game) IsFull() bool {
	return g.MaxPlayers > 0 && len(g.Players) >= g.MaxPlayers
}

// Opponents lists every player other than userID, in roster order.
func (g *Game) Opponents(userID string) []string {
	var out []string
	for _, p := range g.Players {
		if p != userID {
			out = append(out, p)
		}
	}
	return out
}

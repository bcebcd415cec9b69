package devserver

import (
	"fmt"
	"slices"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"github.com/google/uuid"
)

const (
	soloPartyName = "Solo Queue"
	anonymousName = "Anonymous"
)

func copyGame(g *models.Game) models.Game {
	cp := *g
	cp.Players = slices.Clone(g.Players)
	cp.ReadyPlayers = slices.Clone(g.ReadyPlayers)
	if g.MatchResult != nil {
		mr := *g.MatchResult
		cp.MatchResult = &mr
	}
	return cp
}

// viewFor masks the creator of an open listing from everyone but the creator.
func viewFor(g *models.Game, viewerID string) models.Game {
	cp := copyGame(g)
	if cp.Status == models.GameOpen && cp.CreatorID != viewerID {
		cp.CreatorName = anonymousName
	}
	return cp
}

// expireLocked marks open games past their deadline as expired. Callers hold s.mu.
func (s *Store) expireLocked() {
	now := s.now()
	for _, g := range s.games {
		if g.Status == models.GameOpen && g.ExpiresAt.Before(now) {
			g.Status = models.GameExpired
		}
	}
}

func (s *Store) CreateGame(req dto.CreateGameRequest, creator models.User) (models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &models.Game{
		ID:           uuid.NewString(),
		CreatorID:    creator.ID,
		CreatorName:  creator.Name,
		Format:       req.Format,
		GameType:     req.GameType,
		Status:       models.GameOpen,
		Players:      []string{creator.ID},
		ReadyPlayers: []string{},
		MaxPlayers:   req.Format.MaxPlayers(),
	}

	if req.Format.IsTeam() {
		if req.PartyID == "" {
			return models.Game{}, badRequest("Party ID is required for team games")
		}
		p, ok := s.parties[req.PartyID]
		if !ok {
			return models.Game{}, notFound("Party not found")
		}
		if p.CreatorID != creator.ID {
			return models.Game{}, forbidden("Only the party creator can create team format games")
		}
		if need := req.Format.RequiredPartySize(); p.Size() < need {
			return models.Game{}, badRequest(fmt.Sprintf("Need at least %d players in party for %s", need, req.Format))
		}
		partyID := p.ID
		g.PartyID = &partyID
		g.PartyName = p.Name
		g.Team1PartyID = &partyID
	} else {
		g.PartyName = soloPartyName
	}

	s.expireLocked()
	for _, existing := range s.games {
		if existing.CreatorID == creator.ID && existing.Status.Active() {
			return models.Game{}, badRequest("You already have an active game listing")
		}
	}

	if req.Format == models.FormatOneVOne && req.GameType != models.GameTypeDeathmatch {
		return models.Game{}, badRequest("1v1 format only supports deathmatch game type")
	}

	created := s.now()
	g.CreatedAt = models.NewTimestamp(created)
	g.ExpiresAt = models.NewTimestamp(created.Add(s.gameExpiry))

	s.games[g.ID] = g
	s.gameOrder = append(s.gameOrder, g.ID)
	return copyGame(g), nil
}

// Games lists every game as viewerID sees it. An empty partyID means all parties.
func (s *Store) Games(viewerID, partyID string) []models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()

	out := []models.Game{}
	for _, id := range s.gameOrder {
		g := s.games[id]
		if partyID != "" && (g.PartyID == nil || *g.PartyID != partyID) {
			continue
		}
		out = append(out, viewFor(g, viewerID))
	}
	return out
}

func (s *Store) gameLocked(id string) (*models.Game, error) {
	g, ok := s.games[id]
	if !ok {
		return nil, notFound("Game not found")
	}
	return g, nil
}

// JoinGame adds user to an open game. Team games take the joining side from partyID when
// given, otherwise from the first party the user captains that is large enough.
func (s *Store) JoinGame(id string, partyID *string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()

	g, err := s.gameLocked(id)
	if err != nil {
		return err
	}
	if g.HasPlayer(user.ID) {
		return badRequest("You are already in this game")
	}
	if g.IsFull() {
		return badRequest("Game is full")
	}
	if g.Status == models.GameExpired {
		return badRequest("Game has expired")
	}
	if g.Status != models.GameOpen {
		return badRequest("Game is not open")
	}

	if g.Format.IsTeam() {
		team, err := s.joiningPartyLocked(g.Format, partyID, user)
		if err != nil {
			return err
		}
		g.Team2PartyID = &team
	}

	g.Players = append(g.Players, user.ID)
	g.Status = models.GameInProgress
	return nil
}

func (s *Store) joiningPartyLocked(format models.Format, partyID *string, user models.User) (string, error) {
	need := format.RequiredPartySize()

	if partyID != nil && *partyID != "" {
		p, ok := s.parties[*partyID]
		if !ok {
			return "", notFound("Party not found")
		}
		if p.CreatorID != user.ID {
			return "", badRequest("You must be a party creator to join team format games")
		}
		if p.Size() < need {
			return "", badRequest(fmt.Sprintf("You need a party with at least %d members to join this game", need))
		}
		return p.ID, nil
	}

	captained := false
	for _, id := range s.partyOrder {
		p := s.parties[id]
		if p.CreatorID != user.ID {
			continue
		}
		captained = true
		if p.Size() >= need {
			return p.ID, nil
		}
	}
	if !captained {
		return "", badRequest("You must be a party creator to join team format games")
	}
	return "", badRequest(fmt.Sprintf("You need a party with at least %d members to join this game", need))
}

// LeaveGame removes a non-creator player and reopens the listing.
func (s *Store) LeaveGame(id string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(id)
	if err != nil {
		return err
	}
	if !g.HasPlayer(user.ID) {
		return badRequest("You are not in this game")
	}
	if g.CreatorID == user.ID {
		return badRequest("The creator cannot leave the game; delete it instead")
	}
	if g.Status == models.GameCompleted || g.Status == models.GameExpired {
		return badRequest("Game is no longer active")
	}

	g.Players = slices.DeleteFunc(g.Players, func(p string) bool { return p == user.ID })
	g.ReadyPlayers = slices.DeleteFunc(g.ReadyPlayers, func(p string) bool { return p == user.ID })
	if g.Team2PartyID != nil {
		if p, ok := s.parties[*g.Team2PartyID]; !ok || p.CreatorID == user.ID {
			g.Team2PartyID = nil
		}
	}
	g.Status = models.GameOpen
	return nil
}

// ReadyUp marks user ready and reports whether every player now is.
func (s *Store) ReadyUp(id string, user models.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(id)
	if err != nil {
		return false, err
	}
	if !g.HasPlayer(user.ID) {
		return false, forbidden("You must be a player to ready up")
	}
	if g.Status != models.GameInProgress {
		return false, badRequest("Game is not in progress")
	}

	if !g.IsReady(user.ID) {
		g.ReadyPlayers = append(g.ReadyPlayers, user.ID)
	}
	if len(g.ReadyPlayers) == len(g.Players) {
		g.Status = models.GameReadyToStart
		return true, nil
	}
	return false, nil
}

func (s *Store) SubmitResult(id string, result dto.MatchResultRequest, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(id)
	if err != nil {
		return err
	}
	if !g.Status.Playing() {
		return badRequest("Game is not in progress")
	}

	if g.Format.IsTeam() {
		allowed := g.CreatorID == user.ID
		if !allowed && g.Team2PartyID != nil {
			if p, ok := s.parties[*g.Team2PartyID]; ok && p.CreatorID == user.ID {
				allowed = true
			}
		}
		if !allowed {
			return forbidden("Only party creators can submit results for team games")
		}
	} else {
		if !g.HasPlayer(user.ID) {
			return forbidden("You must be a player to submit results")
		}
		if user.ID != result.WinnerID && user.ID != result.LoserID {
			return forbidden("You can only submit results involving yourself")
		}
	}

	reportedAt := models.NewTimestamp(s.now())
	g.Status = models.GameCompleted
	g.MatchResult = &models.MatchResult{
		WinnerID:   result.WinnerID,
		WinnerName: result.WinnerName,
		LoserID:    result.LoserID,
		LoserName:  result.LoserName,
		Score:      result.Score,
		ReportedBy: user.ID,
		ReportedAt: &reportedAt,
	}
	return nil
}

func (s *Store) DeleteGame(id string, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.gameLocked(id)
	if err != nil {
		return err
	}
	if g.CreatorID != user.ID {
		return forbidden("Only the game creator can delete the game")
	}

	delete(s.games, id)
	s.gameOrder = slices.DeleteFunc(s.gameOrder, func(gid string) bool { return gid == id })
	return nil
}

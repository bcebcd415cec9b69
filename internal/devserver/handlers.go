package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type Handler struct {
	store  *Store
	tokens *TokenService
	logger *slog.Logger
}

func NewHandler(store *Store, tokens *TokenService, logger *slog.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, logger: logger}
}

func (h *Handler) fail(c *drift.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		_ = c.JSON(apiErr.Status, apiErr.Response())
		return
	}
	h.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	_ = c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("Internal server error"))
}

func decodeJSON(c *drift.Context, v any) error {
	if c.Request.Body == nil {
		return invalid(fieldRequired("body"))
	}
	if err := json.NewDecoder(c.Request.Body).Decode(v); err != nil {
		return invalid(dto.FieldError{Loc: []any{"body"}, Msg: "value is not a valid dict", Type: "type_error.dict"})
	}
	return nil
}

func (h *Handler) user(c *drift.Context) (models.User, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Not authenticated"))
	}
	return u, ok
}

func (h *Handler) Signup(c *drift.Context) {
	var req dto.SignupRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	var fields []dto.FieldError
	if strings.TrimSpace(req.Email) == "" {
		fields = append(fields, fieldRequired("body", "email"))
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields = append(fields, dto.FieldError{Loc: []any{"body", "email"}, Msg: "value is not a valid email address", Type: "value_error.email"})
	}
	if req.Password == "" {
		fields = append(fields, fieldRequired("body", "password"))
	}
	if strings.TrimSpace(req.Name) == "" {
		fields = append(fields, fieldRequired("body", "name"))
	}
	if len(fields) > 0 {
		h.fail(c, invalid(fields...))
		return
	}

	user, err := h.store.CreateUser(req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("user signed up", "user_id", user.ID, "email", user.Email)

	_ = c.JSON(http.StatusOK, user)
}

// Token implements the password grant: form-encoded username (the email) and password.
func (h *Handler) Token(c *drift.Context) {
	if err := c.Request.ParseForm(); err != nil {
		h.fail(c, invalid(dto.FieldError{Loc: []any{"body"}, Msg: "invalid form body", Type: "value_error"}))
		return
	}

	username := c.Request.PostForm.Get("username")
	password := c.Request.PostForm.Get("password")

	var fields []dto.FieldError
	if username == "" {
		fields = append(fields, fieldRequired("body", "username"))
	}
	if password == "" {
		fields = append(fields, fieldRequired("body", "password"))
	}
	if len(fields) > 0 {
		h.fail(c, invalid(fields...))
		return
	}

	user, err := h.store.Authenticate(username, password)
	if err != nil {
		c.Response.Header().Set("WWW-Authenticate", "Bearer")
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Email)
	if err != nil {
		h.fail(c, err)
		return
	}

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.Expiry().Seconds()),
	})
}

func (h *Handler) Profile(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	_ = c.JSON(http.StatusOK, user)
}

func (h *Handler) Users(c *drift.Context) {
	if _, ok := h.user(c); !ok {
		return
	}
	_ = c.JSON(http.StatusOK, dto.UsersResponse{Users: h.store.Users()})
}

func (h *Handler) CreateParty(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.CreatePartyRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.fail(c, invalid(fieldRequired("body", "name")))
		return
	}

	party := h.store.CreateParty(req.Name, user)
	h.logger.Info("party created", "party_id", party.ID, "creator_id", user.ID)

	_ = c.JSON(http.StatusOK, party)
}

// PartiesOf serves GET /parties/:id, where id is a user id.
func (h *Handler) PartiesOf(c *drift.Context) {
	if _, ok := h.user(c); !ok {
		return
	}
	_ = c.JSON(http.StatusOK, dto.PartiesResponse{Parties: h.store.PartiesOf(c.Param("id"))})
}

func (h *Handler) DeleteParty(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	if err := h.store.DeleteParty(c.Param("id"), user); err != nil {
		h.fail(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Party deleted successfully"})
}

func (h *Handler) Invite(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	if req.InviteeID == "" {
		h.fail(c, invalid(fieldRequired("body", "invitee_id")))
		return
	}

	inv, err := h.store.Invite(c.Param("id"), req.InviteeID, user)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("invitation created", "invitation_id", inv.ID, "party_id", inv.PartyID)

	_ = c.JSON(http.StatusOK, dto.InviteResponse{InvitationID: inv.ID, Status: inv.Status})
}

func (h *Handler) ReceivedInvitations(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	_ = c.JSON(http.StatusOK, h.store.PendingInvitations(user.ID))
}

func (h *Handler) RespondToInvitation(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.RespondInvitationRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	if err := h.store.RespondToInvitation(c.Param("id"), req.Status, user); err != nil {
		h.fail(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Invitation " + req.Status})
}

func (h *Handler) CreateGame(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.CreateGameRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	var fields []dto.FieldError
	if !req.Format.Valid() {
		fields = append(fields, fieldEnum("'5v5', '4v4', '1v1'", "body", "format"))
	}
	if !req.GameType.Valid() {
		fields = append(fields, fieldEnum("'best_of_1', 'best_of_3', 'deathmatch'", "body", "game_type"))
	}
	if len(fields) > 0 {
		h.fail(c, invalid(fields...))
		return
	}

	game, err := h.store.CreateGame(req, user)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("game created", "game_id", game.ID, "format", game.Format, "creator_id", user.ID)

	_ = c.JSON(http.StatusOK, game)
}

func (h *Handler) Games(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	_ = c.JSON(http.StatusOK, h.store.Games(user.ID, ""))
}

// PartyGames serves GET /games/party/:id, where id is a party id.
func (h *Handler) PartyGames(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	_ = c.JSON(http.StatusOK, h.store.Games(user.ID, c.Param("id")))
}

func (h *Handler) JoinGame(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.JoinGameRequest
	if c.Request.ContentLength != 0 {
		if err := decodeJSON(c, &req); err != nil {
			h.fail(c, err)
			return
		}
	}

	if err := h.store.JoinGame(c.Param("id"), req.PartyID, user); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("player joined game", "game_id", c.Param("id"), "user_id", user.ID)

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Joined game successfully"})
}

func (h *Handler) LeaveGame(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	if err := h.store.LeaveGame(c.Param("id"), user); err != nil {
		h.fail(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Left game successfully"})
}

func (h *Handler) ReadyUp(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	allReady, err := h.store.ReadyUp(c.Param("id"), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	if allReady {
		_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "All players ready, game can start!"})
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Ready status updated"})
}

func (h *Handler) SubmitResult(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}

	var req dto.MatchResultRequest
	if err := decodeJSON(c, &req); err != nil {
		h.fail(c, err)
		return
	}

	var fields []dto.FieldError
	if req.WinnerID == "" {
		fields = append(fields, fieldRequired("body", "winner_id"))
	}
	if req.LoserID == "" {
		fields = append(fields, fieldRequired("body", "loser_id"))
	}
	if len(fields) > 0 {
		h.fail(c, invalid(fields...))
		return
	}

	if err := h.store.SubmitResult(c.Param("id"), req, user); err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("match result submitted", "game_id", c.Param("id"), "reported_by", user.ID)

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Match result submitted successfully"})
}

func (h *Handler) DeleteGame(c *drift.Context) {
	user, ok := h.user(c)
	if !ok {
		return
	}
	if err := h.store.DeleteGame(c.Param("id"), user); err != nil {
		h.fail(c, err)
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "Game deleted successfully"})
}

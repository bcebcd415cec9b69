package dto

import "github.com/dimitrije/valtokens/internal/models"

type PartiesResponse struct {
	Parties []models.Party `json:"parties"`
}

type CreatePartyRequest struct {
	Name string `json:"name"`
}

type InviteRequest struct {
	PartyID   string `json:"party_id"`
	InviteeID string `json:"invitee_id"`
}

type InviteResponse struct {
	InvitationID string `json:"invitation_id"`
	Status       string `json:"status"`
}

type RespondInvitationRequest struct {
	Status string `json:"status"`
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dimitrije/valtokens/internal/models"
	"github.com/dimitrije/valtokens/pkg/dto"
)

func (c *Client) UserParties(ctx context.Context, userID string) ([]models.Party, error) {
	var resp dto.PartiesResponse
	if err := c.Do(ctx, http.MethodGet, "/parties/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Parties, nil
}

func (c *Client) CreateParty(ctx context.Context, name string) (*models.Party, error) {
	var party models.Party
	if err := c.Do(ctx, http.MethodPost, "/parties", dto.CreatePartyRequest{Name: name}, &party); err != nil {
		return nil, err
	}
	return &party, nil
}

func (c *Client) DeleteParty(ctx context.Context, partyID string) error {
	return c.Do(ctx, http.MethodDelete, "/parties/"+url.PathEscape(partyID), nil, nil)
}

func (c *Client) InviteToParty(ctx context.Context, partyID, inviteeID string) (*dto.InviteResponse, error) {
	var resp dto.InviteResponse
	req := dto.InviteRequest{PartyID: partyID, InviteeID: inviteeID}
	if err := c.Do(ctx, http.MethodPost, "/parties/"+url.PathEscape(partyID)+"/invite", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ReceivedInvitations(ctx context.Context) ([]models.Invitation, error) {
	var invitations []models.Invitation
	if err := c.Do(ctx, http.MethodGet, "/invitations/received", nil, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

func (c *Client) RespondToInvitation(ctx context.Context, invitationID, status string) (*dto.MessageResponse, error) {
	var resp dto.MessageResponse
	req := dto.RespondInvitationRequest{Status: status}
	if err := c.Do(ctx, http.MethodPost, "/invitations/"+url.PathEscape(invitationID)+"/respond", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

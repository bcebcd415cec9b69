package listing

import (
	"context"
	"strings"

	"github.com/dimitrije/valtokens/internal/models"
)

func (c *Controller) CreateParty(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return c.reject("Please enter a party name")
	}

	if _, err := c.api.CreateParty(ctx, name); err != nil {
		return c.fail(err, "Failed to create party")
	}
	c.logger.Info("party created", "name", name)

	c.succeed("Party created successfully!")
	return c.fetchParties(ctx)
}

// SelectParty makes id the selected party and resolves its member names. An empty id clears
// the selection.
func (c *Controller) SelectParty(ctx context.Context, id string) error {
	if id == "" {
		c.update(func(st *State) {
			st.SelectedParty = nil
			st.PartyMembers = map[string]string{}
		})
		return nil
	}

	c.mu.Lock()
	party := findParty(c.state.Parties, id)
	c.mu.Unlock()
	if party == nil {
		return ErrUnknownParty
	}

	c.update(func(st *State) { st.SelectedParty = party })
	return c.fetchPartyMembers(ctx, party)
}

func (c *Controller) fetchPartyMembers(ctx context.Context, party *models.Party) error {
	users, err := c.api.Users(ctx)
	if err != nil {
		return c.fail(err, "Failed to fetch party members")
	}

	members := make(map[string]string, len(party.Members))
	for _, id := range party.Members {
		for _, u := range users {
			if u.ID == id {
				members[id] = u.Name
				break
			}
		}
	}
	c.update(func(st *State) { st.PartyMembers = members })
	return nil
}

// InviteByUsername resolves username against the user directory and invites the match.
func (c *Controller) InviteByUsername(ctx context.Context, partyID, username string) error {
	username = strings.TrimSpace(username)
	if partyID == "" {
		return c.reject("Please select a party first")
	}
	if username == "" {
		return c.reject("Please enter a username")
	}

	users, err := c.api.Users(ctx)
	if err != nil {
		return c.fail(err, "Failed to send invitation")
	}

	var invitee *models.User
	for i := range users {
		if users[i].Name == username {
			invitee = &users[i]
			break
		}
	}
	if invitee == nil {
		c.update(func(st *State) { st.Error = "User not found" })
		return ErrUserNotFound
	}

	if _, err := c.api.InviteToParty(ctx, partyID, invitee.ID); err != nil {
		return c.fail(err, "Failed to send invitation")
	}
	c.logger.Info("invitation sent", "party_id", partyID, "invitee_id", invitee.ID)

	c.succeed("Invitation sent successfully!")
	return nil
}

func (c *Controller) RespondToInvitation(ctx context.Context, invitationID, status string) error {
	if !models.ValidResponse(status) {
		return ErrValidation
	}

	if _, err := c.api.RespondToInvitation(ctx, invitationID, status); err != nil {
		return c.fail(err, "Failed to respond to invitation")
	}

	c.update(func(st *State) {
		st.Invitations = removeInvitation(st.Invitations, invitationID)
	})

	if status == models.InvitationAccepted {
		if err := c.fetchParties(ctx); err != nil {
			return err
		}
		c.succeed("You have joined the party!")
		return nil
	}
	c.succeed("Invitation declined")
	return nil
}

func (c *Controller) DeleteParty(ctx context.Context, partyID string) error {
	if err := c.api.DeleteParty(ctx, partyID); err != nil {
		return c.fail(err, "Failed to delete party")
	}
	c.logger.Info("party deleted", "party_id", partyID)

	c.update(func(st *State) {
		kept := st.Parties[:0:0]
		for _, p := range st.Parties {
			if p.ID != partyID {
				kept = append(kept, p)
			}
		}
		st.Parties = kept
		if st.SelectedParty != nil && st.SelectedParty.ID == partyID {
			st.SelectedParty = nil
			st.PartyMembers = map[string]string{}
		}
	})
	c.succeed("Party deleted successfully!")
	return nil
}

func removeInvitation(invitations []models.Invitation, id string) []models.Invitation {
	out := make([]models.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.ID != id {
			out = append(out, inv)
		}
	}
	return out
}

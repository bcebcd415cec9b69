package models

const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
)

type Invitation struct {
	ID          string    `json:"id"`
	PartyID     string    `json:"party_id"`
	PartyName   string    `json:"party_name"`
	InviterID   string    `json:"inviter_id"`
	InviterName string    `json:"inviter_name"`
	InviteeID   string    `json:"invitee_id"`
	Status      string    `json:"status"`
	CreatedAt   Timestamp `json:"created_at"`
}

// ValidResponse reports whether status is an answer a user can give to an invitation.
func ValidResponse(status string) bool {
	return status == InvitationAccepted || status == InvitationDeclined
}

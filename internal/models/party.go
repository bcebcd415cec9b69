package models

import "slices"

type Party struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatorID string   `json:"creator_id"`
	Members   []string `json:"members"`
}

func (p *Party) Size() int {
	return len(p.Members)
}

func (p *Party) HasMember(userID string) bool {
	return slices.Contains(p.Members, userID)
}

func (p *Party) IsCreator(userID string) bool {
	return p.CreatorID == userID
}

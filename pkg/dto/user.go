package dto

import "github.com/dimitrije/valtokens/internal/models"

type UsersResponse struct {
	Users []models.User `json:"users"`
}

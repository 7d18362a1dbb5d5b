package handlers

import (
	"github.com/SergeySenin/user-service/internal/avatar"
	"github.com/SergeySenin/user-service/internal/repository"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	users     repository.UserRepository
	countries repository.CountryRepository
	avatars   *avatar.Service
}

// NewHandlers creates a new handlers instance
func NewHandlers(users repository.UserRepository, countries repository.CountryRepository, avatars *avatar.Service) *Handlers {
	return &Handlers{
		users:     users,
		countries: countries,
		avatars:   avatars,
	}
}

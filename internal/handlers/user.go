package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SergeySenin/user-service/internal/auth"
	apperrors "github.com/SergeySenin/user-service/internal/errors"
	"github.com/SergeySenin/user-service/internal/models"
	"github.com/SergeySenin/user-service/internal/repository"
	"github.com/SergeySenin/user-service/internal/util"
)

// UserResponse is the public shape of a user record
type UserResponse struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Active     bool   `json:"active"`
	AboutMe    string `json:"about_me,omitempty"`
	City       string `json:"city,omitempty"`
	Experience *int16 `json:"experience,omitempty"`
	Country    string `json:"country,omitempty"`
	CountryID  int64  `json:"country_id"`
	HasAvatar  bool   `json:"has_avatar"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Phone:      u.Phone,
		Active:     u.Active,
		AboutMe:    u.AboutMe,
		City:       u.City,
		Experience: u.Experience,
		Country:    u.Country.Title,
		CountryID:  u.CountryID,
		HasAvatar:  u.HasAvatar(),
		CreatedAt:  u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  u.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// CreateUserRequest is the payload for registering a user profile
type CreateUserRequest struct {
	Username   string `json:"username" binding:"required,max=64"`
	Email      string `json:"email" binding:"required,email,max=256"`
	Phone      string `json:"phone" binding:"required,max=16"`
	AboutMe    string `json:"about_me" binding:"max=2048"`
	CountryID  int64  `json:"country_id" binding:"required"`
	City       string `json:"city" binding:"max=64"`
	Experience *int16 `json:"experience"`
}

// CreateUser registers a new user profile. Only admins may create users.
func (h *Handlers) CreateUser(c *gin.Context) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return
	}
	if !identity.IsAdmin {
		util.RespondForbidden(c, "only admins may create users")
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if _, err := h.countries.GetCountry(c.Request.Context(), req.CountryID); err != nil {
		if errors.Is(err, repository.ErrCountryNotFound) {
			util.RespondValidationError(c, "country_id", "country does not exist")
			return
		}
		util.RespondWithError(c, err)
		return
	}

	user := &models.User{
		Username:   req.Username,
		Email:      req.Email,
		Phone:      req.Phone,
		Active:     true,
		AboutMe:    req.AboutMe,
		CountryID:  req.CountryID,
		City:       req.City,
		Experience: req.Experience,
	}

	if err := h.users.CreateUser(c.Request.Context(), user); err != nil {
		util.RespondWithError(c, err)
		return
	}

	created, err := h.users.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(created))
}

// GetUser returns one user profile. Callers may read their own record;
// admins may read anyone's.
func (h *Handlers) GetUser(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			util.RespondWithAPIError(c, apperrors.UserNotFound(userID))
			return
		}
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUserRequest carries the mutable profile fields
type UpdateUserRequest struct {
	Username   *string `json:"username" binding:"omitempty,max=64"`
	Email      *string `json:"email" binding:"omitempty,email,max=256"`
	Phone      *string `json:"phone" binding:"omitempty,max=16"`
	AboutMe    *string `json:"about_me" binding:"omitempty,max=2048"`
	City       *string `json:"city" binding:"omitempty,max=64"`
	CountryID  *int64  `json:"country_id"`
	Experience *int16  `json:"experience"`
	Active     *bool   `json:"active"`
}

// UpdateUser updates the mutable fields of a profile. Callers may update
// their own record; admins may update anyone's.
func (h *Handlers) UpdateUser(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			util.RespondWithAPIError(c, apperrors.UserNotFound(userID))
			return
		}
		util.RespondWithError(c, err)
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AboutMe != nil {
		user.AboutMe = *req.AboutMe
	}
	if req.City != nil {
		user.City = *req.City
	}
	if req.CountryID != nil {
		if _, err := h.countries.GetCountry(c.Request.Context(), *req.CountryID); err != nil {
			util.RespondValidationError(c, "country_id", "country does not exist")
			return
		}
		user.CountryID = *req.CountryID
	}
	if req.Experience != nil {
		user.Experience = req.Experience
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.users.UpdateUser(c.Request.Context(), user); err != nil {
		util.RespondWithError(c, err)
		return
	}

	updated, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(updated))
}

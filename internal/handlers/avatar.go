package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SergeySenin/user-service/internal/auth"
	"github.com/SergeySenin/user-service/internal/util"
)

// targetUser resolves the userId path parameter and checks that the
// authenticated caller may act on that user
func targetUser(c *gin.Context) (int64, bool) {
	userID, err := util.ParseID(c.Param("userId"), "userId")
	if err != nil {
		util.RespondWithError(c, err)
		return 0, false
	}

	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		util.RespondUnauthorized(c, "authentication required")
		return 0, false
	}
	if !identity.CanActOn(userID) {
		util.RespondForbidden(c, "cannot act on another user's resource")
		return 0, false
	}

	return userID, true
}

// UploadAvatar accepts a multipart image upload and replaces the user's avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		util.RespondValidationError(c, "file", "file is required")
		return
	}

	result, err := h.avatars.Upload(c.Request.Context(), userID, file)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetAvatar returns presigned read URLs for the user's avatar variants
func (h *Handlers) GetAvatar(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	result, err := h.avatars.Get(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteAvatar removes the user's avatar objects and clears the reference
func (h *Handlers) DeleteAvatar(c *gin.Context) {
	userID, ok := targetUser(c)
	if !ok {
		return
	}

	result, err := h.avatars.Delete(c.Request.Context(), userID)
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

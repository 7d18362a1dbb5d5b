package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SergeySenin/user-service/internal/repository"
	"github.com/SergeySenin/user-service/internal/util"
)

// ListCountries returns all country reference records
func (h *Handlers) ListCountries(c *gin.Context) {
	countries, err := h.countries.ListCountries(c.Request.Context())
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// GetCountry returns one country by id
func (h *Handlers) GetCountry(c *gin.Context) {
	countryID, err := util.ParseID(c.Param("countryId"), "countryId")
	if err != nil {
		util.RespondWithError(c, err)
		return
	}

	country, err := h.countries.GetCountry(c.Request.Context(), countryID)
	if err != nil {
		if errors.Is(err, repository.ErrCountryNotFound) {
			util.RespondNotFound(c, "country")
			return
		}
		util.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, country)
}

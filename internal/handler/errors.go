package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/atelierhq/storefront_api/internal/utils"
)

// errorStatus maps service sentinels to HTTP status codes.
var errorStatus = []struct {
	err    error
	status int
}{
	{utils.ErrProductNotFound, http.StatusNotFound},
	{utils.ErrOrderNotFound, http.StatusNotFound},
	{utils.ErrInvalidProduct, http.StatusBadRequest},
	{utils.ErrEmptyOrder, http.StatusBadRequest},
	{utils.ErrInvalidQuantity, http.StatusBadRequest},
	{utils.ErrMissingVariants, http.StatusUnprocessableEntity},
	{utils.ErrMissingAddons, http.StatusUnprocessableEntity},
	{utils.ErrInsufficientStock, http.StatusConflict},
	{utils.ErrInvalidStatusTransition, http.StatusConflict},
	{utils.ErrOrderAlreadyCancelled, http.StatusConflict},
	{utils.ErrInvalidCredentials, http.StatusUnauthorized},
	{utils.ErrAccountInactive, http.StatusForbidden},
}

// respondError writes err in the response envelope. Known sentinels keep
// their code and the wrapped message; anything else is logged and hidden
// behind fallback.
func respondError(c *gin.Context, err error, fallback string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			utils.ErrorFrom(c, e.status, e.err, err.Error())
			return
		}
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}

// pageParams reads page and limit query parameters with the list defaults.
func pageParams(c *gin.Context) (page, limit int) {
	page, limit = 1, 50
	if v, ok := queryInt(c, "page"); ok && v > 0 {
		page = v
	}
	if v, ok := queryInt(c, "limit"); ok && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

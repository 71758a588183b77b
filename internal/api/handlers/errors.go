package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/procurehq/replenish/internal/domain"
)

// respondError maps structured error kinds onto HTTP statuses and emits
// the error contract body: {"error": kind, "message": text}.
func respondError(c *gin.Context, err error) {
	e := domain.AsError(err, domain.ErrForecastFailed)

	log.Error().
		Str("kind", string(e.Kind)).
		Str("path", c.Request.URL.Path).
		Err(err).
		Msg("request failed")

	c.JSON(statusForKind(e.Kind), e)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.ErrItemNotFound:
		return http.StatusNotFound
	case domain.ErrInsufficientHistory, domain.ErrSchemaInvalid, domain.ErrEmptyFile:
		return http.StatusUnprocessableEntity
	case domain.ErrUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case domain.ErrInventoryUnavailable:
		return http.StatusServiceUnavailable
	case domain.ErrExternalServiceFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rentadmin/internal/app/commands"
	couponapp "rentadmin/internal/app/handlers/coupons"
	"rentadmin/internal/app/middleware"
	"rentadmin/internal/app/queries"
	domaincoupons "rentadmin/internal/domain/coupons"
	domainpricing "rentadmin/internal/domain/pricing"
	domainrooms "rentadmin/internal/domain/rooms"
	"rentadmin/internal/domain/shared/daterange"
)

// errorResponder maps engine and bus errors onto HTTP statuses. Integrity and unexpected errors
// get a generic body; the detail stays in the log.
type errorResponder struct {
	Logger *slog.Logger
	Scope  string
}

func (r errorResponder) handleError(c *gin.Context, err error) {
	var rejected *couponapp.RejectedError
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "errors": rejected.Errors})
	case errors.Is(err, middleware.ErrTenantForbidden):
		r.respondWithError(c, http.StatusForbidden, err)
	case isInputError(err):
		r.respondWithError(c, http.StatusBadRequest, err)
	case errors.Is(err, domainrooms.ErrRoomNotFound):
		r.respondWithError(c, http.StatusNotFound, domainrooms.ErrRoomNotFound)
	case errors.Is(err, domaincoupons.ErrCouponExhausted),
		errors.Is(err, domaincoupons.ErrCustomerLimitReached):
		r.respondWithError(c, http.StatusConflict, err)
	case errors.Is(err, domaincoupons.ErrCouponNotFound):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"valid": false, "errors": []string{domainpricing.MessageInvalidCode}})
	default:
		r.respondInternal(c, err)
	}
}

func (r errorResponder) respondWithError(c *gin.Context, status int, err error) {
	if r.Logger != nil {
		r.Logger.Debug(r.Scope+" request rejected", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (r errorResponder) respondInternal(c *gin.Context, err error) {
	if r.Logger != nil {
		fields := []any{"error", err, "path", c.FullPath(), "request_id", c.GetString("request_id")}
		if errors.Is(err, domainpricing.ErrDataIntegrity) {
			fields = append(fields, "integrity", true)
		}
		r.Logger.Error(r.Scope+" request failed", fields...)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func isInputError(err error) bool {
	switch {
	case errors.Is(err, domainpricing.ErrInvalidInput),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, daterange.ErrMissingDate),
		errors.Is(err, daterange.ErrInvalidFormat),
		errors.Is(err, queries.ErrInvalidQuery),
		errors.Is(err, commands.ErrInvalidCommand):
		return true
	}
	return false
}

package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentadmin/internal/app/commands"
	"rentadmin/internal/app/dto"
	couponapp "rentadmin/internal/app/handlers/coupons"
	pricingapp "rentadmin/internal/app/handlers/pricing"
	"rentadmin/internal/app/queries"
	"rentadmin/internal/domain/shared/daterange"
)

type CouponHandler struct {
	Queries  queries.Bus
	Commands commands.Bus
	Logger   *slog.Logger
}

type validateCouponRequest struct {
	Code          string      `json:"code"`
	RoomID        string      `json:"room_id"`
	RoomIDs       []string    `json:"room_ids"`
	CustomerEmail string      `json:"customer_email"`
	Subtotal      *dto.Amount `json:"subtotal"`
	Nights        *int        `json:"nights"`
	CheckIn       string      `json:"check_in"`
}

type redeemCouponRequest struct {
	validateCouponRequest
	BookingID string `json:"booking_id"`
}

// Validate answers whether a code is usable for the described booking. Rule failures are a normal
// 200 response with valid=false.
func (h CouponHandler) Validate(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := req.toQuery(c.Param("tenant"))
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	result, err := queries.Ask[pricingapp.ValidateCouponQuery, dto.CouponValidation](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Redeem consumes one use of a coupon for a booking being committed. It re-validates and
// increments atomically; replays with the same Idempotency-Key return the first result.
func (h CouponHandler) Redeem(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req redeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := req.toQuery(c.Param("tenant"))
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	cmd := couponapp.RedeemCouponCommand{
		ValidateCouponQuery: q,
		BookingID:           req.BookingID,
		IdempotencyKeyV:     c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[couponapp.RedeemCouponCommand, *dto.CouponRedemption](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CouponHandler) responder() errorResponder {
	return errorResponder{Logger: h.Logger, Scope: "coupons"}
}

func (r validateCouponRequest) toQuery(tenant string) (pricingapp.ValidateCouponQuery, error) {
	q := pricingapp.ValidateCouponQuery{
		TenantID:      tenant,
		Code:          r.Code,
		CustomerEmail: r.CustomerEmail,
		Nights:        r.Nights,
	}
	if r.RoomID != "" {
		q.RoomIDs = append(q.RoomIDs, r.RoomID)
	}
	q.RoomIDs = append(q.RoomIDs, r.RoomIDs...)
	if r.Subtotal != nil {
		subtotal := r.Subtotal.Decimal
		q.Subtotal = &subtotal
	}
	if r.CheckIn != "" {
		checkIn, err := parseCheckIn(r.CheckIn)
		if err != nil {
			return pricingapp.ValidateCouponQuery{}, err
		}
		q.CheckIn = &checkIn
	}
	return q, nil
}

// parseCheckIn accepts a calendar day or an RFC 3339 timestamp.
func parseCheckIn(raw string) (time.Time, error) {
	if t, err := daterange.ParseDay(raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, daterange.ErrInvalidFormat
	}
	return daterange.Day(t), nil
}

var _ CouponHTTP = CouponHandler{}

package ginserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentadmin/internal/app/dto"
	pricingapp "rentadmin/internal/app/handlers/pricing"
	"rentadmin/internal/app/queries"
	domainpricing "rentadmin/internal/domain/pricing"
	"rentadmin/internal/domain/shared/daterange"
)

type PricingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Quote serves the night-by-night price of a stay given as start_date/end_date query parameters.
func (h PricingHandler) Quote(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	start, end, err := parseStay(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	q := pricingapp.QuotePriceQuery{
		TenantID:  c.Param("tenant"),
		RoomID:    c.Param("room"),
		StartDate: start,
		EndDate:   end,
	}
	result, err := queries.Ask[pricingapp.QuotePriceQuery, dto.PriceQuote](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type previewRequest struct {
	StartDate string                `json:"start_date"`
	EndDate   string                `json:"end_date"`
	Overrides map[string]dto.Amount `json:"overrides"`
}

// Preview prices a stay with admin per-night overrides layered on the resolved prices.
func (h PricingHandler) Preview(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := parseStay(req.StartDate, req.EndDate)
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	q := pricingapp.QuoteWithOverridesQuery{
		TenantID:  c.Param("tenant"),
		RoomID:    c.Param("room"),
		StartDate: start,
		EndDate:   end,
	}
	if len(req.Overrides) > 0 {
		q.Overrides = make(map[string]decimal.Decimal, len(req.Overrides))
		for day, amount := range req.Overrides {
			q.Overrides[day] = amount.Decimal
		}
	}
	result, err := queries.Ask[pricingapp.QuoteWithOverridesQuery, dto.PriceQuote](c.Request.Context(), h.Queries, q)
	if err != nil {
		h.responder().handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) responder() errorResponder {
	return errorResponder{Logger: h.Logger, Scope: "pricing"}
}

func parseStay(rawStart, rawEnd string) (start, end time.Time, err error) {
	if rawStart == "" || rawEnd == "" {
		return start, end, fmt.Errorf("%w: start_date and end_date are required", daterange.ErrMissingDate)
	}
	if start, err = daterange.ParseDay(rawStart); err != nil {
		return start, end, fmt.Errorf("%w: start_date", err)
	}
	if end, err = daterange.ParseDay(rawEnd); err != nil {
		return start, end, fmt.Errorf("%w: end_date", err)
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("%w: %w", domainpricing.ErrInvalidInput, daterange.ErrInvalidRange)
	}
	return start, end, nil
}

var _ PricingHTTP = PricingHandler{}

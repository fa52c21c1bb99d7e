package handler

import (
	"context"
	"net/http"

	"crm-server/internal/apierrors"
	"crm-server/internal/dispatch"
	"crm-server/internal/observability"

	"github.com/gin-gonic/gin"
)

// Ticker runs one dispatch tick
type Ticker interface {
	Tick(ctx context.Context) (dispatch.TickResult, error)
}

type Handler struct {
	ticker Ticker
	logger *observability.Logger
}

func New(ticker Ticker, logger *observability.Logger) Handler {
	return Handler{ticker: ticker, logger: logger}
}

// HandleTick runs a single dispatch tick and reports its counters
func (h *Handler) HandleTick(c *gin.Context) {
	result, err := h.ticker.Tick(c.Request.Context())
	if err != nil {
		apierrors.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

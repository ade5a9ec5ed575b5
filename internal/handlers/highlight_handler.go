package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/neighborhq/backend/internal/highlight"
	"github.com/neighborhq/backend/internal/registry"
)

// HighlightHandler exposes the highlight dispatcher: notification clicks
// post a highlight request, and clients poll pulse liveness while the
// emphasis animation runs.
type HighlightHandler struct {
	dispatcher *highlight.Dispatcher
	registry   *registry.Registry
}

func NewHighlightHandler(dispatcher *highlight.Dispatcher, reg *registry.Registry) *HighlightHandler {
	return &HighlightHandler{dispatcher: dispatcher, registry: reg}
}

// RegisterHighlightRoutes registers highlight routes
func (h *HighlightHandler) RegisterHighlightRoutes(g *echo.Group) {
	g.POST("/highlight", h.Trigger)
	g.GET("/highlight/:type/:id", h.Pulse)
}

type highlightRequest struct {
	Type string `json:"type" validate:"required"`
	ID   string `json:"id" validate:"required"`
}

// Trigger dispatches one highlight request, typically from a notification
// click. A miss is a normal outcome (the item may live on another tab), so
// the response reports found=false rather than an error.
func (h *HighlightHandler) Trigger(c echo.Context) error {
	var req highlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// A type outside the registry is a malformed request, not a miss.
	if _, ok := h.registry.TypeForHighlight(req.Type); !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown highlight type")
	}

	found := h.dispatcher.Dispatch(highlight.Request{Type: req.Type, ID: req.ID})

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"found": found},
	})
}

// Pulse reports whether the item's emphasis window is still live.
func (h *HighlightHandler) Pulse(c echo.Context) error {
	active := h.dispatcher.Active(c.Param("type"), c.Param("id"))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"active": active},
	})
}

// consumeDeepLink handles the URL-based path: a page request carrying
// highlight/type query params synthesizes one highlight sequence after the
// settle delay, then redirects to the same URL with both params stripped
// (replace semantics, so history stays clean). Returns true when the
// request was consumed and the redirect written.
func consumeDeepLink(c echo.Context, dispatcher *highlight.Dispatcher, moduleType string) (bool, error) {
	id := c.QueryParam("highlight")
	requestedType := c.QueryParam("type")
	if id == "" && requestedType == "" {
		return false, nil
	}

	if id != "" && requestedType == moduleType {
		dispatcher.DispatchAfter(highlight.Request{Type: moduleType, ID: id}, highlight.SettleDelay)
	}

	query := c.Request().URL.Query()
	query.Del("highlight")
	query.Del("type")
	target := c.Request().URL.Path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return true, c.Redirect(http.StatusSeeOther, target)
}

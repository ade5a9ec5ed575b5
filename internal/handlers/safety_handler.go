package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/events"
	"github.com/neighborhq/backend/internal/highlight"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
	"github.com/neighborhq/backend/internal/repositories"
)

// SafetyHandler handles safety update HTTP requests.
type SafetyHandler struct {
	safetyRepository       repositories.SafetyRepository
	notificationRepository repositories.NotificationRepository
	profileRepository      repositories.ProfileRepository
	bus                    *events.Bus
	dispatcher             *highlight.Dispatcher
	index                  *highlight.MemoryIndex
	unregister             func()
}

func NewSafetyHandler(
	safetyRepo repositories.SafetyRepository,
	notifRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	bus *events.Bus,
	dispatcher *highlight.Dispatcher,
) *SafetyHandler {
	index := highlight.NewMemoryIndex()
	return &SafetyHandler{
		safetyRepository:       safetyRepo,
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
		bus:                    bus,
		dispatcher:             dispatcher,
		index:                  index,
		unregister:             dispatcher.Register("safety", index),
	}
}

// Close releases the module's highlight registration.
func (h *SafetyHandler) Close() {
	h.unregister()
}

// RegisterSafetyRoutes registers safety update routes
func (h *SafetyHandler) RegisterSafetyRoutes(g *echo.Group) {
	g.GET("/safety", h.ListUpdates)
	g.POST("/safety", h.CreateUpdate)
	g.PUT("/safety/:id/resolve", h.ResolveUpdate)
}

// ListUpdates returns the neighborhood's safety updates. Also the deep-link
// landing for ?highlight=<id>&type=safety URLs.
func (h *SafetyHandler) ListUpdates(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if consumed, err := consumeDeepLink(c, h.dispatcher, "safety"); consumed {
		return err
	}

	updates, err := h.safetyRepository.List(getNeighborhoodIDFromContext(c), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, update := range updates {
		h.index.Add(update.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"updates": updates},
	})
}

// CreateUpdate creates a safety update. Fan-out still writes rows for every
// member; the feed's author-only policy for this type is applied at read
// time by the fetcher.
func (h *SafetyHandler) CreateUpdate(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateSafetyUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	update := &models.SafetyUpdate{
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		AuthorID:       currentUserID,
		Title:          req.Title,
		Description:    req.Description,
		Type:           req.Type,
	}
	if err := h.safetyRepository.Create(update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.index.Add(update.ID)

	notifyNeighborhood(h.notificationRepository, h.profileRepository, h.bus,
		currentUserID, update.NeighborhoodID,
		registry.TypeSafetyUpdates, update.ID, "Safety update: "+update.Title, "safety_created")
	h.bus.Emit(events.SafetyUpdated)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"update": update}})
}

// ResolveUpdate marks an update resolved, scoped to its author.
func (h *SafetyHandler) ResolveUpdate(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.safetyRepository.Resolve(c.Param("id"), currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Safety update not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.bus.Emit(events.SafetyUpdated)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

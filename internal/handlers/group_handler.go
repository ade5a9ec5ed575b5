package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/neighborhq/backend/internal/events"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
	"github.com/neighborhq/backend/internal/repositories"
)

// GroupHandler handles group update HTTP requests. Group updates render
// inline in the feed and carry no deep-link target, so there is no
// highlight index here.
type GroupHandler struct {
	groupRepository        repositories.GroupRepository
	notificationRepository repositories.NotificationRepository
	profileRepository      repositories.ProfileRepository
	bus                    *events.Bus
}

func NewGroupHandler(
	groupRepo repositories.GroupRepository,
	notifRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	bus *events.Bus,
) *GroupHandler {
	return &GroupHandler{
		groupRepository:        groupRepo,
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
		bus:                    bus,
	}
}

// RegisterGroupRoutes registers group update routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.GET("/groups/updates", h.ListUpdates)
	g.POST("/groups/updates", h.CreateUpdate)
}

// ListUpdates returns group updates, optionally filtered by group name.
func (h *GroupHandler) ListUpdates(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	updates, err := h.groupRepository.ListUpdates(getNeighborhoodIDFromContext(c), c.QueryParam("group"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"updates": updates}})
}

// CreateUpdate posts an update into a neighborhood group.
func (h *GroupHandler) CreateUpdate(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateGroupUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	update := &models.GroupUpdate{
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		GroupName:      req.GroupName,
		AuthorID:       currentUserID,
		Title:          req.Title,
		Content:        req.Content,
	}
	if err := h.groupRepository.CreateUpdate(update); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	notifyNeighborhood(h.notificationRepository, h.profileRepository, h.bus,
		currentUserID, update.NeighborhoodID,
		registry.TypeGroupUpdates, update.ID, update.GroupName+": "+update.Title, "group_update")
	h.bus.Emit(events.GroupUpdated)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"update": update}})
}

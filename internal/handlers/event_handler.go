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

// EventHandler handles neighborhood event HTTP requests. It owns the events
// module's item index so deep-link highlights can find mounted items.
type EventHandler struct {
	eventRepository        repositories.EventRepository
	notificationRepository repositories.NotificationRepository
	profileRepository      repositories.ProfileRepository
	bus                    *events.Bus
	dispatcher             *highlight.Dispatcher
	index                  *highlight.MemoryIndex
	unregister             func()
}

func NewEventHandler(
	eventRepo repositories.EventRepository,
	notifRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	bus *events.Bus,
	dispatcher *highlight.Dispatcher,
) *EventHandler {
	index := highlight.NewMemoryIndex()
	return &EventHandler{
		eventRepository:        eventRepo,
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
		bus:                    bus,
		dispatcher:             dispatcher,
		index:                  index,
		unregister:             dispatcher.Register("event", index),
	}
}

// Close releases the module's highlight registration.
func (h *EventHandler) Close() {
	h.unregister()
}

// RegisterEventRoutes registers event routes
func (h *EventHandler) RegisterEventRoutes(g *echo.Group) {
	g.GET("/events", h.ListEvents)
	g.POST("/events", h.CreateEvent)
	g.DELETE("/events/:id", h.DeleteEvent)
	g.POST("/events/:id/rsvp", h.RSVP)
}

// ListEvents returns the neighborhood's events. This is also the deep-link
// landing for ?highlight=<id>&type=event URLs.
func (h *EventHandler) ListEvents(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if consumed, err := consumeDeepLink(c, h.dispatcher, "event"); consumed {
		return err
	}

	eventList, err := h.eventRepository.List(getNeighborhoodIDFromContext(c), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, event := range eventList {
		h.index.Add(event.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"events": eventList},
	})
}

// CreateEvent creates an event and fans a notification out to the
// neighborhood.
func (h *EventHandler) CreateEvent(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event := &models.Event{
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		AuthorID:       currentUserID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
	}
	if err := h.eventRepository.Create(event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.index.Add(event.ID)

	notifyNeighborhood(h.notificationRepository, h.profileRepository, h.bus,
		currentUserID, event.NeighborhoodID,
		registry.TypeEvents, event.ID, "New event: "+event.Title, "event_created")
	h.bus.Emit(events.EventSubmitted)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"event": event}})
}

// DeleteEvent removes an event the current user authored. Notification rows
// referencing it go dangling and drop out of feeds via the fetcher join.
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	eventID := c.Param("id")
	if err := h.eventRepository.Delete(eventID, currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.index.Remove(eventID)
	h.bus.Emit(events.EventDeleted)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// RSVP records attendance intent and notifies the event author.
func (h *EventHandler) RSVP(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RSVPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.eventRepository.GetByID(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Event not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	rsvp := &models.EventRSVP{
		EventID: event.ID,
		UserID:  currentUserID,
		Status:  req.Status,
	}
	if err := h.eventRepository.UpsertRSVP(rsvp); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if event.AuthorID != currentUserID {
		notifyUser(h.notificationRepository, h.bus,
			event.AuthorID, currentUserID,
			registry.TypeEvents, event.ID, "RSVP to "+event.Title, "event_rsvp")
	}
	h.bus.Emit(events.EventRSVPUpdated)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"rsvp": rsvp}})
}

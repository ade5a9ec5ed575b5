package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/neighborhq/backend/internal/cache"
	"github.com/neighborhq/backend/internal/feed"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/repositories"
)

// FeedCache is the slice of the query cache layer the handlers drive.
// *cache.QueryCache satisfies it; tests substitute a fake.
type FeedCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	InvalidateUser(ctx context.Context, userID uint)
}

// NotificationHandler serves the unified notification feed and the narrow
// read/archive mutations.
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	aggregator             *feed.Aggregator
	queryCache             FeedCache
}

func NewNotificationHandler(notifRepo repositories.NotificationRepository, aggregator *feed.Aggregator, queryCache FeedCache) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		aggregator:             aggregator,
		queryCache:             queryCache,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/popover", h.GetPopoverFeed)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.PUT("/notifications/:id/archive", h.Archive)
	g.PUT("/notifications/:id/unarchive", h.Unarchive)
}

// GetNotifications returns the paginated full notifications page, enriched
// with actor profiles and derived display fields.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	neighborhoodID := getNeighborhoodIDFromContext(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	showArchived := c.QueryParam("archived") == "true"

	type pageResult struct {
		Notifications []models.EnhancedNotification `json:"notifications"`
		Total         int64                         `json:"total"`
	}

	cacheKey := cache.FeedKey(currentUserID, showArchived, page, limit)
	var result pageResult
	if !h.queryCache.Get(c.Request().Context(), cacheKey, &result) {
		notifications, total, err := h.notificationRepository.GetPage(currentUserID, neighborhoodID, showArchived, page, limit)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		result = pageResult{
			Notifications: h.aggregator.Enhance(c.Request().Context(), notifications),
			Total:         total,
		}
		h.queryCache.Set(c.Request().Context(), cacheKey, result)
	}

	totalPages := int(math.Ceil(float64(result.Total) / float64(limit)))

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": result.Notifications,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      result.Total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetPopoverFeed returns the capped per-type aggregation backing the bell
// popover. Partial source failures degrade to whatever loaded; only the
// all-sources-failed case is flagged so the client can tell it apart from a
// genuinely empty feed.
func (h *NotificationHandler) GetPopoverFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	showArchived := c.QueryParam("archived") == "true"

	query := feed.Query{
		UserID:         currentUserID,
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		ShowArchived:   showArchived,
		Limit:          feed.PopoverLimit,
	}

	cacheKey := cache.PopoverKey(currentUserID, showArchived)
	var notifications []models.EnhancedNotification
	degraded := false
	if !h.queryCache.Get(c.Request().Context(), cacheKey, &notifications) {
		var err error
		notifications, err = h.aggregator.Aggregate(c.Request().Context(), query)
		if errors.Is(err, feed.ErrAllSourcesFailed) {
			degraded = true
		}
		if !degraded {
			h.queryCache.Set(c.Request().Context(), cacheKey, notifications)
		}
	}
	if notifications == nil {
		notifications = []models.EnhancedNotification{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"degraded": degraded,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.notificationRepository.GetUnreadCount(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one notification as read, scoped to the current user.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	return h.mutate(c, h.notificationRepository.MarkAsRead)
}

// Archive moves one notification into the archived scope.
func (h *NotificationHandler) Archive(c echo.Context) error {
	return h.mutate(c, h.notificationRepository.Archive)
}

// Unarchive moves one notification back into the active scope.
func (h *NotificationHandler) Unarchive(c echo.Context) error {
	return h.mutate(c, h.notificationRepository.Unarchive)
}

func (h *NotificationHandler) mutate(c echo.Context, op func(id string, userID uint) error) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifID := c.Param("id")
	if notifID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := op(notifID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.queryCache.InvalidateUser(c.Request().Context(), currentUserID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.notificationRepository.MarkAllAsRead(currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.queryCache.InvalidateUser(c.Request().Context(), currentUserID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neighborhq/backend/internal/events"
)

// StreamHandler relays bus signals to clients over server-sent events so
// they can invalidate their own query caches. Signals carry no payload;
// the event name is the whole message.
type StreamHandler struct {
	bus *events.Bus
}

func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{bus: bus}
}

// RegisterStreamRoutes registers the SSE endpoint
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/stream", h.Stream)
}

// Stream subscribes the connection to every bus signal and relays them
// until the client disconnects. Subscriptions are released on teardown.
func (h *StreamHandler) Stream(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	// Buffered so a slow client drops signals instead of blocking emitters.
	signals := make(chan events.Signal, 16)
	unsubscribes := make([]func(), 0, len(events.AllSignals()))
	for _, signal := range events.AllSignals() {
		unsubscribes = append(unsubscribes, h.bus.Subscribe(signal, func(s events.Signal) {
			select {
			case signals <- s:
			default:
			}
		}))
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}()

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case signal := <-signals:
			if _, err := fmt.Fprintf(response, "event: %s\ndata: {}\n\n", signal); err != nil {
				return nil
			}
			response.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(response, ": ping\n\n"); err != nil {
				return nil
			}
			response.Flush()
		}
	}
}

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

// ExchangeHandler handles the skills and goods marketplace HTTP requests.
// The two modules share a handler the way they share a repository; each
// keeps its own highlight index.
type ExchangeHandler struct {
	exchangeRepository     repositories.ExchangeRepository
	notificationRepository repositories.NotificationRepository
	profileRepository      repositories.ProfileRepository
	bus                    *events.Bus
	dispatcher             *highlight.Dispatcher
	skillsIndex            *highlight.MemoryIndex
	goodsIndex             *highlight.MemoryIndex
	unregisterSkills       func()
	unregisterGoods        func()
}

func NewExchangeHandler(
	exchangeRepo repositories.ExchangeRepository,
	notifRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	bus *events.Bus,
	dispatcher *highlight.Dispatcher,
) *ExchangeHandler {
	skillsIndex := highlight.NewMemoryIndex()
	goodsIndex := highlight.NewMemoryIndex()
	return &ExchangeHandler{
		exchangeRepository:     exchangeRepo,
		notificationRepository: notifRepo,
		profileRepository:      profileRepo,
		bus:                    bus,
		dispatcher:             dispatcher,
		skillsIndex:            skillsIndex,
		goodsIndex:             goodsIndex,
		unregisterSkills:       dispatcher.Register("skills", skillsIndex),
		unregisterGoods:        dispatcher.Register("goods", goodsIndex),
	}
}

// Close releases both module highlight registrations.
func (h *ExchangeHandler) Close() {
	h.unregisterSkills()
	h.unregisterGoods()
}

// RegisterExchangeRoutes registers skills and goods routes
func (h *ExchangeHandler) RegisterExchangeRoutes(g *echo.Group) {
	g.GET("/skills", h.ListSkills)
	g.POST("/skills", h.CreateSkill)
	g.DELETE("/skills/:id", h.DeleteSkill)
	g.GET("/goods", h.ListGoods)
	g.POST("/goods", h.CreateGood)
	g.DELETE("/goods/:id", h.DeleteGood)
}

// ListSkills returns the neighborhood's skill offers and requests. Also the
// deep-link landing for ?highlight=<id>&type=skills URLs.
func (h *ExchangeHandler) ListSkills(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if consumed, err := consumeDeepLink(c, h.dispatcher, "skills"); consumed {
		return err
	}

	items, err := h.exchangeRepository.ListSkills(getNeighborhoodIDFromContext(c), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, item := range items {
		h.skillsIndex.Add(item.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"items": items}})
}

// ListGoods returns the neighborhood's goods and freebies. Also the
// deep-link landing for ?highlight=<id>&type=goods URLs.
func (h *ExchangeHandler) ListGoods(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if consumed, err := consumeDeepLink(c, h.dispatcher, "goods"); consumed {
		return err
	}

	items, err := h.exchangeRepository.ListGoods(getNeighborhoodIDFromContext(c), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for _, item := range items {
		h.goodsIndex.Add(item.ID)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"items": items}})
}

// CreateSkill posts a skill offer or request.
func (h *ExchangeHandler) CreateSkill(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req, err := bindExchangeRequest(c)
	if err != nil {
		return err
	}

	item := &models.SkillsExchange{
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		AuthorID:       currentUserID,
		Title:          req.Title,
		Description:    req.Description,
		RequestType:    req.RequestType,
		Category:       req.Category,
	}
	if err := h.exchangeRepository.CreateSkill(item); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.skillsIndex.Add(item.ID)

	notifyNeighborhood(h.notificationRepository, h.profileRepository, h.bus,
		currentUserID, item.NeighborhoodID,
		registry.TypeSkillsExchange, item.ID, "Skill shared: "+item.Title, "skills_created")
	h.bus.Emit(events.SkillsUpdated)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"item": item}})
}

// CreateGood posts an item offer or request.
func (h *ExchangeHandler) CreateGood(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req, err := bindExchangeRequest(c)
	if err != nil {
		return err
	}

	item := &models.GoodsExchange{
		NeighborhoodID: getNeighborhoodIDFromContext(c),
		AuthorID:       currentUserID,
		Title:          req.Title,
		Description:    req.Description,
		RequestType:    req.RequestType,
		Condition:      req.Condition,
		ImageURL:       req.ImageURL,
	}
	if err := h.exchangeRepository.CreateGood(item); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.goodsIndex.Add(item.ID)

	notifyNeighborhood(h.notificationRepository, h.profileRepository, h.bus,
		currentUserID, item.NeighborhoodID,
		registry.TypeGoodsExchange, item.ID, "Item shared: "+item.Title, "goods_created")
	h.bus.Emit(events.GoodsUpdated)

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"item": item}})
}

// DeleteSkill removes a skill post the current user authored.
func (h *ExchangeHandler) DeleteSkill(c echo.Context) error {
	return h.deleteItem(c, h.exchangeRepository.DeleteSkill, h.skillsIndex, events.SkillsUpdated)
}

// DeleteGood removes a goods post the current user authored.
func (h *ExchangeHandler) DeleteGood(c echo.Context) error {
	return h.deleteItem(c, h.exchangeRepository.DeleteGood, h.goodsIndex, events.GoodsUpdated)
}

func (h *ExchangeHandler) deleteItem(c echo.Context, op func(id string, authorID uint) error, index *highlight.MemoryIndex, signal events.Signal) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	itemID := c.Param("id")
	if err := op(itemID, currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Item not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	index.Remove(itemID)
	h.bus.Emit(signal)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"success": true}})
}

func bindExchangeRequest(c echo.Context) (*models.CreateExchangeRequest, error) {
	var req models.CreateExchangeRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return &req, nil
}

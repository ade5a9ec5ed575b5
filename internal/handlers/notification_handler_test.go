package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/feed"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
	"github.com/neighborhq/backend/internal/repositories"
)

type fakeFeedCache struct {
	store       map[string][]byte
	sets        []string
	invalidated []uint
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{store: make(map[string][]byte)}
}

func (f *fakeFeedCache) Get(_ context.Context, key string, dest interface{}) bool {
	raw, ok := f.store[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (f *fakeFeedCache) Set(_ context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	f.store[key] = raw
	f.sets = append(f.sets, key)
}

func (f *fakeFeedCache) InvalidateUser(_ context.Context, userID uint) {
	f.invalidated = append(f.invalidated, userID)
}

type failingFetcher struct {
	contentType string
}

func (f failingFetcher) ContentType() string { return f.contentType }

func (f failingFetcher) Fetch(context.Context, feed.Query) ([]models.Notification, error) {
	return nil, fmt.Errorf("%s source down", f.contentType)
}

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	db, err := gorm.Open(dsn, &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Neighborhood{},
		&models.Profile{},
		&models.Notification{},
		&models.Event{},
		&models.EventRSVP{},
		&models.SafetyUpdate{},
		&models.SkillsExchange{},
		&models.GoodsExchange{},
		&models.GroupUpdate{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedEventNotification(t *testing.T, db *gorm.DB, userID, neighborhoodID uint, createdAt time.Time) models.Notification {
	t.Helper()
	event := models.Event{
		NeighborhoodID: neighborhoodID,
		AuthorID:       99,
		Title:          "Tool library open house",
		StartTime:      createdAt.Add(24 * time.Hour),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	notification := models.Notification{
		UserID:      userID,
		Title:       "New event: Tool library open house",
		ContentType: registry.TypeEvents,
		ContentID:   event.ID,
		CreatedAt:   createdAt,
	}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func newNotificationHandler(t *testing.T, db *gorm.DB, qc FeedCache) *NotificationHandler {
	t.Helper()
	reg := registry.Default()
	notifRepo := repositories.NewPostgresNotificationRepository(db, reg)
	profileRepo := repositories.NewPostgresProfileRepository(db)
	fetchers := repositories.NewContentFetchers(db, reg)
	aggregator := feed.NewAggregator(fetchers, profileRepo, reg, zap.NewNop())
	return NewNotificationHandler(notifRepo, aggregator, qc)
}

func TestGetNotificationsEnvelopeAndCaching(t *testing.T) {
	db := newHandlerTestDB(t)
	qc := newFakeFeedCache()
	h := newNotificationHandler(t, db, qc)

	seedEventNotification(t, db, 1, 1, time.Now().Add(-time.Hour))

	c, rec := newAuthedContext(t, http.MethodGet, "/notifications?page=1&limit=20", "")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []models.EnhancedNotification `json:"notifications"`
		} `json:"data"`
		Meta struct {
			CurrentPage int   `json:"currentPage"`
			TotalPages  int   `json:"totalPages"`
			TotalItems  int64 `json:"totalItems"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Fatal("success must be true")
	}
	if len(body.Data.Notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(body.Data.Notifications))
	}
	if body.Meta.TotalItems != 1 || body.Meta.CurrentPage != 1 || body.Meta.TotalPages != 1 {
		t.Fatalf("unexpected meta: %+v", body.Meta)
	}
	if len(qc.sets) != 1 {
		t.Fatalf("cache sets = %d, want 1", len(qc.sets))
	}
}

func TestGetNotificationsServedFromCache(t *testing.T) {
	db := newHandlerTestDB(t)
	qc := newFakeFeedCache()
	h := newNotificationHandler(t, db, qc)

	// Warm the cache, then seed a second row the cached page cannot know about.
	seedEventNotification(t, db, 1, 1, time.Now().Add(-time.Hour))
	c, _ := newAuthedContext(t, http.MethodGet, "/notifications?page=1&limit=20", "")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("warm: %v", err)
	}
	seedEventNotification(t, db, 1, 1, time.Now())

	c, rec := newAuthedContext(t, http.MethodGet, "/notifications?page=1&limit=20", "")
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}

	var body struct {
		Data struct {
			Notifications []models.EnhancedNotification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Notifications) != 1 {
		t.Fatalf("got %d notifications, want the 1 cached row", len(body.Data.Notifications))
	}
	if len(qc.sets) != 1 {
		t.Fatalf("cache sets = %d, want 1 (hit must not rewrite)", len(qc.sets))
	}
}

func TestMarkAsReadInvalidatesUserCache(t *testing.T) {
	db := newHandlerTestDB(t)
	qc := newFakeFeedCache()
	h := newNotificationHandler(t, db, qc)

	n := seedEventNotification(t, db, 1, 1, time.Now().Add(-time.Hour))

	c, rec := newAuthedContext(t, http.MethodPut, "/notifications/"+n.ID+"/read", "")
	c.SetParamNames("id")
	c.SetParamValues(n.ID)
	if err := h.MarkAsRead(c); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(qc.invalidated) != 1 || qc.invalidated[0] != 1 {
		t.Fatalf("invalidations = %v, want [1]", qc.invalidated)
	}

	var got models.Notification
	if err := db.First(&got, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !got.IsRead {
		t.Fatal("notification must be read")
	}
}

func TestPopoverDegradedResultNotCached(t *testing.T) {
	db := newHandlerTestDB(t)
	qc := newFakeFeedCache()

	reg := registry.Default()
	notifRepo := repositories.NewPostgresNotificationRepository(db, reg)
	profileRepo := repositories.NewPostgresProfileRepository(db)
	aggregator := feed.NewAggregator(
		[]feed.Fetcher{failingFetcher{registry.TypeEvents}, failingFetcher{registry.TypeSafetyUpdates}},
		profileRepo, reg, zap.NewNop())
	h := NewNotificationHandler(notifRepo, aggregator, qc)

	c, rec := newAuthedContext(t, http.MethodGet, "/notifications/popover", "")
	if err := h.GetPopoverFeed(c); err != nil {
		t.Fatalf("GetPopoverFeed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded":true`) {
		t.Fatalf("body = %s, want degraded=true", rec.Body.String())
	}
	if len(qc.sets) != 0 {
		t.Fatal("degraded popover must not be cached")
	}
}

func TestPopoverHealthyFeedCachedAndCapped(t *testing.T) {
	db := newHandlerTestDB(t)
	qc := newFakeFeedCache()
	h := newNotificationHandler(t, db, qc)

	for i := 0; i < feed.PopoverLimit+3; i++ {
		seedEventNotification(t, db, 1, 1, time.Now().Add(-time.Duration(i)*time.Minute))
	}

	c, rec := newAuthedContext(t, http.MethodGet, "/notifications/popover", "")
	if err := h.GetPopoverFeed(c); err != nil {
		t.Fatalf("GetPopoverFeed: %v", err)
	}

	var body struct {
		Data struct {
			Notifications []models.EnhancedNotification `json:"notifications"`
		} `json:"data"`
		Meta struct {
			Degraded bool `json:"degraded"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Meta.Degraded {
		t.Fatal("healthy feed flagged degraded")
	}
	if len(body.Data.Notifications) != feed.PopoverLimit {
		t.Fatalf("got %d notifications, want %d", len(body.Data.Notifications), feed.PopoverLimit)
	}
	if len(qc.sets) != 1 {
		t.Fatalf("cache sets = %d, want 1", len(qc.sets))
	}
}

package repositories

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/feed"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
)

func fetcherFor(t *testing.T, fetchers []feed.Fetcher, contentType string) feed.Fetcher {
	t.Helper()
	for _, f := range fetchers {
		if f.ContentType() == contentType {
			return f
		}
	}
	t.Fatalf("no fetcher for %q", contentType)
	return nil
}

func seedSafetyWithNotification(t *testing.T, db *gorm.DB, recipientID, authorID, neighborhoodID uint, createdAt time.Time) models.Notification {
	t.Helper()
	update := models.SafetyUpdate{
		NeighborhoodID: neighborhoodID,
		AuthorID:       authorID,
		Title:          "Streetlight out",
		Type:           "observation",
	}
	if err := db.Create(&update).Error; err != nil {
		t.Fatalf("seed safety update: %v", err)
	}
	notification := models.Notification{
		UserID:      recipientID,
		Title:       "Safety update",
		ContentType: registry.TypeSafetyUpdates,
		ContentID:   update.ID,
		CreatedAt:   createdAt,
	}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func TestFetcherPerRegisteredType(t *testing.T) {
	db := newTestDB(t)
	reg := registry.Default()
	fetchers := NewContentFetchers(db, reg)
	if len(fetchers) != len(reg.AllContentTypes()) {
		t.Fatalf("expected %d fetchers, got %d", len(reg.AllContentTypes()), len(fetchers))
	}
	for i, contentType := range reg.AllContentTypes() {
		if fetchers[i].ContentType() != contentType {
			t.Fatalf("fetcher %d covers %q, want %q", i, fetchers[i].ContentType(), contentType)
		}
	}
}

func TestFetchFiltersArchivedAndNeighborhood(t *testing.T) {
	db := newTestDB(t)
	fetchers := NewContentFetchers(db, registry.Default())
	eventsFetcher := fetcherFor(t, fetchers, registry.TypeEvents)

	visible := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	seedEventWithNotification(t, db, 1, 55, time.Now()) // other neighborhood

	archived := seedEventWithNotification(t, db, 1, 10, time.Now())
	if err := db.Model(&models.Notification{}).Where("id = ?", archived.ID).Update("is_archived", true).Error; err != nil {
		t.Fatalf("archive: %v", err)
	}

	rows, err := eventsFetcher.Fetch(context.Background(), feed.Query{UserID: 1, NeighborhoodID: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != visible.ID {
		t.Fatalf("expected only the visible row, got %d", len(rows))
	}

	rows, err = eventsFetcher.Fetch(context.Background(), feed.Query{UserID: 1, NeighborhoodID: 10, ShowArchived: true})
	if err != nil {
		t.Fatalf("Fetch archived: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != archived.ID {
		t.Fatalf("expected only the archived row, got %d", len(rows))
	}
}

func TestFetchOrdersDescendingAndCaps(t *testing.T) {
	db := newTestDB(t)
	fetchers := NewContentFetchers(db, registry.Default())
	eventsFetcher := fetcherFor(t, fetchers, registry.TypeEvents)

	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 8; i++ {
		seedEventWithNotification(t, db, 1, 10, base.Add(time.Duration(i)*time.Hour))
	}

	rows, err := eventsFetcher.Fetch(context.Background(), feed.Query{UserID: 1, NeighborhoodID: 10, Limit: feed.PopoverLimit})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != feed.PopoverLimit {
		t.Fatalf("expected cap of %d, got %d", feed.PopoverLimit, len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].CreatedAt.Before(rows[i].CreatedAt) {
			t.Fatalf("rows not ordered descending at %d", i)
		}
	}
}

func TestFetchDropsDanglingReferences(t *testing.T) {
	db := newTestDB(t)
	fetchers := NewContentFetchers(db, registry.Default())
	eventsFetcher := fetcherFor(t, fetchers, registry.TypeEvents)

	dangling := seedEventWithNotification(t, db, 1, 10, time.Now())
	if err := db.Delete(&models.Event{}, "id = ?", dangling.ContentID).Error; err != nil {
		t.Fatalf("delete event: %v", err)
	}

	rows, err := eventsFetcher.Fetch(context.Background(), feed.Query{UserID: 1, NeighborhoodID: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected dangling reference filtered by the join, got %d", len(rows))
	}
}

func TestSafetyFetchRestrictsToAuthor(t *testing.T) {
	db := newTestDB(t)
	fetchers := NewContentFetchers(db, registry.Default())
	safetyFetcher := fetcherFor(t, fetchers, registry.TypeSafetyUpdates)

	// Recipient 1 gets notified about their own update and a neighbor's.
	mine := seedSafetyWithNotification(t, db, 1, 1, 10, time.Now().Add(-time.Hour))
	seedSafetyWithNotification(t, db, 1, 2, 10, time.Now())

	rows, err := safetyFetcher.Fetch(context.Background(), feed.Query{UserID: 1, NeighborhoodID: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != mine.ID {
		t.Fatalf("author-only policy must keep only own updates, got %d rows", len(rows))
	}
}

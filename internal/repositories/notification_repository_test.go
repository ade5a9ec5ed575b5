package repositories

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func seedEventWithNotification(t *testing.T, db *gorm.DB, userID, neighborhoodID uint, createdAt time.Time) models.Notification {
	t.Helper()
	event := models.Event{
		NeighborhoodID: neighborhoodID,
		AuthorID:       99,
		Title:          "Block party",
		StartTime:      createdAt.Add(48 * time.Hour),
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	notification := models.Notification{
		UserID:      userID,
		Title:       "New event: Block party",
		ContentType: registry.TypeEvents,
		ContentID:   event.ID,
		CreatedAt:   createdAt,
	}
	if err := db.Create(&notification).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return notification
}

func TestMarkAsReadScopedToIDAndUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	n1 := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	n2 := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-2*time.Hour))

	if err := repo.MarkAsRead(n1.ID, 1); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}

	var got models.Notification
	if err := db.First(&got, "id = ?", n1.ID).Error; err != nil {
		t.Fatalf("reload n1: %v", err)
	}
	if !got.IsRead {
		t.Fatal("n1 must be read")
	}
	if got.IsArchived {
		t.Fatal("mark-read must not alter is_archived")
	}

	// Fresh struct per reload: a populated primary key would leak into the
	// next query's conditions.
	var other models.Notification
	if err := db.First(&other, "id = ?", n2.ID).Error; err != nil {
		t.Fatalf("reload n2: %v", err)
	}
	if other.IsRead {
		t.Fatal("other notifications must stay unread")
	}

	// A different user must not be able to flip someone else's row.
	if err := repo.MarkAsRead(n2.ID, 77); err != nil {
		t.Fatalf("MarkAsRead other user: %v", err)
	}
	var again models.Notification
	if err := db.First(&again, "id = ?", n2.ID).Error; err != nil {
		t.Fatalf("reload n2: %v", err)
	}
	if again.IsRead {
		t.Fatal("mark-read must be scoped to the owning user")
	}
}

func TestArchiveAndUnarchive(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	n := seedEventWithNotification(t, db, 1, 10, time.Now())

	if err := repo.Archive(n.ID, 1); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	var got models.Notification
	db.First(&got, "id = ?", n.ID)
	if !got.IsArchived {
		t.Fatal("expected archived")
	}
	if got.IsRead {
		t.Fatal("archive must not alter is_read")
	}

	if err := repo.Unarchive(n.ID, 1); err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	var restored models.Notification
	db.First(&restored, "id = ?", n.ID)
	if restored.IsArchived {
		t.Fatal("expected unarchived")
	}
}

func TestUnreadCountSkipsReadAndArchived(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	n1 := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	seedEventWithNotification(t, db, 1, 10, time.Now().Add(-2*time.Hour))
	n3 := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-3*time.Hour))
	seedEventWithNotification(t, db, 2, 10, time.Now()) // other recipient

	if err := repo.MarkAsRead(n1.ID, 1); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	if err := repo.Archive(n3.ID, 1); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	count, err := repo.GetUnreadCount(1)
	if err != nil {
		t.Fatalf("GetUnreadCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	seedEventWithNotification(t, db, 1, 10, time.Now().Add(-2*time.Hour))
	other := seedEventWithNotification(t, db, 2, 10, time.Now())

	if err := repo.MarkAllAsRead(1); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}

	var unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", 1, false).Count(&unread)
	if unread != 0 {
		t.Fatalf("expected 0 unread for user 1, got %d", unread)
	}

	var got models.Notification
	db.First(&got, "id = ?", other.ID)
	if got.IsRead {
		t.Fatal("other users' notifications must stay unread")
	}
}

func TestGetPageOrdersAndScopes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	older := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-3*time.Hour))
	newer := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	seedEventWithNotification(t, db, 1, 55, time.Now()) // other neighborhood
	archived := seedEventWithNotification(t, db, 1, 10, time.Now())
	if err := repo.Archive(archived.ID, 1); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	notifications, total, err := repo.GetPage(1, 10, false, 1, 20)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(notifications))
	}
	if notifications[0].ID != newer.ID || notifications[1].ID != older.ID {
		t.Fatal("rows must be ordered by created_at descending")
	}

	// The archived scope sees only the archived row.
	notifications, total, err = repo.GetPage(1, 10, true, 1, 20)
	if err != nil {
		t.Fatalf("GetPage archived: %v", err)
	}
	if total != 1 || len(notifications) != 1 || notifications[0].ID != archived.ID {
		t.Fatalf("archived scope wrong: total=%d rows=%d", total, len(notifications))
	}
}

func TestGetPageFiltersDanglingContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresNotificationRepository(db, registry.Default())

	kept := seedEventWithNotification(t, db, 1, 10, time.Now().Add(-time.Hour))
	dangling := seedEventWithNotification(t, db, 1, 10, time.Now())
	if err := db.Delete(&models.Event{}, "id = ?", dangling.ContentID).Error; err != nil {
		t.Fatalf("delete event: %v", err)
	}

	notifications, total, err := repo.GetPage(1, 10, false, 1, 20)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if total != 1 || len(notifications) != 1 {
		t.Fatalf("expected dangling row filtered, total=%d rows=%d", total, len(notifications))
	}
	if notifications[0].ID != kept.ID {
		t.Fatal("surviving row should be the one with live content")
	}
}

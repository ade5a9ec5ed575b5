package handlers

import (
	"time"

	"go.uber.org/zap"

	"github.com/neighborhq/backend/internal/events"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/repositories"
	"github.com/neighborhq/backend/pkg/logger"
)

// notifyNeighborhood writes one notification row per neighborhood member
// (skipping the actor) and signals the bus. Fan-out failure is logged, not
// surfaced: the content row already exists and the feed must not depend on
// notification delivery.
func notifyNeighborhood(
	notifRepo repositories.NotificationRepository,
	profileRepo repositories.ProfileRepository,
	bus *events.Bus,
	actorID, neighborhoodID uint,
	contentType, contentID, title, notificationType string,
) {
	memberIDs, err := profileRepo.ListMemberIDs(neighborhoodID, actorID)
	if err != nil {
		logger.Get().Warn("notification fan-out member lookup failed",
			zap.Uint("neighborhood_id", neighborhoodID), zap.Error(err))
		return
	}

	actor := actorID
	now := time.Now()
	notifications := make([]models.Notification, 0, len(memberIDs)+1)
	recipients := append(memberIDs, actorID) // author sees their own activity too
	for _, memberID := range recipients {
		notifications = append(notifications, models.Notification{
			UserID:           memberID,
			Title:            title,
			ActorID:          &actor,
			ContentType:      contentType,
			ContentID:        contentID,
			NotificationType: notificationType,
			ActionType:       "view",
			ActionLabel:      "View",
			CreatedAt:        now,
		})
	}

	if err := notifRepo.CreateBatch(notifications); err != nil {
		logger.Get().Warn("notification fan-out write failed",
			zap.String("content_type", contentType),
			zap.String("content_id", contentID),
			zap.Error(err))
		return
	}
	bus.Emit(events.NotificationCreated)
}

// notifyUser writes one targeted notification row (e.g. an RSVP addressed
// to the event author) and signals the bus.
func notifyUser(
	notifRepo repositories.NotificationRepository,
	bus *events.Bus,
	recipientID, actorID uint,
	contentType, contentID, title, notificationType string,
) {
	actor := actorID
	notification := models.Notification{
		UserID:           recipientID,
		Title:            title,
		ActorID:          &actor,
		ContentType:      contentType,
		ContentID:        contentID,
		NotificationType: notificationType,
		ActionType:       "view",
		ActionLabel:      "View",
		CreatedAt:        time.Now(),
	}
	if err := notifRepo.Create(&notification); err != nil {
		logger.Get().Warn("targeted notification write failed",
			zap.String("content_type", contentType),
			zap.String("content_id", contentID),
			zap.Error(err))
		return
	}
	bus.Emit(events.NotificationCreated)
}

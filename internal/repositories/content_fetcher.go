package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/neighborhq/backend/internal/feed"
	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
)

// ErrUnknownContentType marks a notification whose content type has no
// registry entry. That is registry/data drift, a programming defect, and it
// fails loudly instead of silently dropping the type.
var ErrUnknownContentType = errors.New("content type has no registry entry")

// ContentFetcher is the single parameterized fetcher behind the popover
// feed. One instance per registered content type; the registry entry drives
// the table, the join, and the relevance policy, so the per-type fetchers
// share all their query-building.
type ContentFetcher struct {
	db          *gorm.DB
	registry    *registry.Registry
	contentType string
}

// NewContentFetchers builds one fetcher per registered content type, in
// registration order.
func NewContentFetchers(db *gorm.DB, reg *registry.Registry) []feed.Fetcher {
	fetchers := make([]feed.Fetcher, 0, len(reg.AllContentTypes()))
	for _, contentType := range reg.AllContentTypes() {
		fetchers = append(fetchers, &ContentFetcher{
			db:          db,
			registry:    reg,
			contentType: contentType,
		})
	}
	return fetchers
}

func (f *ContentFetcher) ContentType() string { return f.contentType }

// Fetch reads this type's notification rows for the scoped user: inner join
// to the content table (which drops dangling references), archived-state
// filter, neighborhood scope, recency order, optional cap. Types whose
// registry policy is author-only additionally restrict to content the
// current user authored.
func (f *ContentFetcher) Fetch(ctx context.Context, q feed.Query) ([]models.Notification, error) {
	cfg, ok := f.registry.ConfigFor(f.contentType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentType, f.contentType)
	}
	join, _ := f.registry.JoinClause(f.contentType)

	tx := f.db.WithContext(ctx).
		Model(&models.Notification{}).
		Joins(join).
		Where("notifications.user_id = ?", q.UserID).
		Where("notifications.is_archived = ?", q.ShowArchived).
		Where(cfg.NeighborhoodKey+" = ?", q.NeighborhoodID)

	if cfg.AuthorOnly {
		tx = tx.Where(cfg.AuthorKey+" = ?", q.UserID)
	}

	tx = tx.Select("notifications.*").Order("notifications.created_at DESC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var notifications []models.Notification
	if err := tx.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

var _ feed.Fetcher = (*ContentFetcher)(nil)

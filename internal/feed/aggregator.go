package feed

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neighborhq/backend/internal/models"
	"github.com/neighborhq/backend/internal/registry"
)

// ErrAllSourcesFailed distinguishes "every fetcher errored" from a genuinely
// empty feed, so the client can render a degraded state instead of "all
// caught up".
var ErrAllSourcesFailed = errors.New("all notification sources failed")

const (
	// PopoverLimit caps each content type's contribution to the popover feed.
	PopoverLimit = 5

	defaultFetchTimeout = 10 * time.Second
)

// Query scopes one aggregation run.
type Query struct {
	UserID         uint
	NeighborhoodID uint
	ShowArchived   bool
	// Limit caps results per content type; zero means unbounded (full page).
	Limit int
}

// Fetcher reads notification rows for exactly one content type.
type Fetcher interface {
	ContentType() string
	Fetch(ctx context.Context, q Query) ([]models.Notification, error)
}

// ProfileSource resolves actor profiles in one batched lookup.
type ProfileSource interface {
	GetProfiles(ctx context.Context, ids []uint) (map[uint]models.Profile, error)
}

// Aggregator merges per-type fetcher output into the unified notification
// feed: time-ordered, actor-enriched, with derived display fields.
type Aggregator struct {
	fetchers []Fetcher
	profiles ProfileSource
	registry *registry.Registry
	log      *zap.Logger
	now      func() time.Time
	timeout  time.Duration
}

func NewAggregator(fetchers []Fetcher, profiles ProfileSource, reg *registry.Registry, log *zap.Logger) *Aggregator {
	return &Aggregator{
		fetchers: fetchers,
		profiles: profiles,
		registry: reg,
		log:      log,
		now:      time.Now,
		timeout:  defaultFetchTimeout,
	}
}

// Aggregate runs all fetchers concurrently, merges and normalizes their
// output, and enhances the result. A failing fetcher contributes an empty
// slice behind a logged warning; partial data beats no data. Only when every
// fetcher fails does Aggregate surface ErrAllSourcesFailed alongside the
// empty list.
func (a *Aggregator) Aggregate(ctx context.Context, q Query) ([]models.EnhancedNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// Fetchers are independent; overall latency bounds at the slowest one.
	// Results land in per-fetcher slots so tie-breaking on equal timestamps
	// stays deterministic in registration order.
	results := make([][]models.Notification, len(a.fetchers))
	failures := make([]bool, len(a.fetchers))
	var wg sync.WaitGroup
	for i, fetcher := range a.fetchers {
		wg.Add(1)
		go func(i int, fetcher Fetcher) {
			defer wg.Done()
			rows, err := fetcher.Fetch(ctx, q)
			if err != nil {
				a.log.Warn("notification fetch failed",
					zap.String("content_type", fetcher.ContentType()),
					zap.Error(err))
				failures[i] = true
				return
			}
			results[i] = rows
		}(i, fetcher)
	}
	wg.Wait()

	failed := 0
	merged := make([]models.Notification, 0)
	for i := range results {
		if failures[i] {
			failed++
			continue
		}
		merged = append(merged, results[i]...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})

	enhanced := a.Enhance(ctx, merged)

	if failed > 0 && failed == len(a.fetchers) && len(a.fetchers) > 0 {
		return enhanced, ErrAllSourcesFailed
	}
	return enhanced, nil
}

// Enhance normalizes raw rows, attaches actor profiles via one batched
// lookup, and computes the derived display fields. It runs on both the
// popover and the full-page path so defaults apply uniformly. A failed
// profile lookup degrades to nil actors rather than discarding
// notifications.
func (a *Aggregator) Enhance(ctx context.Context, rows []models.Notification) []models.EnhancedNotification {
	profiles := a.resolveProfiles(ctx, rows)

	now := a.now()
	enhanced := make([]models.EnhancedNotification, len(rows))
	for i, row := range rows {
		row = normalize(row)
		var actor *models.Profile
		if row.ActorID != nil {
			if p, ok := profiles[*row.ActorID]; ok {
				actor = &p
			}
		}
		enhanced[i] = models.EnhancedNotification{
			Notification:  row,
			Actor:         actor,
			TimeAgo:       TimeAgo(row.CreatedAt, now),
			CanNavigate:   a.registry.Navigable(row.ContentType),
			HighlightType: a.registry.HighlightTypeFor(row.ContentType),
		}
	}
	return enhanced
}

func (a *Aggregator) resolveProfiles(ctx context.Context, rows []models.Notification) map[uint]models.Profile {
	seen := make(map[uint]bool)
	ids := make([]uint, 0)
	for _, row := range rows {
		if row.ActorID != nil && !seen[*row.ActorID] {
			seen[*row.ActorID] = true
			ids = append(ids, *row.ActorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := a.profiles.GetProfiles(ctx, ids)
	if err != nil {
		a.log.Warn("actor profile lookup failed", zap.Int("actors", len(ids)), zap.Error(err))
		return nil
	}
	return profiles
}

// normalize fills the defaults a raw row may miss before it enters the
// unified feed.
func normalize(n models.Notification) models.Notification {
	if n.Title == "" {
		n.Title = "New notification"
	}
	if n.ActionType == "" {
		n.ActionType = "view"
	}
	if n.ActionLabel == "" {
		n.ActionLabel = "View"
	}
	return n
}

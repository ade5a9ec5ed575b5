package registry

import (
	"fmt"
	"strings"
)

// Content type keys. These are the values stored in notifications.content_type.
const (
	TypeEvents         = "events"
	TypeSafetyUpdates  = "safety_updates"
	TypeSkillsExchange = "skills_exchange"
	TypeGoodsExchange  = "goods_exchange"
	TypeGroupUpdates   = "group_updates"
)

// ContentTypeConfig maps a content type to the table queries run against and
// the policy applied when fetching notifications for it. Adding a content
// type requires only a new entry here; no other component changes.
type ContentTypeConfig struct {
	// Table is the content table joined against notifications.content_id.
	Table string
	// NeighborhoodKey is the qualified column used for neighborhood scoping.
	NeighborhoodKey string
	// AuthorKey is the qualified column holding the content author.
	AuthorKey string
	// Route is the client route for this type. Empty means items of this
	// type are not navigable from a notification.
	Route string
	// HighlightType is the module marker used for deep-link highlighting.
	HighlightType string
	// AuthorOnly narrows relevance to content authored by the current user.
	// Safety updates keep this narrower rule as an explicit product policy.
	AuthorOnly bool
}

// Registry is a pure lookup over the static content type table.
type Registry struct {
	configs map[string]ContentTypeConfig
	order   []string
}

// Default returns the registry covering every content type that can produce
// a notification. A notification whose content_type has no entry here is a
// configuration bug, not a runtime condition to recover from.
func Default() *Registry {
	r := &Registry{configs: make(map[string]ContentTypeConfig)}
	r.add(TypeEvents, ContentTypeConfig{
		Table:           "events",
		NeighborhoodKey: "events.neighborhood_id",
		AuthorKey:       "events.author_id",
		Route:           "/events",
		HighlightType:   "event",
	})
	r.add(TypeSafetyUpdates, ContentTypeConfig{
		Table:           "safety_updates",
		NeighborhoodKey: "safety_updates.neighborhood_id",
		AuthorKey:       "safety_updates.author_id",
		Route:           "/safety",
		HighlightType:   "safety",
		AuthorOnly:      true,
	})
	r.add(TypeSkillsExchange, ContentTypeConfig{
		Table:           "skills_exchanges",
		NeighborhoodKey: "skills_exchanges.neighborhood_id",
		AuthorKey:       "skills_exchanges.author_id",
		Route:           "/skills",
		HighlightType:   "skills",
	})
	r.add(TypeGoodsExchange, ContentTypeConfig{
		Table:           "goods_exchanges",
		NeighborhoodKey: "goods_exchanges.neighborhood_id",
		AuthorKey:       "goods_exchanges.author_id",
		Route:           "/goods",
		HighlightType:   "goods",
	})
	r.add(TypeGroupUpdates, ContentTypeConfig{
		Table:           "group_updates",
		NeighborhoodKey: "group_updates.neighborhood_id",
		AuthorKey:       "group_updates.author_id",
		HighlightType:   "group",
	})
	return r
}

func (r *Registry) add(contentType string, cfg ContentTypeConfig) {
	r.configs[contentType] = cfg
	r.order = append(r.order, contentType)
}

// ConfigFor returns the config for a content type. The second return is
// false when the type is unknown.
func (r *Registry) ConfigFor(contentType string) (ContentTypeConfig, bool) {
	cfg, ok := r.configs[contentType]
	return cfg, ok
}

// AllContentTypes returns registered types in registration order.
func (r *Registry) AllContentTypes() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// JoinClause builds the inner join tying a notification to its content row.
// The join doubles as the dangling-reference filter: deleted content simply
// stops matching.
func (r *Registry) JoinClause(contentType string) (string, bool) {
	cfg, ok := r.configs[contentType]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(
		"JOIN %s ON %s.id = notifications.content_id AND notifications.content_type = '%s'",
		cfg.Table, cfg.Table, contentType,
	), true
}

// LeftJoinClauses builds one left join per registered type, for single-query
// reads across all content tables.
func (r *Registry) LeftJoinClauses() []string {
	out := make([]string, 0, len(r.order))
	for _, contentType := range r.order {
		cfg := r.configs[contentType]
		out = append(out, fmt.Sprintf(
			"LEFT JOIN %s ON %s.id = notifications.content_id AND notifications.content_type = '%s'",
			cfg.Table, cfg.Table, contentType,
		))
	}
	return out
}

// NeighborhoodFilter builds the OR condition scoping a cross-type query to a
// neighborhood, with one placeholder argument per registered type.
func (r *Registry) NeighborhoodFilter(neighborhoodID uint) (string, []interface{}) {
	parts := make([]string, 0, len(r.order))
	args := make([]interface{}, 0, len(r.order))
	for _, contentType := range r.order {
		parts = append(parts, r.configs[contentType].NeighborhoodKey+" = ?")
		args = append(args, neighborhoodID)
	}
	return strings.Join(parts, " OR "), args
}

// Navigable reports whether notifications of this type can deep-link to a
// content page.
func (r *Registry) Navigable(contentType string) bool {
	cfg, ok := r.configs[contentType]
	return ok && cfg.Route != ""
}

// HighlightTypeFor returns the module marker for a content type, or the
// content type itself when unknown (callers treat unknown types as a
// configuration defect and log loudly before reaching here).
func (r *Registry) HighlightTypeFor(contentType string) string {
	if cfg, ok := r.configs[contentType]; ok {
		return cfg.HighlightType
	}
	return contentType
}

// TypeForHighlight resolves a module marker (e.g. "skills") back to its
// content type key. Used by the deep-link consumer.
func (r *Registry) TypeForHighlight(highlightType string) (string, bool) {
	for _, contentType := range r.order {
		if r.configs[contentType].HighlightType == highlightType {
			return contentType, true
		}
	}
	return "", false
}

package registry

import (
	"strings"
	"testing"
)

func TestDefaultRegistryIsComplete(t *testing.T) {
	r := Default()
	types := r.AllContentTypes()
	if len(types) != 5 {
		t.Fatalf("expected 5 content types, got %d", len(types))
	}
	for _, contentType := range types {
		cfg, ok := r.ConfigFor(contentType)
		if !ok {
			t.Fatalf("ConfigFor(%q) missing", contentType)
		}
		if cfg.Table == "" || cfg.NeighborhoodKey == "" || cfg.AuthorKey == "" {
			t.Fatalf("incomplete config for %q: %+v", contentType, cfg)
		}
		if cfg.HighlightType == "" {
			t.Fatalf("missing highlight type for %q", contentType)
		}
	}
}

func TestConfigForUnknownType(t *testing.T) {
	r := Default()
	if _, ok := r.ConfigFor("weather_reports"); ok {
		t.Fatal("expected unknown content type to be reported")
	}
}

func TestSafetyUpdatesKeepAuthorOnlyPolicy(t *testing.T) {
	r := Default()
	cfg, _ := r.ConfigFor(TypeSafetyUpdates)
	if !cfg.AuthorOnly {
		t.Fatal("safety updates must keep the author-only relevance policy")
	}
	for _, contentType := range r.AllContentTypes() {
		if contentType == TypeSafetyUpdates {
			continue
		}
		cfg, _ := r.ConfigFor(contentType)
		if cfg.AuthorOnly {
			t.Fatalf("%q must use neighborhood-wide relevance", contentType)
		}
	}
}

func TestJoinClauseScopesContentType(t *testing.T) {
	r := Default()
	clause, ok := r.JoinClause(TypeEvents)
	if !ok {
		t.Fatal("expected join clause for events")
	}
	if !strings.Contains(clause, "events.id = notifications.content_id") {
		t.Fatalf("join clause missing id match: %s", clause)
	}
	if !strings.Contains(clause, "notifications.content_type = 'events'") {
		t.Fatalf("join clause missing content type scope: %s", clause)
	}

	if _, ok := r.JoinClause("unknown"); ok {
		t.Fatal("expected no join clause for unknown type")
	}
}

func TestNeighborhoodFilterCoversAllTypes(t *testing.T) {
	r := Default()
	condition, args := r.NeighborhoodFilter(7)
	if len(args) != len(r.AllContentTypes()) {
		t.Fatalf("expected one arg per type, got %d", len(args))
	}
	for _, contentType := range r.AllContentTypes() {
		cfg, _ := r.ConfigFor(contentType)
		if !strings.Contains(condition, cfg.NeighborhoodKey+" = ?") {
			t.Fatalf("filter missing %q: %s", cfg.NeighborhoodKey, condition)
		}
	}
	if strings.Count(condition, " OR ") != len(args)-1 {
		t.Fatalf("unexpected OR count in: %s", condition)
	}
}

func TestNavigability(t *testing.T) {
	r := Default()
	for _, contentType := range []string{TypeEvents, TypeSafetyUpdates, TypeSkillsExchange, TypeGoodsExchange} {
		if !r.Navigable(contentType) {
			t.Fatalf("%q should be navigable", contentType)
		}
	}
	// Group updates render inline and have no destination page.
	if r.Navigable(TypeGroupUpdates) {
		t.Fatal("group updates should not be navigable")
	}
	if r.Navigable("unknown") {
		t.Fatal("unknown types should not be navigable")
	}
}

func TestHighlightTypeRoundTrip(t *testing.T) {
	r := Default()
	for _, contentType := range r.AllContentTypes() {
		marker := r.HighlightTypeFor(contentType)
		resolved, ok := r.TypeForHighlight(marker)
		if !ok || resolved != contentType {
			t.Fatalf("round trip failed for %q: marker %q resolved to %q", contentType, marker, resolved)
		}
	}
	if _, ok := r.TypeForHighlight("nope"); ok {
		t.Fatal("expected unknown highlight type to be reported")
	}
}

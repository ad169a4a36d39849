package stream_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/facet/discriminator"
	"github.com/jacentio/facet/stream"
)

func exactEntity(id, attribute, value string) *discriminator.Descriptor {
	return &discriminator.Descriptor{
		ID:    id,
		Table: "app",
		Primary: &discriminator.Declaration{
			Attribute: attribute,
			Rule:      discriminator.MatchRule{Strategy: discriminator.MatchExact, Literal: value},
		},
	}
}

func prefixEntity(id, attribute, literal string) *discriminator.Descriptor {
	return &discriminator.Descriptor{
		ID:    id,
		Table: "app",
		Primary: &discriminator.Declaration{
			Attribute: attribute,
			Rule:      discriminator.MatchRule{Strategy: discriminator.MatchStartsWith, Literal: literal},
		},
	}
}

func record(attrs map[string]string) discriminator.Record {
	rec := make(discriminator.Record, len(attrs))
	for k, v := range attrs {
		rec[k] = &types.AttributeValueMemberS{Value: v}
	}
	return rec
}

func TestCompileRoute(t *testing.T) {
	user := exactEntity("user", "entity_type", "USER")
	order := exactEntity("order", "entity_type", "ORDER")

	route, err := stream.CompileRoute([]*discriminator.Descriptor{user, order})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Attribute != "entity_type" {
		t.Errorf("expected attribute 'entity_type', got %q", route.Attribute)
	}
	if len(route.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(route.Bindings))
	}
	// Declaration order is the downstream tie-break; it must survive
	// compilation.
	if route.Bindings[0].Entity.ID != "user" || route.Bindings[1].Entity.ID != "order" {
		t.Errorf("expected bindings [user, order], got [%s, %s]",
			route.Bindings[0].Entity.ID, route.Bindings[1].Entity.ID)
	}
}

func TestCompileRoute_Empty(t *testing.T) {
	_, err := stream.CompileRoute(nil)
	if !errors.Is(err, stream.ErrNoEntities) {
		t.Errorf("expected ErrNoEntities, got %v", err)
	}
}

func TestCompileRoute_InconsistentAttributes(t *testing.T) {
	user := exactEntity("user", "EntityType", "USER")
	order := prefixEntity("order", "SK", "ORDER#")

	_, err := stream.CompileRoute([]*discriminator.Descriptor{user, order})
	if err == nil {
		t.Fatal("expected error for disagreeing discriminator attributes")
	}
	var ierr *stream.InconsistentRouteError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InconsistentRouteError, got %T", err)
	}
	if len(ierr.Attributes) != 2 || ierr.Attributes[0] != "EntityType" || ierr.Attributes[1] != "SK" {
		t.Errorf("expected attributes [EntityType, SK], got %v", ierr.Attributes)
	}
}

func TestCompileRoute_MissingPrimary(t *testing.T) {
	bare := &discriminator.Descriptor{ID: "bare", Table: "app"}
	if _, err := stream.CompileRoute([]*discriminator.Descriptor{bare}); err == nil {
		t.Error("expected error for entity without primary discriminator")
	}
}

func TestDistinctDiscriminatorAttributes(t *testing.T) {
	entities := []*discriminator.Descriptor{
		exactEntity("user", "EntityType", "USER"),
		prefixEntity("order", "SK", "ORDER#"),
		exactEntity("account", "EntityType", "ACCOUNT"),
		{ID: "bare", Table: "app"},
	}

	attrs := stream.DistinctDiscriminatorAttributes(entities)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 distinct attributes, got %v", attrs)
	}
	if attrs[0] != "EntityType" || attrs[1] != "SK" {
		t.Errorf("expected first-seen order [EntityType, SK], got %v", attrs)
	}
}

func TestRoute_Match_FirstWins(t *testing.T) {
	broad := prefixEntity("broad", "sk", "A#")
	narrow := prefixEntity("narrow", "sk", "A#B#")

	route, err := stream.CompileRoute([]*discriminator.Descriptor{broad, narrow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entity := route.Match(record(map[string]string{"sk": "A#B#1"}))
	if entity == nil {
		t.Fatal("expected a match")
	}
	if entity.ID != "broad" {
		t.Errorf("expected first-declared entity to win, got %q", entity.ID)
	}
}

func TestRoute_Match_NoMatch(t *testing.T) {
	user := exactEntity("user", "entity_type", "USER")
	route, err := stream.CompileRoute([]*discriminator.Descriptor{user})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entity := route.Match(record(map[string]string{"entity_type": "ORDER"})); entity != nil {
		t.Errorf("expected no match, got %q", entity.ID)
	}
	if entity := route.Match(record(map[string]string{"other": "USER"})); entity != nil {
		t.Errorf("expected no match for absent attribute, got %q", entity.ID)
	}
}

package discriminator_test

import (
	"errors"
	"testing"

	"github.com/jacentio/facet/discriminator"
)

func exact(attribute, value string) *discriminator.Declaration {
	return &discriminator.Declaration{
		Attribute: attribute,
		Rule:      discriminator.MatchRule{Strategy: discriminator.MatchExact, Literal: value},
	}
}

func prefix(attribute, literal string) *discriminator.Declaration {
	return &discriminator.Declaration{
		Attribute: attribute,
		Rule:      discriminator.MatchRule{Strategy: discriminator.MatchStartsWith, Literal: literal},
	}
}

func TestNewIndex(t *testing.T) {
	x := discriminator.NewIndex("app")
	if x == nil {
		t.Fatal("expected non-nil Index")
	}
	if x.Table() != "app" {
		t.Errorf("expected table 'app', got %q", x.Table())
	}
	if len(x.Attributes()) != 0 {
		t.Errorf("expected no attributes on empty index, got %v", x.Attributes())
	}
}

func TestIndex_Register_DifferentRulesSameAttribute(t *testing.T) {
	// Two entities discriminating on the same attribute with different
	// values is the normal single-table case.
	x := discriminator.NewIndex("app")
	user := &discriminator.Descriptor{ID: "user", Table: "app"}
	order := &discriminator.Descriptor{ID: "order", Table: "app"}

	if err := x.Register(user, *exact("entity_type", "USER")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := x.Register(order, *exact("entity_type", "ORDER")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bindings := x.Bindings("entity_type")
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].Entity.ID != "user" || bindings[1].Entity.ID != "order" {
		t.Errorf("expected registration order [user, order], got [%s, %s]",
			bindings[0].Entity.ID, bindings[1].Entity.ID)
	}
}

func TestIndex_Register_Conflict(t *testing.T) {
	x := discriminator.NewIndex("app")
	user := &discriminator.Descriptor{ID: "user", Table: "app"}
	account := &discriminator.Descriptor{ID: "account", Table: "app"}

	if err := x.Register(user, *exact("entity_type", "USER")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := x.Register(account, *exact("entity_type", "USER"))
	if err == nil {
		t.Fatal("expected conflict error for identical rule from different entity")
	}
	var cerr *discriminator.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %T", err)
	}
	if cerr.Table != "app" {
		t.Errorf("expected table 'app', got %q", cerr.Table)
	}
	if cerr.Attribute != "entity_type" {
		t.Errorf("expected attribute 'entity_type', got %q", cerr.Attribute)
	}
	if cerr.Entities != [2]string{"user", "account"} {
		t.Errorf("expected entities [user account], got %v", cerr.Entities)
	}
}

func TestIndex_Register_SameEntityDeduplicates(t *testing.T) {
	// A primary declaration shared by value with an index-level declaration
	// on the same entity registers once.
	x := discriminator.NewIndex("app")
	user := &discriminator.Descriptor{ID: "user", Table: "app"}

	if err := x.Register(user, *prefix("sk", "USER#")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := x.Register(user, *prefix("sk", "USER#")); err != nil {
		t.Fatalf("expected silent dedup, got %v", err)
	}

	if got := len(x.Bindings("sk")); got != 1 {
		t.Errorf("expected 1 binding after dedup, got %d", got)
	}
}

func TestIndex_Attributes_Order(t *testing.T) {
	x := discriminator.NewIndex("app")
	user := &discriminator.Descriptor{ID: "user", Table: "app"}
	order := &discriminator.Descriptor{ID: "order", Table: "app"}

	if err := x.Register(user, *exact("entity_type", "USER")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := x.Register(user, *prefix("sk", "USER#")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := x.Register(order, *exact("entity_type", "ORDER")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	attrs := x.Attributes()
	if len(attrs) != 2 {
		t.Fatalf("expected 2 distinct attributes, got %v", attrs)
	}
	if attrs[0] != "entity_type" || attrs[1] != "sk" {
		t.Errorf("expected first-registration order [entity_type, sk], got %v", attrs)
	}
}

func TestBuildIndex(t *testing.T) {
	user := &discriminator.Descriptor{
		ID:        "user",
		Table:     "app",
		Primary:   exact("entity_type", "USER"),
		Secondary: prefix("sk", "USER#"),
	}
	order := &discriminator.Descriptor{
		ID:      "order",
		Table:   "app",
		Primary: exact("entity_type", "ORDER"),
	}

	x, err := discriminator.BuildIndex("app", []*discriminator.Descriptor{user, order})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(x.Bindings("entity_type")); got != 2 {
		t.Errorf("expected 2 bindings on entity_type, got %d", got)
	}
	if got := len(x.Bindings("sk")); got != 1 {
		t.Errorf("expected 1 binding on sk, got %d", got)
	}
}

func TestBuildIndex_SharedPrimarySecondary(t *testing.T) {
	// A secondary declaration equal by value to the primary must not
	// register twice (and must not conflict with itself).
	decl := prefix("sk", "USER#")
	user := &discriminator.Descriptor{
		ID:        "user",
		Table:     "app",
		Primary:   decl,
		Secondary: prefix("sk", "USER#"),
	}

	x, err := discriminator.BuildIndex("app", []*discriminator.Descriptor{user})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(x.Bindings("sk")); got != 1 {
		t.Errorf("expected 1 binding for shared declaration, got %d", got)
	}
}

func TestBuildIndex_ConflictStopsBuild(t *testing.T) {
	user := &discriminator.Descriptor{ID: "user", Table: "app", Primary: exact("entity_type", "USER")}
	clone := &discriminator.Descriptor{ID: "clone", Table: "app", Primary: exact("entity_type", "USER")}

	_, err := discriminator.BuildIndex("app", []*discriminator.Descriptor{user, clone})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	var cerr *discriminator.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %T", err)
	}
}

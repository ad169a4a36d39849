// Package stream compiles change-stream routing tables and dispatches
// DynamoDB stream records to per-entity handlers.
package stream

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacentio/facet/discriminator"
)

// ErrNoEntities is returned when a route is compiled from an empty entity set.
var ErrNoEntities = errors.New("facet: stream route requires at least one entity")

// InconsistentRouteError is returned when the entities feeding one stream
// route disagree on their primary discriminator attribute. The dispatcher
// reads that attribute once per record before trying any entity rule, so all
// routed entities must key off the same physical attribute.
type InconsistentRouteError struct {
	// Attributes holds the disagreeing attribute names in first-seen order.
	Attributes []string
}

func (e *InconsistentRouteError) Error() string {
	return fmt.Sprintf("facet: stream route entities disagree on discriminator attribute: %s",
		strings.Join(e.Attributes, ", "))
}

// Route is the compiled routing table for one change stream.
type Route struct {
	// Attribute is the discriminator attribute shared by every routed
	// entity, read once per incoming record.
	Attribute string

	// Bindings preserves entity declaration order. The first binding whose
	// rule accepts a record wins; the dispatcher picks exactly one entity
	// type per record.
	Bindings []discriminator.Binding
}

// CompileRoute aggregates the entities' primary discriminator rules into a
// single ordered routing table.
//
// Every entity must declare a primary discriminator, and all of them must
// name the same attribute; disagreement fails with an
// [InconsistentRouteError] listing the conflicting attribute names. Other
// compiled outputs for the table remain valid when route compilation fails.
func CompileRoute(entities []*discriminator.Descriptor) (*Route, error) {
	if len(entities) == 0 {
		return nil, ErrNoEntities
	}
	for _, entity := range entities {
		if entity.Primary == nil {
			return nil, fmt.Errorf("facet: entity %q has no primary discriminator to route on", entity.ID)
		}
	}

	attrs := DistinctDiscriminatorAttributes(entities)
	if len(attrs) != 1 {
		return nil, &InconsistentRouteError{Attributes: attrs}
	}

	route := &Route{Attribute: attrs[0]}
	for _, entity := range entities {
		route.Bindings = append(route.Bindings, discriminator.Binding{
			Entity: entity,
			Rule:   entity.Primary.Rule,
		})
	}
	return route, nil
}

// DistinctDiscriminatorAttributes returns the primary discriminator
// attribute names declared across the entities, in first-seen order.
// Diagnostic tooling uses this to report which attributes disagree,
// independent of the consistency check in CompileRoute.
func DistinctDiscriminatorAttributes(entities []*discriminator.Descriptor) []string {
	var attrs []string
	seen := make(map[string]bool)
	for _, entity := range entities {
		if entity.Primary == nil {
			continue
		}
		attr := entity.Primary.Attribute
		if !seen[attr] {
			seen[attr] = true
			attrs = append(attrs, attr)
		}
	}
	return attrs
}

// Match returns the first entity whose rule accepts the record's
// discriminator attribute, or nil when the attribute is absent or no rule
// accepts it. The attribute is read once per record.
func (r *Route) Match(rec discriminator.Record) *discriminator.Descriptor {
	value, ok := rec.StringValue(r.Attribute)
	if !ok {
		return nil
	}
	for _, b := range r.Bindings {
		if b.Rule.Matches(value) {
			return b.Entity
		}
	}
	return nil
}

package discriminator

import "strings"

// Projection is the minimal ordered attribute list to request from storage
// when materializing one entity type.
type Projection struct {
	EntityID string

	// Attributes is ordered and duplicate-free: the entity's declared
	// attributes first, then any discriminator attributes not already
	// present, each kept at its first occurrence.
	Attributes []string
}

// Expression renders the comma-joined projection form consumed by code
// emission, e.g. "pk, name, entity_type".
func (p Projection) Expression() string {
	return strings.Join(p.Attributes, ", ")
}

// CompileProjection derives an entity's projection from its declared
// attributes, its own discriminator attributes, and the table-level
// discriminator attributes shared with its co-tenants.
//
// Compilation is idempotent: the same inputs always yield the same ordered
// sequence, and no attribute ever appears twice.
func CompileProjection(entity *Descriptor, tableAttrs []string) Projection {
	attrs := make([]string, 0, len(entity.Attributes)+len(tableAttrs)+2)
	seen := make(map[string]bool, len(entity.Attributes)+len(tableAttrs)+2)
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		attrs = append(attrs, name)
	}

	for _, a := range entity.Attributes {
		add(a)
	}
	if entity.Primary != nil {
		add(entity.Primary.Attribute)
	}
	if entity.Secondary != nil {
		add(entity.Secondary.Attribute)
	}
	for _, a := range tableAttrs {
		add(a)
	}

	return Projection{EntityID: entity.ID, Attributes: attrs}
}

// Projection compiles the entity's projection against this index's
// registered discriminator attributes.
func (x *Index) Projection(entity *Descriptor) Projection {
	return CompileProjection(entity, x.order)
}

// Validation is a compiled predicate asserting that a fetched record
// actually belongs to an entity before it is materialized.
type Validation struct {
	EntityID string

	// Checks holds the discriminator declarations the record must satisfy,
	// one per distinct declaration. Code emission consumes these to write
	// the equivalent runtime check.
	Checks []Declaration
}

// CompileValidation compiles the entity's discriminator declarations into a
// validation predicate. A declaration shared between the primary and the
// index-level slot is checked once.
func CompileValidation(entity *Descriptor) Validation {
	return Validation{EntityID: entity.ID, Checks: entity.declarations()}
}

// Validate returns nil when the record satisfies every check, or a
// [MismatchError] describing the first failure. An absent discriminator
// attribute is a validation failure, not an evaluation error.
func (v Validation) Validate(rec Record) error {
	for _, check := range v.Checks {
		value, ok := rec.StringValue(check.Attribute)
		if !ok {
			return &MismatchError{
				EntityID:  v.EntityID,
				Attribute: check.Attribute,
				Rule:      check.Rule,
				Absent:    true,
			}
		}
		if !check.Rule.Matches(value) {
			return &MismatchError{
				EntityID:  v.EntityID,
				Attribute: check.Attribute,
				Rule:      check.Rule,
				Actual:    value,
			}
		}
	}
	return nil
}

// Matches is the predicate form of Validate.
func (v Validation) Matches(rec Record) bool {
	return v.Validate(rec) == nil
}

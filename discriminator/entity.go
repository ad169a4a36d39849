package discriminator

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Record is a raw stored item: a mapping from attribute name to typed value.
type Record map[string]types.AttributeValue

// StringValue returns the comparable string form of the named attribute.
// String, number, and binary values compare as strings; other types and
// absent attributes report false.
func (r Record) StringValue(name string) (string, bool) {
	av, ok := r[name]
	if !ok {
		return "", false
	}
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return v.Value, true
	case *types.AttributeValueMemberN:
		return v.Value, true
	case *types.AttributeValueMemberB:
		return string(v.Value), true
	}
	return "", false
}

// Declaration binds a compiled rule to the attribute it tests.
type Declaration struct {
	// Attribute is the physical attribute name the rule reads.
	Attribute string

	// Rule is the compiled match rule.
	Rule MatchRule
}

// Descriptor describes one entity type bound to a physical table.
//
// Descriptors are constructed once from static declarations and never
// mutated afterward.
type Descriptor struct {
	// ID is the entity identity, unique within its table.
	ID string

	// Table is the physical table the entity is stored in.
	Table string

	// Attributes are the entity's declared output attributes, in
	// declaration order.
	Attributes []string

	// Primary is the entity's primary discriminator, if any.
	Primary *Declaration

	// Secondary is an optional index-level discriminator (e.g. a derived
	// sort-key rule). It may equal Primary by value when shared.
	Secondary *Declaration
}

// declarations returns the entity's discriminator declarations in order,
// with a value-identical secondary collapsed into the primary.
func (d *Descriptor) declarations() []Declaration {
	var decls []Declaration
	if d.Primary != nil {
		decls = append(decls, *d.Primary)
	}
	if d.Secondary != nil && (d.Primary == nil || *d.Secondary != *d.Primary) {
		decls = append(decls, *d.Secondary)
	}
	return decls
}

// MetadataSource supplies entity descriptors to the engine. Implementations
// load them from whatever declaration mechanism the host application uses
// (e.g. the facet/schema YAML front end).
type MetadataSource interface {
	Entities() ([]*Descriptor, error)
}

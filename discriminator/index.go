package discriminator

// Binding pairs an entity with one of its compiled rules.
type Binding struct {
	Entity *Descriptor
	Rule   MatchRule
}

// Index holds the discriminator declarations of every entity sharing one
// physical table. Each table gets its own independent Index value; there is
// no cross-table state.
//
// Bucket order follows the first registration of each attribute, and
// bindings within a bucket keep registration order. That order is a
// correctness property: it is the tie-break applied when several entities
// could accept the same record.
type Index struct {
	table   string
	order   []string
	buckets map[string][]Binding
}

// NewIndex creates an empty Index for the named table.
func NewIndex(table string) *Index {
	return &Index{
		table:   table,
		buckets: make(map[string][]Binding),
	}
}

// BuildIndex folds every entity's declarations, in declaration order, into
// a new Index. The fold is sequential so registration order (and therefore
// classification tie-breaking) is deterministic.
func BuildIndex(table string, entities []*Descriptor) (*Index, error) {
	index := NewIndex(table)
	for _, entity := range entities {
		for _, decl := range entity.declarations() {
			if err := index.Register(entity, decl); err != nil {
				return nil, err
			}
		}
	}
	return index, nil
}

// Table returns the table this index was built for.
func (x *Index) Table() string {
	return x.table
}

// Register inserts the entity's declaration into the bucket for its
// attribute.
//
// Two entities declaring different rules on the same attribute is the normal
// single-table case and is accepted. A rule identical in strategy and
// literal to one already registered by a different entity is unresolvable
// ambiguity and returns a [ConflictError]. The same entity re-registering an
// identical declaration (a primary shared with an index-level declaration)
// deduplicates silently.
func (x *Index) Register(entity *Descriptor, decl Declaration) error {
	bucket := x.buckets[decl.Attribute]
	for _, b := range bucket {
		if b.Rule != decl.Rule {
			continue
		}
		if b.Entity.ID == entity.ID {
			return nil
		}
		return &ConflictError{
			Table:     x.table,
			Attribute: decl.Attribute,
			Rule:      decl.Rule,
			Entities:  [2]string{b.Entity.ID, entity.ID},
		}
	}
	if _, seen := x.buckets[decl.Attribute]; !seen {
		x.order = append(x.order, decl.Attribute)
	}
	x.buckets[decl.Attribute] = append(bucket, Binding{Entity: entity, Rule: decl.Rule})
	return nil
}

// Attributes returns the distinct attribute names referenced by any
// registered declaration, in first-registration order.
func (x *Index) Attributes() []string {
	attrs := make([]string, len(x.order))
	copy(attrs, x.order)
	return attrs
}

// Bindings returns the registered bindings for an attribute, in
// registration order.
func (x *Index) Bindings(attribute string) []Binding {
	bucket := x.buckets[attribute]
	bindings := make([]Binding, len(bucket))
	copy(bindings, bucket)
	return bindings
}

package discriminator

// Classify returns the entities whose discriminator rules the record
// satisfies, ordered by first match.
//
// Attribute buckets are walked in first-registration order and bindings
// within a bucket in registration order, so the result order is stable
// across runs and monotonic under later registrations. Records legitimately
// lack attributes declared by other entities; an absent attribute simply
// skips its bucket. An entity matching on both its primary and its
// index-level declaration appears once.
func (x *Index) Classify(rec Record) []*Descriptor {
	var matched []*Descriptor
	seen := make(map[string]bool)
	for _, attr := range x.order {
		value, ok := rec.StringValue(attr)
		if !ok {
			continue
		}
		for _, b := range x.buckets[attr] {
			if seen[b.Entity.ID] {
				continue
			}
			if b.Rule.Matches(value) {
				seen[b.Entity.ID] = true
				matched = append(matched, b.Entity)
			}
		}
	}
	return matched
}

// ClassifyUnique returns the sole entity the record satisfies.
//
// It returns a [NoMatchError] when nothing matches and an
// [AmbiguousRecordError] listing every match when more than one distinct
// entity does. Ambiguity is always surfaced, never resolved by guessing;
// callers that want the declaration-order tie-break should use Classify and
// take the first element.
func (x *Index) ClassifyUnique(rec Record) (*Descriptor, error) {
	matched := x.Classify(rec)
	switch len(matched) {
	case 0:
		return nil, &NoMatchError{Table: x.table}
	case 1:
		return matched[0], nil
	}
	ids := make([]string, len(matched))
	for i, entity := range matched {
		ids[i] = entity.ID
	}
	return nil, &AmbiguousRecordError{Table: x.table, Matches: ids}
}

package discriminator

import (
	"fmt"
	"strings"
)

// PatternError is returned when a discriminator spec is malformed.
type PatternError struct {
	// Spec is the raw pattern that failed to compile.
	Spec string

	// Reason describes why the spec was rejected.
	Reason string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("facet: invalid pattern %q: %s", e.Spec, e.Reason)
}

// ConflictError is returned when two different entities register a
// byte-identical rule on the same attribute of one table. Such a rule can
// never be resolved by value, so index construction stops.
type ConflictError struct {
	Table     string
	Attribute string
	Rule      MatchRule

	// Entities holds the two entity ids that claimed the rule, in
	// registration order.
	Entities [2]string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("facet: table %q: entities %q and %q register identical discriminator %s %q on attribute %q",
		e.Table, e.Entities[0], e.Entities[1], e.Rule.Strategy, e.Rule.Literal, e.Attribute)
}

// NoMatchError is returned when a record satisfies no registered entity.
// Callers typically log and skip the record.
type NoMatchError struct {
	Table string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("facet: table %q: record matches no registered entity", e.Table)
}

// AmbiguousRecordError is returned when more than one distinct entity
// accepts a record and the caller asked for a unique classification.
type AmbiguousRecordError struct {
	Table string

	// Matches holds the matched entity ids in classification order.
	Matches []string
}

func (e *AmbiguousRecordError) Error() string {
	return fmt.Sprintf("facet: table %q: record matches multiple entities: %s",
		e.Table, strings.Join(e.Matches, ", "))
}

// MismatchError is returned when a fetched record fails an entity's
// discriminator validation. It carries the failing attribute, the expected
// rule, and the actual value so callers can report or discard the record.
type MismatchError struct {
	EntityID  string
	Attribute string
	Rule      MatchRule

	// Actual is the record's value for the attribute. Empty when Absent.
	Actual string

	// Absent reports that the attribute was missing from the record.
	Absent bool
}

func (e *MismatchError) Error() string {
	if e.Absent {
		return fmt.Sprintf("facet: entity %q: discriminator attribute %q is absent (want %s %q)",
			e.EntityID, e.Attribute, e.Rule.Strategy, e.Rule.Literal)
	}
	return fmt.Sprintf("facet: entity %q: attribute %q value %q does not satisfy %s %q",
		e.EntityID, e.Attribute, e.Actual, e.Rule.Strategy, e.Rule.Literal)
}

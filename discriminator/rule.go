package discriminator

import "strings"

// MatchStrategy identifies how a rule's literal is tested against an
// attribute value.
type MatchStrategy string

const (
	MatchExact      MatchStrategy = "exact"
	MatchStartsWith MatchStrategy = "starts_with"
	MatchEndsWith   MatchStrategy = "ends_with"
	MatchContains   MatchStrategy = "contains"
)

// MatchRule is a compiled discriminator rule: a match strategy plus the
// literal segment to test. The literal is never empty. Rules are immutable
// once compiled and compare by value.
type MatchRule struct {
	Strategy MatchStrategy
	Literal  string
}

// CompilePattern compiles a raw discriminator spec into a MatchRule.
//
// The spec is either an exact value or a pattern with at most one leading
// and one trailing "*" wildcard:
//
//	"USER"     -> exact match
//	"USER#*"   -> starts with "USER#"
//	"*#USER"   -> ends with "#USER"
//	"*#USER#*" -> contains "#USER#"
//
// Empty specs, wildcards anywhere but the pattern edges, and patterns with
// no literal segment are rejected with a [PatternError].
func CompilePattern(raw string) (MatchRule, error) {
	if raw == "" {
		return MatchRule{}, &PatternError{Spec: raw, Reason: "empty pattern"}
	}

	literal := raw
	leading := strings.HasPrefix(literal, "*")
	if leading {
		literal = literal[1:]
	}
	trailing := strings.HasSuffix(literal, "*")
	if trailing {
		literal = literal[:len(literal)-1]
	}

	if literal == "" {
		return MatchRule{}, &PatternError{Spec: raw, Reason: "pattern has no literal segment"}
	}
	if strings.Contains(literal, "*") {
		return MatchRule{}, &PatternError{Spec: raw, Reason: "wildcard is only allowed at the pattern edges"}
	}

	switch {
	case leading && trailing:
		return MatchRule{Strategy: MatchContains, Literal: literal}, nil
	case leading:
		return MatchRule{Strategy: MatchEndsWith, Literal: literal}, nil
	case trailing:
		return MatchRule{Strategy: MatchStartsWith, Literal: literal}, nil
	}
	return MatchRule{Strategy: MatchExact, Literal: literal}, nil
}

// ExactRule builds an exact-match rule from a plain value, without wildcard
// interpretation. Use this for declarations whose value may legitimately
// contain "*".
func ExactRule(value string) (MatchRule, error) {
	if value == "" {
		return MatchRule{}, &PatternError{Spec: value, Reason: "empty value"}
	}
	return MatchRule{Strategy: MatchExact, Literal: value}, nil
}

// Matches reports whether the given attribute value satisfies the rule.
func (r MatchRule) Matches(value string) bool {
	switch r.Strategy {
	case MatchExact:
		return value == r.Literal
	case MatchStartsWith:
		return strings.HasPrefix(value, r.Literal)
	case MatchEndsWith:
		return strings.HasSuffix(value, r.Literal)
	case MatchContains:
		return strings.Contains(value, r.Literal)
	}
	return false
}

// Pattern reconstructs the raw pattern spec this rule was compiled from.
// For every well-formed pattern, compiling Pattern() yields an equal rule.
func (r MatchRule) Pattern() string {
	switch r.Strategy {
	case MatchStartsWith:
		return r.Literal + "*"
	case MatchEndsWith:
		return "*" + r.Literal
	case MatchContains:
		return "*" + r.Literal + "*"
	}
	return r.Literal
}

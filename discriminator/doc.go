// Package discriminator compiles declarative entity metadata into runtime
// classification and projection artifacts for single-table DynamoDB designs.
//
// Facet is designed for applications that persist multiple logical entity
// types in one physical table, distinguished by discriminator attributes
// (e.g. an entity_type attribute, or a prefixed sort key like "USER#123").
//
// # Key Features
//
//   - Wildcard discriminator patterns ("USER#*", "*#USER", "*#USER#*")
//     compiled to normalized match rules
//   - Per-table discriminator index with conflict detection
//   - Record classification with declaration-order tie-breaking
//   - Minimal, duplicate-free projection compilation per entity
//   - Compiled validation predicates for fetched records
//
// # Entity Descriptors
//
// Entities are described by immutable [Descriptor] values, typically loaded
// from a schema document by the facet/schema package:
//
//	user := &discriminator.Descriptor{
//	    ID:         "user",
//	    Table:      "app",
//	    Attributes: []string{"pk", "sk", "name"},
//	    Primary: &discriminator.Declaration{
//	        Attribute: "entity_type",
//	        Rule:      discriminator.MatchRule{Strategy: discriminator.MatchExact, Literal: "USER"},
//	    },
//	}
//
// Any front end can supply descriptors by implementing [MetadataSource].
//
// # Classification
//
// Build one [Index] per physical table with [BuildIndex], then classify raw
// records against it:
//
//	index, err := discriminator.BuildIndex("app", entities)
//	entity, err := index.ClassifyUnique(record)
//
// When more than one entity's rules accept a record, Classify preserves
// declaration order and ClassifyUnique reports the ambiguity instead of
// guessing.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [PatternError] - malformed wildcard spec
//   - [ConflictError] - two entities registered an identical rule on one attribute
//   - [AmbiguousRecordError] - more than one entity accepts a record
//   - [NoMatchError] - no entity accepts a record
//   - [MismatchError] - a fetched record fails an entity's validation
package discriminator

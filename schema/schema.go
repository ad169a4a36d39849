// Package schema loads facet entity declarations from a YAML document.
//
// A schema document declares the entities sharing each physical table along
// with their discriminator rules:
//
//	tables:
//	  - name: app
//	    entities:
//	      - id: user
//	        attributes: [pk, sk, name]
//	        discriminator: {attribute: entity_type, value: USER}
//	        indexDiscriminator: {attribute: sk, pattern: "USER#*"}
//	      - id: order
//	        attributes: [pk, sk, total]
//	        discriminator: {attribute: entity_type, value: ORDER}
//
// A discriminator declares either a literal value (matched exactly, even if
// it contains "*") or a wildcard pattern compiled by
// [discriminator.CompilePattern]. [File] implements
// [discriminator.MetadataSource].
package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jacentio/facet/discriminator"
)

// File is the root of a facet schema document.
type File struct {
	Tables []Table `yaml:"tables"`
}

// Table declares the entities sharing one physical table.
type Table struct {
	Name     string   `yaml:"name"`
	Entities []Entity `yaml:"entities"`
}

// Entity declares one entity type: its identity, output attributes, and
// discriminators.
type Entity struct {
	ID         string   `yaml:"id"`
	Attributes []string `yaml:"attributes"`

	// Discriminator is the entity's primary discriminator.
	Discriminator *Discriminator `yaml:"discriminator,omitempty"`

	// IndexDiscriminator is an optional index-level discriminator, e.g. a
	// derived-index sort-key rule.
	IndexDiscriminator *Discriminator `yaml:"indexDiscriminator,omitempty"`
}

// Discriminator declares a rule on an attribute. Exactly one of Value and
// Pattern must be set.
type Discriminator struct {
	Attribute string `yaml:"attribute"`
	Value     string `yaml:"value,omitempty"`
	Pattern   string `yaml:"pattern,omitempty"`
}

// Load reads and parses a schema document from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a schema document.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	tableNames := make(map[string]bool)
	for _, table := range f.Tables {
		if table.Name == "" {
			return fmt.Errorf("schema: table name is required")
		}
		if tableNames[table.Name] {
			return fmt.Errorf("schema: table %q declared twice", table.Name)
		}
		tableNames[table.Name] = true

		if len(table.Entities) == 0 {
			return fmt.Errorf("schema: table %q declares no entities", table.Name)
		}
		entityIDs := make(map[string]bool)
		for _, entity := range table.Entities {
			if entity.ID == "" {
				return fmt.Errorf("schema: table %q: entity id is required", table.Name)
			}
			if entityIDs[entity.ID] {
				return fmt.Errorf("schema: table %q: entity %q declared twice", table.Name, entity.ID)
			}
			entityIDs[entity.ID] = true
		}
	}
	return nil
}

// Entities compiles every declared entity into a descriptor, in declaration
// order across tables. It implements [discriminator.MetadataSource].
func (f *File) Entities() ([]*discriminator.Descriptor, error) {
	var descriptors []*discriminator.Descriptor
	for _, table := range f.Tables {
		for _, entity := range table.Entities {
			desc, err := entity.compile(table.Name)
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, desc)
		}
	}
	return descriptors, nil
}

// Indexes builds one discriminator index per declared table. A rule
// conflict in any table aborts the build.
func (f *File) Indexes() (map[string]*discriminator.Index, error) {
	entities, err := f.Entities()
	if err != nil {
		return nil, err
	}
	byTable := make(map[string][]*discriminator.Descriptor)
	for _, entity := range entities {
		byTable[entity.Table] = append(byTable[entity.Table], entity)
	}

	indexes := make(map[string]*discriminator.Index, len(byTable))
	for _, table := range f.Tables {
		index, err := discriminator.BuildIndex(table.Name, byTable[table.Name])
		if err != nil {
			return nil, fmt.Errorf("schema: table %q: %w", table.Name, err)
		}
		indexes[table.Name] = index
	}
	return indexes, nil
}

func (e Entity) compile(table string) (*discriminator.Descriptor, error) {
	desc := &discriminator.Descriptor{
		ID:         e.ID,
		Table:      table,
		Attributes: e.Attributes,
	}

	if e.Discriminator != nil {
		decl, err := e.Discriminator.compile(table, e.ID)
		if err != nil {
			return nil, err
		}
		desc.Primary = decl
	}
	if e.IndexDiscriminator != nil {
		decl, err := e.IndexDiscriminator.compile(table, e.ID)
		if err != nil {
			return nil, err
		}
		desc.Secondary = decl
	}
	return desc, nil
}

func (d *Discriminator) compile(table, entity string) (*discriminator.Declaration, error) {
	if d.Attribute == "" {
		return nil, fmt.Errorf("schema: table %q entity %q: discriminator attribute is required", table, entity)
	}
	if d.Value != "" && d.Pattern != "" {
		return nil, fmt.Errorf("schema: table %q entity %q: discriminator declares both value and pattern", table, entity)
	}

	var rule discriminator.MatchRule
	var err error
	switch {
	case d.Value != "":
		rule, err = discriminator.ExactRule(d.Value)
	case d.Pattern != "":
		rule, err = discriminator.CompilePattern(d.Pattern)
	default:
		return nil, fmt.Errorf("schema: table %q entity %q: discriminator declares neither value nor pattern", table, entity)
	}
	if err != nil {
		return nil, fmt.Errorf("schema: table %q entity %q: %w", table, entity, err)
	}

	return &discriminator.Declaration{Attribute: d.Attribute, Rule: rule}, nil
}

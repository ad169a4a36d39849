// Package store reads discriminated entities from a shared DynamoDB table.
//
// A Store pairs a table's compiled discriminator index with a DynamoDB
// client. Reads request only the entity's compiled projection, and every
// fetched item is validated against the entity's discriminator rules before
// it is materialized, so a key collision with a co-tenant entity surfaces as
// a [discriminator.MismatchError] instead of a silently mistyped value.
package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/facet/discriminator"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// API is the subset of the DynamoDB client the Store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store provides discriminator-aware reads against one shared table.
type Store struct {
	client API
	config Config
	index  *discriminator.Index
}

// New creates a new Store instance for the index's table.
func New(client API, config Config, index *discriminator.Index) *Store {
	config.validate(index.Table())
	return &Store{
		client: client,
		config: config,
		index:  index,
	}
}

// Index returns the discriminator index this store reads through.
func (s *Store) Index() *discriminator.Index {
	return s.index
}

// GetRecord fetches the item at key restricted to the entity's projection
// and validates it against the entity's discriminators.
//
// Returns [ErrNotFound] when no item exists, and the validation's
// MismatchError when the stored item belongs to a different entity.
func (s *Store) GetRecord(ctx context.Context, entity *discriminator.Descriptor, key PK) (discriminator.Record, error) {
	proj := s.index.Projection(entity)
	expr, err := buildProjectionExpression(proj.Attributes)
	if err != nil {
		return nil, fmt.Errorf("building projection for %q: %w", entity.ID, err)
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(s.config.Table),
		Key:                      key,
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
		ConsistentRead:           aws.Bool(s.config.ConsistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	rec := discriminator.Record(out.Item)
	if err := discriminator.CompileValidation(entity).Validate(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get fetches and validates the item at key, then unmarshals it into out.
func (s *Store) Get(ctx context.Context, entity *discriminator.Descriptor, key PK, out any) error {
	rec, err := s.GetRecord(ctx, entity, key)
	if err != nil {
		return err
	}
	if err := attributevalue.UnmarshalMap(rec, out); err != nil {
		return fmt.Errorf("unmarshaling %q: %w", entity.ID, err)
	}
	return nil
}

// QueryEntity runs a key-condition query restricted to the entity's
// projection and returns the records that satisfy the entity's
// discriminators. Records of co-tenant entities sharing the key range are
// filtered out, not reported as errors.
func (s *Store) QueryEntity(ctx context.Context, entity *discriminator.Descriptor, keyCond expression.KeyConditionBuilder) ([]discriminator.Record, error) {
	proj := s.index.Projection(entity)

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	if pb, ok := projectionBuilder(proj.Attributes); ok {
		builder = builder.WithProjection(pb)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building query expression for %q: %w", entity.ID, err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.Table),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(s.config.ConsistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	validation := discriminator.CompileValidation(entity)
	var records []discriminator.Record
	for _, item := range out.Items {
		rec := discriminator.Record(item)
		if !validation.Matches(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Classify classifies a raw record against the store's index.
func (s *Store) Classify(rec discriminator.Record) []*discriminator.Descriptor {
	return s.index.Classify(rec)
}

func projectionBuilder(attributes []string) (expression.ProjectionBuilder, bool) {
	if len(attributes) == 0 {
		return expression.ProjectionBuilder{}, false
	}
	var proj expression.ProjectionBuilder
	for i, attr := range attributes {
		if i == 0 {
			proj = expression.NamesList(expression.Name(attr))
		} else {
			proj = proj.AddNames(expression.Name(attr))
		}
	}
	return proj, true
}

func buildProjectionExpression(attributes []string) (expression.Expression, error) {
	pb, ok := projectionBuilder(attributes)
	if !ok {
		return expression.Expression{}, nil
	}
	return expression.NewBuilder().WithProjection(pb).Build()
}

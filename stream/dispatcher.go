package stream

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/facet/discriminator"
)

// HandlerFunc processes one classified stream record.
type HandlerFunc func(ctx context.Context, rec discriminator.Record) error

// Dispatcher routes DynamoDB stream records to per-entity handlers through
// a compiled Route.
type Dispatcher struct {
	route    *Route
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher for the given route.
func NewDispatcher(route *Route, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		route:    route,
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// On registers the handler invoked for records classified as the given
// entity. Registering again replaces the previous handler.
func (d *Dispatcher) On(entityID string, fn HandlerFunc) {
	d.handlers[entityID] = fn
}

// HandleStream processes a DynamoDB stream event, classifying each record
// through the route table and dispatching it to the matching entity's
// handler. This function is designed to be used as an AWS Lambda handler.
//
// Unroutable records are logged and skipped; a handler error aborts the
// batch so the event is retried.
func (d *Dispatcher) HandleStream(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := d.processRecord(ctx, record); err != nil {
			d.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord classifies and dispatches a single stream record.
func (d *Dispatcher) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	image := record.Change.NewImage
	if record.EventName == "REMOVE" {
		image = record.Change.OldImage
	}
	if len(image) == 0 {
		// KEYS_ONLY stream views carry no image to classify.
		d.logger.Warn("stream record has no image, skipping",
			"eventID", record.EventID,
			"eventName", record.EventName,
		)
		return nil
	}

	rec := ConvertStreamImage(image)
	entity := d.route.Match(rec)
	if entity == nil {
		d.logger.Warn("record matches no routed entity, skipping",
			"eventID", record.EventID,
			"attribute", d.route.Attribute,
		)
		return nil
	}

	fn, ok := d.handlers[entity.ID]
	if !ok {
		d.logger.Debug("no handler registered for entity, skipping",
			"entity", entity.ID,
			"eventID", record.EventID,
		)
		return nil
	}

	d.logger.Info("dispatching record",
		"entity", entity.ID,
		"eventID", record.EventID,
		"eventName", record.EventName,
	)
	return fn(ctx, rec)
}

// ConvertStreamImage converts a DynamoDB stream image to a Record.
// Use this when passing stream images to the classifier, validation, or an
// attributevalue unmarshal. All attribute types survive the conversion;
// lists and maps convert recursively.
func ConvertStreamImage(image map[string]events.DynamoDBAttributeValue) discriminator.Record {
	rec := make(discriminator.Record, len(image))
	for k, v := range image {
		if av := convertStreamValue(v); av != nil {
			rec[k] = av
		}
	}
	return rec
}

// convertStreamValue converts a single stream attribute value.
func convertStreamValue(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: v.IsNull()}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(v.List()))
		for _, item := range v.List() {
			list = append(list, convertStreamValue(item))
		}
		return &types.AttributeValueMemberL{Value: list}
	case events.DataTypeMap:
		m := make(map[string]types.AttributeValue, len(v.Map()))
		for k, item := range v.Map() {
			m[k] = convertStreamValue(item)
		}
		return &types.AttributeValueMemberM{Value: m}
	}
	return nil
}

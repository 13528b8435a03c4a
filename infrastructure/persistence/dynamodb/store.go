// Package dynamodb implements the document store on DynamoDB using a
// single-table layout. Each document lives under PK
// "<COLLECTION>#<id>" / SK "METADATA" with its body nested in the Doc
// attribute; GSI1 keys every item by collection so Query can list a
// collection without scanning the table.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"learnhub-backend/infrastructure/persistence/abstractions"
	apperrors "learnhub-backend/pkg/errors"
)

// Store implements abstractions.Store on DynamoDB.
type Store struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewStore creates a DynamoDB-backed document store.
func NewStore(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

func pk(collection, id string) string {
	return fmt.Sprintf("%s#%s", strings.ToUpper(collection), id)
}

func gsi1pk(collection string) string {
	return fmt.Sprintf("COLLECTION#%s", collection)
}

const metadataSK = "METADATA"

// Get retrieves one document by id, or (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, collection, id string) (abstractions.Document, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(collection, id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
	}

	result, err := s.client.GetItem(ctx, input)
	if err != nil {
		return nil, s.wrapTransport("get", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	return unmarshalDoc(result.Item)
}

// Query returns the documents of a collection matching the criteria.
// Equality filters are pushed down as a FilterExpression; everything
// richer happens in application memory by design.
func (s *Store) Query(ctx context.Context, collection string, criteria abstractions.QueryCriteria) ([]abstractions.Document, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(s.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gsi1pk(collection)},
		},
	}

	if len(criteria.Filters) > 0 {
		exprs := make([]string, 0, len(criteria.Filters))
		input.ExpressionAttributeNames = map[string]string{"#doc": "Doc"}
		for i, f := range criteria.Filters {
			nameKey := fmt.Sprintf("#f%d", i)
			valueKey := fmt.Sprintf(":v%d", i)
			input.ExpressionAttributeNames[nameKey] = f.Field
			av, err := attributevalue.Marshal(f.Value)
			if err != nil {
				return nil, apperrors.NewDatabaseError("query", err)
			}
			input.ExpressionAttributeValues[valueKey] = av
			exprs = append(exprs, fmt.Sprintf("#doc.%s = %s", nameKey, valueKey))
		}
		input.FilterExpression = aws.String(strings.Join(exprs, " AND "))
	}
	// DynamoDB applies Limit before the FilterExpression, so pushing
	// it down with filters present would under-return matches. The
	// limit is enforced client-side after filtering instead.
	if criteria.Limit > 0 && len(criteria.Filters) == 0 {
		input.Limit = aws.Int32(int32(criteria.Limit))
	}

	var docs []abstractions.Document
	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, s.wrapTransport("query", err)
		}

		for _, item := range result.Items {
			doc, err := unmarshalDoc(item)
			if err != nil {
				s.logger.Warn("Skipping malformed document",
					zap.String("collection", collection),
					zap.Error(err),
				)
				continue
			}
			docs = append(docs, doc)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		if criteria.Limit > 0 && len(docs) >= criteria.Limit {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if criteria.Limit > 0 && len(docs) > criteria.Limit {
		docs = docs[:criteria.Limit]
	}
	return docs, nil
}

// Set creates or replaces a document.
func (s *Store) Set(ctx context.Context, collection, id string, doc abstractions.Document) error {
	item, err := marshalItem(collection, id, doc)
	if err != nil {
		return apperrors.NewDatabaseError("set", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return s.wrapTransport("set", err)
	}

	s.logger.Debug("Document written",
		zap.String("collection", collection),
		zap.String("id", id),
	)
	return nil
}

// Update merges the given fields into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, partial abstractions.Document) error {
	expr, names, values, err := buildUpdateExpression(partial)
	if err != nil {
		return apperrors.NewDatabaseError("update", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(collection, id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperrors.NewNotFoundError("document " + collection + "/" + id)
		}
		return s.wrapTransport("update", err)
	}
	return nil
}

// Delete removes an existing document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk(collection, id)},
			"SK": &types.AttributeValueMemberS{Value: metadataSK},
		},
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperrors.NewNotFoundError("document " + collection + "/" + id)
		}
		return s.wrapTransport("delete", err)
	}
	return nil
}

// AtomicBatch commits all staged operations in one TransactWriteItems
// call. TransactWriteItems allows at most one operation per item, so
// ops targeting the same document are coalesced first: an update
// staged after a set in the same batch is folded into that set.
func (s *Store) AtomicBatch(ctx context.Context, ops []abstractions.BatchOp) error {
	coalesced := coalesce(ops)

	if len(coalesced) > 25 {
		return apperrors.NewValidationError(
			fmt.Sprintf("atomic batch exceeds safe limit of 25 items: %d", len(coalesced)))
	}

	transactItems := make([]types.TransactWriteItem, 0, len(coalesced))
	for _, op := range coalesced {
		switch op.Kind {
		case abstractions.BatchSet:
			item, err := marshalItem(op.Collection, op.ID, op.Doc)
			if err != nil {
				return apperrors.NewDatabaseError("batch", err)
			}
			transactItems = append(transactItems, types.TransactWriteItem{
				Put: &types.Put{
					TableName: aws.String(s.tableName),
					Item:      item,
				},
			})
		case abstractions.BatchUpdate:
			expr, names, values, err := buildUpdateExpression(op.Doc)
			if err != nil {
				return apperrors.NewDatabaseError("batch", err)
			}
			transactItems = append(transactItems, types.TransactWriteItem{
				Update: &types.Update{
					TableName: aws.String(s.tableName),
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: pk(op.Collection, op.ID)},
						"SK": &types.AttributeValueMemberS{Value: metadataSK},
					},
					UpdateExpression:          aws.String(expr),
					ExpressionAttributeNames:  names,
					ExpressionAttributeValues: values,
					ConditionExpression:       aws.String("attribute_exists(PK)"),
				},
			})
		default:
			return apperrors.NewValidationError("unknown batch operation kind: " + string(op.Kind))
		}
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return apperrors.NewNotFoundError("batch update target")
				}
			}
		}
		return s.wrapTransport("batch", err)
	}

	s.logger.Info("Atomic batch committed",
		zap.Int("ops", len(coalesced)),
	)
	return nil
}

// coalesce folds updates into an earlier set or update on the same
// document, preserving the order of first appearance.
func coalesce(ops []abstractions.BatchOp) []abstractions.BatchOp {
	out := make([]abstractions.BatchOp, 0, len(ops))
	index := make(map[string]int)

	for _, op := range ops {
		key := op.Collection + "/" + op.ID
		i, seen := index[key]
		if !seen {
			copied := op
			copied.Doc = copyInto(abstractions.Document{}, op.Doc)
			index[key] = len(out)
			out = append(out, copied)
			continue
		}
		out[i].Doc = copyInto(out[i].Doc, op.Doc)
	}
	return out
}

func copyInto(dst, src abstractions.Document) abstractions.Document {
	for field, value := range src {
		dst[field] = value
	}
	return dst
}

func marshalItem(collection, id string, doc abstractions.Document) (map[string]types.AttributeValue, error) {
	docAV, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: pk(collection, id)},
		"SK":         &types.AttributeValueMemberS{Value: metadataSK},
		"GSI1PK":     &types.AttributeValueMemberS{Value: gsi1pk(collection)},
		"GSI1SK":     &types.AttributeValueMemberS{Value: id},
		"Collection": &types.AttributeValueMemberS{Value: collection},
		"DocID":      &types.AttributeValueMemberS{Value: id},
		"Doc":        &types.AttributeValueMemberM{Value: docAV},
	}, nil
}

func unmarshalDoc(item map[string]types.AttributeValue) (abstractions.Document, error) {
	raw, ok := item["Doc"]
	if !ok {
		return nil, fmt.Errorf("item missing Doc attribute")
	}
	var doc abstractions.Document
	if err := attributevalue.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return doc, nil
}

func buildUpdateExpression(partial abstractions.Document) (string, map[string]string, map[string]types.AttributeValue, error) {
	if len(partial) == 0 {
		return "", nil, nil, fmt.Errorf("empty update")
	}
	names := map[string]string{"#doc": "Doc"}
	values := make(map[string]types.AttributeValue, len(partial))
	exprs := make([]string, 0, len(partial))

	i := 0
	for field, value := range partial {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = field
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return "", nil, nil, fmt.Errorf("failed to marshal field %s: %w", field, err)
		}
		values[valueKey] = av
		exprs = append(exprs, fmt.Sprintf("#doc.%s = %s", nameKey, valueKey))
		i++
	}

	return "SET " + strings.Join(exprs, ", "), names, values, nil
}

func (s *Store) wrapTransport(operation string, err error) error {
	s.logger.Error("DynamoDB operation failed",
		zap.String("operation", operation),
		zap.Error(err),
	)
	return apperrors.NewUnavailableError("dynamodb", err)
}

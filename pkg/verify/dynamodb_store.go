package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBCounterStore persists verification attempt records in
// DynamoDB so the cap holds across instances. Entries carry a TTL one
// hour past the newest attempt and expire on their own.
type DynamoDBCounterStore struct {
	client    *dynamodb.Client
	tableName string
}

type counterEntry struct {
	PK       string   `dynamodbav:"PK"`
	SK       string   `dynamodbav:"SK"`
	Attempts []string `dynamodbav:"Attempts"`
	TTL      int64    `dynamodbav:"TTL"`
}

// NewDynamoDBCounterStore creates a DynamoDB-backed counter store.
func NewDynamoDBCounterStore(client *dynamodb.Client, tableName string) *DynamoDBCounterStore {
	return &DynamoDBCounterStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoDBCounterStore) key(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "RATELIMIT#" + key},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

func (s *DynamoDBCounterStore) Attempts(ctx context.Context, key string) ([]time.Time, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read attempt record: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var entry counterEntry
	if err := attributevalue.UnmarshalMap(result.Item, &entry); err != nil {
		return nil, fmt.Errorf("failed to parse attempt record: %w", err)
	}

	attempts := make([]time.Time, 0, len(entry.Attempts))
	for _, raw := range entry.Attempts {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			continue
		}
		attempts = append(attempts, at)
	}
	return attempts, nil
}

func (s *DynamoDBCounterStore) Record(ctx context.Context, key string, attempts []time.Time) error {
	raw := make([]string, 0, len(attempts))
	var newest time.Time
	for _, at := range attempts {
		raw = append(raw, at.UTC().Format(time.RFC3339Nano))
		if at.After(newest) {
			newest = at
		}
	}

	entry := counterEntry{
		PK:       "RATELIMIT#" + key,
		SK:       "METADATA",
		Attempts: raw,
		TTL:      newest.Add(time.Hour).Unix(),
	}

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal attempt record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to write attempt record: %w", err)
	}
	return nil
}

func (s *DynamoDBCounterStore) Reset(ctx context.Context, key string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(key),
	})
	if err != nil {
		return fmt.Errorf("failed to clear attempt record: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"

	"github.com/arpejfinder/residence-notifier/internal/config"
	"github.com/arpejfinder/residence-notifier/internal/models"
)

// DynamoStore implements Store using AWS DynamoDB. SentRecords have no
// natural unique key, so each item gets a synthetic record_id partition key;
// range reads scan on the datetime attribute.
type DynamoStore struct {
	client    *dynamodb.DynamoDB
	tableName string
}

// NewDynamoStore creates a new DynamoDB store instance
func NewDynamoStore(cfg config.StorageConfig) (*DynamoStore, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	// For local testing with DynamoDB Local
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	store := &DynamoStore{
		client:    dynamodb.New(sess),
		tableName: cfg.TableName,
	}

	// Create table if it doesn't exist (for local testing)
	if err := store.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure table exists: %w", err)
	}

	return store, nil
}

// ensureTable creates the DynamoDB table if it doesn't exist
func (d *DynamoStore) ensureTable() error {
	_, err := d.client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err == nil {
		return nil // Table already exists
	}

	input := &dynamodb.CreateTableInput{
		TableName: aws.String(d.tableName),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("record_id"),
				KeyType:       aws.String("HASH"),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("record_id"),
				AttributeType: aws.String("S"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	}

	if _, err := d.client.CreateTable(input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return d.client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
}

// FindSentBetween scans for records whose datetime falls within the inclusive
// range. Datetimes are stored as RFC 3339 strings, which order
// lexicographically within one UTC offset.
func (d *DynamoStore) FindSentBetween(ctx context.Context, start, end time.Time) ([]models.SentRecord, error) {
	startAttr, err := dynamodbattribute.Marshal(start)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal range start: %w", err)
	}
	endAttr, err := dynamodbattribute.Marshal(end)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal range end: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:        aws.String(d.tableName),
		FilterExpression: aws.String("#dt BETWEEN :start AND :end"),
		ExpressionAttributeNames: map[string]*string{
			"#dt": aws.String("datetime"),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":start": startAttr,
			":end":   endAttr,
		},
	}

	result, err := d.client.ScanWithContext(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan sent records: %w", err)
	}

	var records []models.SentRecord
	if err := dynamodbattribute.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sent records: %w", err)
	}

	return records, nil
}

// RecordSent stores one item per record.
func (d *DynamoStore) RecordSent(ctx context.Context, records []models.SentRecord) error {
	for _, record := range records {
		item, err := dynamodbattribute.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal sent record for residence %s: %w", record.ID, err)
		}

		item["record_id"] = &dynamodb.AttributeValue{
			S: aws.String(fmt.Sprintf("%s#%s#%s#%d", record.ID, record.PriceFrom, record.PriceTo, record.Datetime.UnixNano())),
		}

		_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(d.tableName),
			Item:      item,
		})
		if err != nil {
			return fmt.Errorf("failed to store sent record for residence %s: %w", record.ID, err)
		}
	}

	return nil
}

// Ping verifies the table is reachable.
func (d *DynamoStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	return err
}

// Close closes the DynamoDB connection
func (d *DynamoStore) Close(ctx context.Context) error {
	// DynamoDB client doesn't need explicit closing
	return nil
}

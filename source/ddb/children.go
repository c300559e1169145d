/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"
)

// queryChildren reads every child item of parentPath from the children
// index, following pagination, in ascending sort key order.
func (d *DynamodbSource) queryChildren(ctx context.Context, parentPath string) ([]map[string]types.AttributeValue, error) {
	keyCond := fmt.Sprintf("%s = :pk", ChildrenIndex.PartitionKeyName)
	input := &sdk.QueryInput{
		TableName:              &d.tableName,
		IndexName:              aws.String(ChildrenIndex.IndexName),
		KeyConditionExpression: &keyCond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{
				Value: expandKey(KeyTemplates[ChildrenIndex.PartitionKeyName], map[string]string{"ParentPath": parentPath}),
			},
		},
		Limit:            aws.Int32(d.options.PageSize),
		ScanIndexForward: aws.Bool(true),
	}

	var items []map[string]types.AttributeValue
	pages := 0
	for {
		out, err := d.queryWithRetry(ctx, input)
		if err != nil {
			return nil, err
		}
		pages++
		items = append(items, out.Items...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	d.options.Logger.WithFields(logrus.Fields{
		"parent":   parentPath,
		"children": len(items),
		"pages":    pages,
	}).Trace("queried children")
	return items, nil
}

// queryWithRetry executes a query with configurable retry logic
func (d *DynamodbSource) queryWithRetry(ctx context.Context, input *sdk.QueryInput) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= d.options.MaxRetries; attempt++ {
		// Check context before retry
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("query error: %w", err)
		}

		// Don't sleep after last attempt
		if attempt < d.options.MaxRetries {
			backoff := time.Duration(attempt+1) * d.options.RetryBackoff
			d.options.Logger.WithError(err).WithField("attempt", attempt+1).Warn("children query throttled, retrying")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", d.options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if errors.As(err, &throughput) || errors.As(err, &limit) || errors.As(err, &internal) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ RetryableError() bool }
	if errors.As(err, &retryable) {
		return retryable.RetryableError()
	}

	return false
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeClient is an in-memory table supporting the node layout: GetItem and
// PutItem on PK/SK, and paginated Query on the children index.
type fakeClient struct {
	mu         sync.Mutex
	items      map[string]map[string]types.AttributeValue
	throttle   int
	queryErr   error
	queryCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeClient) GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[str(params.Key[AttrPK])+"|"+str(params.Key[AttrSK])]
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[str(params.Item[AttrPK])+"|"+str(params.Item[AttrSK])] = copyItem(params.Item)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++

	if f.throttle > 0 {
		f.throttle--
		return nil, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	pk := str(params.ExpressionAttributeValues[":pk"])
	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if str(item[AttrPK1]) == pk {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return str(matched[i][AttrSK1]) < str(matched[j][AttrSK1])
	})

	start := 0
	if params.ExclusiveStartKey != nil {
		after := str(params.ExclusiveStartKey[AttrSK1])
		for start < len(matched) && str(matched[start][AttrSK1]) <= after {
			start++
		}
	}
	end := len(matched)
	if params.Limit != nil && start+int(*params.Limit) < end {
		end = start + int(*params.Limit)
	}

	out := &sdk.QueryOutput{}
	for _, item := range matched[start:end] {
		out.Items = append(out.Items, copyItem(item))
	}
	if end < len(matched) {
		last := matched[end-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			AttrPK:  last[AttrPK],
			AttrSK:  last[AttrSK],
			AttrPK1: last[AttrPK1],
			AttrSK1: last[AttrSK1],
		}
	}
	return out, nil
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	c := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		c[k] = v
	}
	return c
}

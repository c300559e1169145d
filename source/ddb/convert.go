/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/ugcexport/node"
)

// toValue classifies a DynamoDB attribute as a node property value.
//
// Strings and numbers named in timestamps are parsed as instants: strings
// in any strfmt date-time layout, numbers as epoch milliseconds.
func toValue(name string, av types.AttributeValue, timestamps map[string]bool) (node.Value, error) {
	switch tv := av.(type) {
	case *types.AttributeValueMemberS:
		if timestamps[name] {
			dt, err := strfmt.ParseDateTime(tv.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: invalid date-time %q: %w", name, tv.Value, err)
			}
			return node.Timestamp(time.Time(dt)), nil
		}
		return node.Scalar{V: tv.Value}, nil

	case *types.AttributeValueMemberN:
		if timestamps[name] {
			ms, err := strconv.ParseInt(tv.Value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: invalid epoch milliseconds %q: %w", name, tv.Value, err)
			}
			return node.Timestamp(time.UnixMilli(ms).UTC()), nil
		}
		return node.Scalar{V: json.Number(tv.Value)}, nil

	case *types.AttributeValueMemberBOOL:
		return node.Scalar{V: tv.Value}, nil

	case *types.AttributeValueMemberNULL:
		return node.Scalar{V: nil}, nil

	case *types.AttributeValueMemberSS:
		return node.StringList(append([]string{}, tv.Value...)), nil

	case *types.AttributeValueMemberL:
		if list, ok := stringList(tv.Value); ok {
			return list, nil
		}

	case *types.AttributeValueMemberB:
		return node.Binary{R: bytes.NewReader(tv.Value)}, nil
	}

	// NS, BS, M and mixed lists pass through as opaque scalars.
	var v any
	if err := attributevalue.Unmarshal(av, &v); err != nil {
		return nil, fmt.Errorf("attribute %q: failed to unmarshal: %w", name, err)
	}
	return node.Scalar{V: v}, nil
}

func stringList(values []types.AttributeValue) (node.StringList, bool) {
	list := make(node.StringList, 0, len(values))
	for _, v := range values {
		s, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			return nil, false
		}
		list = append(list, s.Value)
	}
	return list, true
}

// itemToNode builds a childless node from an item. Properties are sorted by
// attribute name because DynamoDB items are unordered.
func itemToNode(item map[string]types.AttributeValue, timestamps map[string]bool) (*node.Mem, string, error) {
	var nodePath string
	attr, ok := item[AttrPath]
	if !ok {
		return nil, "", fmt.Errorf("item has no %s attribute", AttrPath)
	}
	if err := attributevalue.Unmarshal(attr, &nodePath); err != nil || nodePath == "" {
		return nil, "", fmt.Errorf("item has an invalid %s attribute", AttrPath)
	}

	name := path.Base(nodePath)
	if attr, ok := item[AttrName]; ok {
		if err := attributevalue.Unmarshal(attr, &name); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal %s: %w", AttrName, err)
		}
	}

	names := make([]string, 0, len(item))
	for k := range item {
		if !reservedAttributes[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	n := node.NewMem(name)
	for _, k := range names {
		v, err := toValue(k, item[k], timestamps)
		if err != nil {
			return nil, "", fmt.Errorf("node %q: %w", nodePath, err)
		}
		n.Set(k, v)
	}
	return n, nodePath, nil
}

// fromValue converts a property value to a DynamoDB attribute. Binary
// sources are read fully; timestamps are stored as RFC 3339 strings.
func fromValue(v node.Value) (types.AttributeValue, error) {
	switch tv := v.(type) {
	case node.Scalar:
		if num, ok := tv.V.(json.Number); ok {
			return &types.AttributeValueMemberN{Value: num.String()}, nil
		}
		return attributevalue.Marshal(tv.V)
	case node.StringList:
		list := make([]types.AttributeValue, 0, len(tv))
		for _, s := range tv {
			list = append(list, &types.AttributeValueMemberS{Value: s})
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case node.Timestamp:
		return &types.AttributeValueMemberS{Value: strfmt.DateTime(time.Time(tv)).String()}, nil
	case node.Binary:
		if tv.R == nil {
			return &types.AttributeValueMemberB{Value: []byte{}}, nil
		}
		data, err := io.ReadAll(tv.R)
		if err != nil {
			return nil, fmt.Errorf("failed to read binary value: %w", err)
		}
		return &types.AttributeValueMemberB{Value: data}, nil
	}
	return &types.AttributeValueMemberNULL{Value: true}, nil
}

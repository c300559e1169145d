/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	uerrors "github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/node"
)

// DynamodbSource implements source.Source by reading node items from a DynamoDB table.
type DynamodbSource struct {
	client    Client
	tableName string
	options   Options
}

// Options configures a DynamodbSource
type Options struct {
	TimestampAttributes map[string]bool // Attributes read as timestamps
	PageSize            int32           // Items per children query page (default: 100)
	MaxRetries          int             // Retry attempts for throttling errors (default: 3)
	RetryBackoff        time.Duration   // Backoff between retries, grows linearly (default: 1s)
	MaxNodes            int             // Upper bound on nodes per Load, 0 for unbounded (default: 0)
	Logger              *logrus.Entry   // Logger (default: standard logger)
}

// Option is a functional option for configuring a DynamodbSource
type Option func(*Options)

// DefaultOptions returns default source options
func DefaultOptions() Options {
	return Options{
		TimestampAttributes: map[string]bool{},
		PageSize:            100,
		MaxRetries:          3,
		RetryBackoff:        time.Second,
		Logger:              logrus.NewEntry(logrus.StandardLogger()),
	}
}

// WithTimestampAttributes marks attributes to be read as timestamps
func WithTimestampAttributes(names ...string) Option {
	return func(opts *Options) {
		for _, name := range names {
			opts.TimestampAttributes[name] = true
		}
	}
}

// WithPageSize sets the DynamoDB page size for children queries
func WithPageSize(size int32) Option {
	return func(opts *Options) {
		opts.PageSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) Option {
	return func(opts *Options) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) Option {
	return func(opts *Options) {
		opts.RetryBackoff = backoff
	}
}

// WithMaxNodes bounds the number of nodes a single Load may read
func WithMaxNodes(n int) Option {
	return func(opts *Options) {
		opts.MaxNodes = n
	}
}

// WithLogger sets the logger
func WithLogger(logger *logrus.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// NewDynamodbSource constructs a source reading tableName through client.
func NewDynamodbSource(client Client, tableName string, opts ...Option) *DynamodbSource {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &DynamodbSource{
		client:    client,
		tableName: tableName,
		options:   options,
	}
}

// Load reads the node at nodePath and its whole subtree. Children are read
// breadth-first through the children index, each level in index order.
func (d *DynamodbSource) Load(ctx context.Context, nodePath string) (node.Node, error) {
	nodePath = cleanPath(nodePath)

	out, err := d.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &d.tableName,
		Key:       nodeKey(nodePath),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, uerrors.NewNotFoundError("Node", nodePath)
	}

	root, _, err := itemToNode(out.Item, d.options.TimestampAttributes)
	if err != nil {
		return nil, err
	}

	type pending struct {
		n    *node.Mem
		path string
	}
	queue := []pending{{n: root, path: nodePath}}
	loaded := 1

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		items, err := d.queryChildren(ctx, next.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load children of %q: %w", next.path, err)
		}
		for _, item := range items {
			child, childPath, err := itemToNode(item, d.options.TimestampAttributes)
			if err != nil {
				return nil, err
			}
			loaded++
			if d.options.MaxNodes > 0 && loaded > d.options.MaxNodes {
				return nil, uerrors.NewValidationError("path",
					fmt.Sprintf("subtree of %q has more than %d nodes", nodePath, d.options.MaxNodes))
			}
			next.n.AddChild(child)
			queue = append(queue, pending{n: child, path: childPath})
		}
	}

	d.options.Logger.WithFields(logrus.Fields{
		"path":  nodePath,
		"nodes": loaded,
	}).Debug("loaded node tree")
	return root, nil
}

// Put stores n and its subtree under parentPath. Children are ordered by
// their position in n. Binary values are read fully.
func (d *DynamodbSource) Put(ctx context.Context, parentPath string, n node.Node) error {
	return d.put(ctx, childPath(cleanPath(parentPath), n.Name()), 0, n)
}

func (d *DynamodbSource) put(ctx context.Context, nodePath string, order int, n node.Node) error {
	item := make(map[string]types.AttributeValue, len(n.Properties())+8)
	for _, p := range n.Properties() {
		if reservedAttributes[p.Name] {
			return uerrors.NewValidationError(p.Name, "property name is reserved by the table layout")
		}
		av, err := fromValue(p.Value)
		if err != nil {
			return fmt.Errorf("node %q property %q: %w", nodePath, p.Name, err)
		}
		item[p.Name] = av
	}

	values := keyValues(nodePath, order)
	for attr, template := range KeyTemplates {
		item[attr] = &types.AttributeValueMemberS{Value: expandKey(template, values)}
	}
	item[AttrPath] = &types.AttributeValueMemberS{Value: nodePath}
	item[AttrParentPath] = &types.AttributeValueMemberS{Value: values["ParentPath"]}
	item[AttrName] = &types.AttributeValueMemberS{Value: n.Name()}
	item[AttrOrder] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", order)}
	item[AttrEntityType] = &types.AttributeValueMemberS{Value: nodeEntityType}

	if _, err := d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &d.tableName,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}

	for i, child := range n.Children() {
		if err := d.put(ctx, childPath(nodePath, child.Name()), i, child); err != nil {
			return err
		}
	}
	return nil
}

func nodeKey(nodePath string) map[string]types.AttributeValue {
	values := keyValues(nodePath, 0)
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: expandKey(KeyTemplates[AttrPK], values)},
		AttrSK: &types.AttributeValueMemberS{Value: expandKey(KeyTemplates[AttrSK], values)},
	}
}

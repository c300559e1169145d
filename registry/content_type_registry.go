/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Content type labels written to ugcExport:contentType.
const (
	LabelForum    = "forum"
	LabelQnAForum = "qnaForum"
)

// Resource types registered by default.
const (
	ForumResourceType    = "social/forum/components/hbs/forum"
	QnAForumResourceType = "social/qna/components/hbs/qnaforum"
)

var (
	contentTypes = map[string]string{
		ForumResourceType:    LabelForum,
		QnAForumResourceType: LabelQnAForum,
	}
	mu sync.RWMutex
)

// RegisterContentType associates a resource type with the content type label it exports as.
// If the resource type is already registered, it panics to prevent accidental overrides.
func RegisterContentType(resourceType, label string) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := contentTypes[resourceType]; exists {
		panic(fmt.Sprintf("content type registry: resource type %q already registered", resourceType))
	}
	contentTypes[resourceType] = label
}

// ContentType returns the label registered for resourceType, if any.
func ContentType(resourceType string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()

	label, ok := contentTypes[resourceType]
	return label, ok
}

// ResourceTypes lists the registered resource types in sorted order.
func ResourceTypes() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(contentTypes))
	for t := range contentTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

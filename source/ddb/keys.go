/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// GSIConfig holds the configuration for GSI key mappings
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the actual partition key attribute name in the GSI (e.g., "PK1")
	PartitionKeyName string
	// SortKeyName is the actual sort key attribute name in the GSI (e.g., "SK1")
	SortKeyName string
}

// ChildrenIndex is the GSI that lists the children of a node in order.
var ChildrenIndex = GSIConfig{
	IndexName:        "GSI1",
	PartitionKeyName: AttrPK1,
	SortKeyName:      AttrSK1,
}

// Attribute names of the node table layout.
const (
	AttrPK         = "PK"
	AttrSK         = "SK"
	AttrPK1        = "PK1"
	AttrSK1        = "SK1"
	AttrPath       = "Path"
	AttrParentPath = "ParentPath"
	AttrName       = "Name"
	AttrOrder      = "Order"
	AttrEntityType = "EntityType"

	nodeEntityType = "Node"
)

// KeyTemplates are expanded with the node's Path, ParentPath, Name and Order.
var KeyTemplates = map[string]string{
	AttrPK:  "NODE#{Path}",
	AttrSK:  "NODE",
	AttrPK1: "PARENT#{ParentPath}",
	AttrSK1: "{Order}#{Name}",
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandKey replaces each {Field} macro in template with values[Field].
// Unknown macros expand to the empty string.
func expandKey(template string, values map[string]string) string {
	return macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		return values[strings.Trim(macro, "{}")]
	})
}

// keyValues returns the macro values of the node at nodePath.
func keyValues(nodePath string, order int) map[string]string {
	return map[string]string{
		"Path":       nodePath,
		"ParentPath": parentPath(nodePath),
		"Name":       path.Base(nodePath),
		"Order":      fmt.Sprintf("%06d", order),
	}
}

// cleanPath normalizes a node path to an absolute, slash-separated form.
func cleanPath(p string) string {
	return path.Clean("/" + p)
}

func parentPath(p string) string {
	if p == "/" {
		return ""
	}
	return path.Dir(p)
}

func childPath(parent, name string) string {
	return path.Join(parent, name)
}

// reservedAttributes are layout attributes that are never exported as properties.
var reservedAttributes = map[string]bool{
	AttrPK:         true,
	AttrSK:         true,
	AttrPK1:        true,
	AttrSK1:        true,
	AttrPath:       true,
	AttrParentPath: true,
	AttrName:       true,
	AttrOrder:      true,
	AttrEntityType: true,
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package node

import (
	"io"
	"time"
)

// Node is a hierarchical record with named typed properties and named children.
// Implementations enumerate properties and children in their own stable order.
type Node interface {
	Name() string
	Properties() []Property
	Children() []Node
}

// Property is a single named value of a Node.
type Property struct {
	Name  string
	Value Value
}

// Value is the closed set of property value kinds: Scalar, StringList, Timestamp and Binary.
type Value interface {
	isValue()
}

// Scalar holds a string, number, boolean or any other value that is written as-is.
type Scalar struct {
	V any
}

// StringList holds an ordered sequence of strings.
type StringList []string

// Timestamp holds an instant. It is exported with millisecond precision.
type Timestamp time.Time

// Binary holds a sequential, single-pass byte source of unknown length.
type Binary struct {
	R io.Reader
}

func (Scalar) isValue()     {}
func (StringList) isValue() {}
func (Timestamp) isValue()  {}
func (Binary) isValue()     {}

// UnixMilli returns the timestamp as milliseconds since the Unix epoch.
func (t Timestamp) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

// Find returns the named property of n, if any.
func Find(n Node, name string) (Value, bool) {
	for _, p := range n.Properties() {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Child returns the named child of n, if any.
func Child(n Node, name string) (Node, bool) {
	for _, c := range n.Children() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

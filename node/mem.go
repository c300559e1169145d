/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package node

import (
	"io"
	"time"
)

// Mem is an in-memory Node. Properties and children keep insertion order.
type Mem struct {
	name     string
	props    []Property
	children []Node
}

// NewMem creates an empty in-memory node with the given name.
func NewMem(name string) *Mem {
	return &Mem{name: name}
}

func (m *Mem) Name() string           { return m.name }
func (m *Mem) Properties() []Property { return m.props }
func (m *Mem) Children() []Node       { return m.children }

// Set appends a property. A property with the same name is replaced in place.
func (m *Mem) Set(name string, v Value) *Mem {
	for i := range m.props {
		if m.props[i].Name == name {
			m.props[i].Value = v
			return m
		}
	}
	m.props = append(m.props, Property{Name: name, Value: v})
	return m
}

// SetScalar sets a scalar property.
func (m *Mem) SetScalar(name string, v any) *Mem {
	return m.Set(name, Scalar{V: v})
}

// SetStrings sets a string list property.
func (m *Mem) SetStrings(name string, v ...string) *Mem {
	return m.Set(name, StringList(v))
}

// SetTime sets a timestamp property.
func (m *Mem) SetTime(name string, t time.Time) *Mem {
	return m.Set(name, Timestamp(t))
}

// SetBinary sets a binary property read from r.
func (m *Mem) SetBinary(name string, r io.Reader) *Mem {
	return m.Set(name, Binary{R: r})
}

// AddChild appends a child node.
func (m *Mem) AddChild(child Node) *Mem {
	m.children = append(m.children, child)
	return m
}

// NewChild creates, appends and returns a new in-memory child.
func (m *Mem) NewChild(name string) *Mem {
	c := NewMem(name)
	m.children = append(m.children, c)
	return c
}

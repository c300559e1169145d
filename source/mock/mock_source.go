/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of source.Source for testing
package mock

import (
	"context"
	"path"
	"sort"
	"sync"

	"github.com/suparena/ugcexport/errors"
	"github.com/suparena/ugcexport/node"
)

// Source is a mock implementation of source.Source keyed by node path
type Source struct {
	mu        sync.RWMutex
	data      map[string]node.Node
	loadFunc  func(ctx context.Context, path string) (node.Node, error)
	loadError error
	loads     int
}

// New creates a new, empty mock Source
func New() *Source {
	return &Source{
		data: make(map[string]node.Node),
	}
}

// WithLoadFunc sets a custom load function for testing
func (m *Source) WithLoadFunc(f func(ctx context.Context, path string) (node.Node, error)) *Source {
	m.loadFunc = f
	return m
}

// WithLoadError makes Load operations return an error
func (m *Source) WithLoadError(err error) *Source {
	m.loadError = err
	return m
}

// WithNode stores n at p
func (m *Source) WithNode(p string, n node.Node) *Source {
	m.Put(p, n)
	return m
}

// Put stores n at p, replacing any node already there
func (m *Source) Put(p string, n node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cleanPath(p)] = n
}

// Load returns the node stored at p
func (m *Source) Load(ctx context.Context, p string) (node.Node, error) {
	m.mu.Lock()
	m.loads++
	m.mu.Unlock()

	if m.loadError != nil {
		return nil, m.loadError
	}
	if m.loadFunc != nil {
		return m.loadFunc(ctx, p)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	p = cleanPath(p)
	if n, exists := m.data[p]; exists {
		return n, nil
	}
	return nil, errors.NewNotFoundError("Node", p)
}

// Helper methods for testing

// SetData directly sets the internal data map (for testing)
func (m *Source) SetData(data map[string]node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]node.Node, len(data))
	for k, v := range data {
		m.data[cleanPath(k)] = v
	}
}

// Paths returns the stored paths in sorted order
func (m *Source) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.data))
	for k := range m.data {
		paths = append(paths, k)
	}
	sort.Strings(paths)
	return paths
}

// Count returns the number of stored nodes
func (m *Source) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Loads returns how many times Load has been called
func (m *Source) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}

// Clear removes all data
func (m *Source) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]node.Node)
}

func cleanPath(p string) string {
	return path.Clean("/" + p)
}

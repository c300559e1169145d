/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package source

import (
	"context"

	"github.com/suparena/ugcexport/node"
)

// Source loads node trees to export.
type Source interface {
	// Load returns the node at path with its whole subtree. A missing node is an errors.NotFoundError.
	Load(ctx context.Context, path string) (node.Node, error)
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context, path string) (node.Node, error)

// Load calls f.
func (f Func) Load(ctx context.Context, path string) (node.Node, error) {
	return f(ctx, path)
}

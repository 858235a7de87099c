package cerebrum

import (
	"context"
	"errors"

	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

var ErrAlreadyComposed = errors.New("prim index already composed")

// Composer builds the prim index at a path. It must be safe for concurrent
// use; Populate calls it from several workers at once.
type Composer interface {
	Compose(ctx context.Context, path sdfpath.Path) (pcp.PrimIndex, pcp.DynamicFileFormatDependencyData, error)
}

// Change is one edit of scene description. A change without Field is
// structural and affects everything composed from Path and below it. A field
// change only matters to prim indices whose dynamic file format arguments
// are computed from that field.
type Change struct {
	LayerStack pcp.LayerStack
	Path       sdfpath.Path
	Field      string
	OldValue   any
	NewValue   any
}

func (c Change) IsStructural() bool { return c.Field == "" }

// ChangeGroup holds the changes of one layer stack after demultiplexing.
type ChangeGroup struct {
	LayerStack pcp.LayerStack
	// Structural sites, with sites below another structural site dropped.
	Structural []sdfpath.Path
	// Field changes not already covered by a structural site.
	Fields []Change
}

// Result describes one invalidation transaction.
type Result struct {
	// Recomposed prim index paths in path order.
	Recomposed []sdfpath.Path
	// Failed holds the paths of Recomposed that were removed but could not
	// be composed again, set only when Invalidate returns an error.
	Failed []sdfpath.Path
	// Dropped layer stacks lost their last dependency and were not picked up
	// again by recomposition.
	Dropped []pcp.LayerStack
}

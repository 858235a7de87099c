package scene

import (
	"context"
	"fmt"

	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// Composer hands out the prebuilt prim indices of a scene as if it had
// composed them.
type Composer struct {
	scene *Scene
}

func NewComposer(s *Scene) *Composer {
	return &Composer{scene: s}
}

func (c *Composer) Compose(ctx context.Context, path sdfpath.Path) (pcp.PrimIndex, pcp.DynamicFileFormatDependencyData, error) {
	if err := ctx.Err(); err != nil {
		return nil, pcp.DynamicFileFormatDependencyData{}, err
	}
	p, ok := c.scene.PrimIndex(path)
	if !ok {
		return nil, pcp.DynamicFileFormatDependencyData{}, fmt.Errorf("%w: <%s>", ErrUnknownPrimIndex, path)
	}
	return p, p.FileFormatDependencyData(), nil
}

package scene

import "github.com/wabianimation/pcpdeps/src/system/pcp"

type Layer struct {
	id string
}

func (l *Layer) Identifier() string { return l.id }

// LayerStack is an ordered list of layers, strongest first. Handles are
// compared by pointer.
type LayerStack struct {
	id     string
	layers []*Layer
}

func (ls *LayerStack) Identifier() string { return ls.id }

func (ls *LayerStack) RootLayer() pcp.Layer { return ls.layers[0] }

func (ls *LayerStack) Layers() []pcp.Layer {
	out := make([]pcp.Layer, len(ls.layers))
	for i, l := range ls.layers {
		out[i] = l
	}
	return out
}

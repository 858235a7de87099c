package scene

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

var (
	ErrUnknownLayerStack = errors.New("unknown layer stack")
	ErrUnknownPrimIndex  = errors.New("unknown prim index")
	ErrUnknownFormat     = errors.New("unknown dynamic file format")
	ErrInvalidScene      = errors.New("invalid scene")
)

// Scene holds the layer stacks and the prim index definitions a Composer
// serves. It is safe for concurrent use.
type Scene struct {
	mu          sync.RWMutex
	layerStacks map[string]*LayerStack
	primIndices map[sdfpath.Path]*PrimIndex
}

func (s *Scene) LayerStack(id string) (*LayerStack, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ls, ok := s.layerStacks[id]
	return ls, ok
}

func (s *Scene) PrimIndex(path sdfpath.Path) (*PrimIndex, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.primIndices[path]
	return p, ok
}

// PrimIndexPaths returns the paths of all prim indices in path order.
func (s *Scene) PrimIndexPaths() []sdfpath.Path {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]sdfpath.Path, 0, len(s.primIndices))
	for p := range s.primIndices {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SetPrimIndex adds or replaces the definition at the prim index's path, the
// way authoring would change what composition produces.
func (s *Scene) SetPrimIndex(p *PrimIndex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primIndices[p.Path()] = p
}

func (s *Scene) RemovePrimIndex(path sdfpath.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.primIndices, path)
}

// Builder assembles a Scene. Layers with the same identifier are shared
// between layer stacks.
type Builder struct {
	layers      map[string]*Layer
	layerStacks map[string]*LayerStack
	primIndices []*PrimIndex
	errs        []error
}

func NewBuilder() *Builder {
	return &Builder{
		layers:      make(map[string]*Layer),
		layerStacks: make(map[string]*LayerStack),
	}
}

func (b *Builder) AddLayerStack(id string, layerIDs ...string) *Builder {
	if _, ok := b.layerStacks[id]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: layer stack %q defined twice", ErrInvalidScene, id))
		return b
	}
	if len(layerIDs) == 0 {
		b.errs = append(b.errs, fmt.Errorf("%w: layer stack %q has no layers", ErrInvalidScene, id))
		return b
	}
	ls := &LayerStack{id: id}
	for _, layerID := range layerIDs {
		layer, ok := b.layers[layerID]
		if !ok {
			layer = &Layer{id: layerID}
			b.layers[layerID] = layer
		}
		ls.layers = append(ls.layers, layer)
	}
	b.layerStacks[id] = ls
	return b
}

// LayerStack returns a layer stack added earlier, or nil.
func (b *Builder) LayerStack(id string) *LayerStack {
	return b.layerStacks[id]
}

func (b *Builder) AddPrimIndex(p *PrimIndex) *Builder {
	b.primIndices = append(b.primIndices, p)
	return b
}

func (b *Builder) Build() (*Scene, error) {
	s := &Scene{
		layerStacks: b.layerStacks,
		primIndices: make(map[sdfpath.Path]*PrimIndex, len(b.primIndices)),
	}
	errs := append([]error(nil), b.errs...)
	for _, p := range b.primIndices {
		if len(p.nodes) == 0 || p.Path().IsEmpty() {
			errs = append(errs, fmt.Errorf("%w: prim index without root path", ErrInvalidScene))
			continue
		}
		if _, ok := s.primIndices[p.Path()]; ok {
			errs = append(errs, fmt.Errorf("%w: prim index <%s> defined twice", ErrInvalidScene, p.Path()))
			continue
		}
		for _, n := range p.nodes {
			if n.layerStack == nil {
				errs = append(errs, fmt.Errorf("%w: prim index <%s> has a node without layer stack", ErrUnknownLayerStack, p.Path()))
			}
		}
		s.primIndices[p.Path()] = p
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

package pcp

import (
	"sort"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// ArcType is the kind of composition arc that introduced a node.
type ArcType int

const (
	ArcTypeRoot ArcType = iota
	ArcTypeInherit
	ArcTypeVariant
	ArcTypeRelocate
	ArcTypeReference
	ArcTypePayload
	ArcTypeSpecialize
)

var arcTypeNames = [...]string{
	ArcTypeRoot:       "root",
	ArcTypeInherit:    "inherit",
	ArcTypeVariant:    "variant",
	ArcTypeRelocate:   "relocate",
	ArcTypeReference:  "reference",
	ArcTypePayload:    "payload",
	ArcTypeSpecialize: "specialize",
}

func (a ArcType) String() string {
	if a < 0 || int(a) >= len(arcTypeNames) {
		return "unknown"
	}
	return arcTypeNames[a]
}

// ParseArcType is the inverse of ArcType.String.
func ParseArcType(name string) (ArcType, bool) {
	for i, n := range arcTypeNames {
		if n == name {
			return ArcType(i), true
		}
	}
	return 0, false
}

// Layer is a single layer. Implementations must be comparable; the index
// uses layers as set members.
type Layer interface {
	Identifier() string
}

// LayerStack is the identity of an ordered stack of layers. Implementations
// must be comparable and are used as map keys, so two handles are the same
// layer stack iff they compare equal.
type LayerStack interface {
	Identifier() string
	RootLayer() Layer
	Layers() []Layer
}

// Node is one node of a composed prim index.
type Node interface {
	LayerStack() LayerStack
	Path() sdfpath.Path
	ArcType() ArcType
	DependencyFlags() DependencyFlags
}

// PrimIndex is the composition result the index consumes. Nodes returns the
// whole node graph in strength order, root node included.
type PrimIndex interface {
	RootNode() (Node, bool)
	Nodes() []Node
}

// LayerSet is a deduplicated set of layers.
type LayerSet map[Layer]struct{}

func (s LayerSet) Contains(layer Layer) bool {
	_, ok := s[layer]
	return ok
}

// Identifiers returns the sorted identifiers of the layers in the set.
func (s LayerSet) Identifiers() []string {
	out := make([]string, 0, len(s))
	for layer := range s {
		out = append(out, layer.Identifier())
	}
	sort.Strings(out)
	return out
}

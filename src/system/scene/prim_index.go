package scene

import (
	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

type Node struct {
	layerStack *LayerStack
	path       sdfpath.Path
	arc        pcp.ArcType
	flags      pcp.DependencyFlags
}

func (n *Node) LayerStack() pcp.LayerStack { return n.layerStack }
func (n *Node) Path() sdfpath.Path { return n.path }
func (n *Node) ArcType() pcp.ArcType { return n.arc }
func (n *Node) DependencyFlags() pcp.DependencyFlags { return n.flags }

type formatContext struct {
	format      pcp.DynamicFileFormat
	contextData any
	fields      []string
}

// PrimIndex is a prebuilt composition result. The first node is the root.
type PrimIndex struct {
	nodes   []*Node
	formats []formatContext
}

// NewPrimIndex starts a prim index at path whose root node lives in root.
func NewPrimIndex(root *LayerStack, path sdfpath.Path) *PrimIndex {
	return &PrimIndex{
		nodes: []*Node{{
			layerStack: root,
			path:       path,
			arc:        pcp.ArcTypeRoot,
			flags:      pcp.ClassifyNode(pcp.ArcTypeRoot, pcp.OriginDirect, true),
		}},
	}
}

// AddNode appends a node in strength order.
func (p *PrimIndex) AddNode(ls *LayerStack, site sdfpath.Path, arc pcp.ArcType, origin pcp.Origin, hasSpecs bool) *PrimIndex {
	p.nodes = append(p.nodes, &Node{
		layerStack: ls,
		path:       site,
		arc:        arc,
		flags:      pcp.ClassifyNode(arc, origin, hasSpecs),
	})
	return p
}

// Direct appends a direct node with specs.
func (p *PrimIndex) Direct(ls *LayerStack, site sdfpath.Path, arc pcp.ArcType) *PrimIndex {
	return p.AddNode(ls, site, arc, pcp.OriginDirect, true)
}

// Ancestral appends a node introduced by an ancestor's arc.
func (p *PrimIndex) Ancestral(ls *LayerStack, site sdfpath.Path, arc pcp.ArcType) *PrimIndex {
	return p.AddNode(ls, site, arc, pcp.OriginAncestral, true)
}

// AddDynamicFormat records that format computed arguments from fields.
func (p *PrimIndex) AddDynamicFormat(format pcp.DynamicFileFormat, contextData any, fields ...string) *PrimIndex {
	p.formats = append(p.formats, formatContext{format: format, contextData: contextData, fields: fields})
	return p
}

func (p *PrimIndex) Path() sdfpath.Path { return p.nodes[0].path }

func (p *PrimIndex) RootNode() (pcp.Node, bool) {
	if len(p.nodes) == 0 {
		return nil, false
	}
	return p.nodes[0], true
}

func (p *PrimIndex) Nodes() []pcp.Node {
	out := make([]pcp.Node, len(p.nodes))
	for i, n := range p.nodes {
		out[i] = n
	}
	return out
}

// FileFormatDependencyData builds fresh dependency data, since the index takes
// ownership of what it is handed.
func (p *PrimIndex) FileFormatDependencyData() pcp.DynamicFileFormatDependencyData {
	var data pcp.DynamicFileFormatDependencyData
	for _, f := range p.formats {
		data.AddDependencyContext(f.format, f.contextData, f.fields)
	}
	return data
}

package pcp

import (
	"errors"
	"io"
	"log"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/pathtable"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

type fakeLayer struct{ id string }

func (l *fakeLayer) Identifier() string { return l.id }

type fakeLayerStack struct {
	id     string
	layers []Layer
}

func newFakeLayerStack(id string, layerIDs ...string) *fakeLayerStack {
	ls := &fakeLayerStack{id: id}
	for _, layerID := range layerIDs {
		ls.layers = append(ls.layers, &fakeLayer{id: layerID})
	}
	return ls
}

func (ls *fakeLayerStack) Identifier() string { return ls.id }
func (ls *fakeLayerStack) RootLayer() Layer { return ls.layers[0] }
func (ls *fakeLayerStack) Layers() []Layer { return ls.layers }

type fakeNode struct {
	ls    LayerStack
	path  sdfpath.Path
	arc   ArcType
	flags DependencyFlags
}

func (n fakeNode) LayerStack() LayerStack { return n.ls }
func (n fakeNode) Path() sdfpath.Path { return n.path }
func (n fakeNode) ArcType() ArcType { return n.arc }
func (n fakeNode) DependencyFlags() DependencyFlags { return n.flags }

type fakePrimIndex struct {
	nodes []Node
}

func (p *fakePrimIndex) RootNode() (Node, bool) {
	if len(p.nodes) == 0 {
		return nil, false
	}
	return p.nodes[0], true
}

func (p *fakePrimIndex) Nodes() []Node { return p.nodes }

// primIndex builds an index rooted at path in root with the given extra nodes.
func primIndex(root LayerStack, path string, nodes ...fakeNode) *fakePrimIndex {
	p := &fakePrimIndex{nodes: []Node{fakeNode{
		ls: root, path: sdfpath.MustParse(path), arc: ArcTypeRoot, flags: DependencyTypeRoot,
	}}}
	for _, n := range nodes {
		p.nodes = append(p.nodes, n)
	}
	return p
}

func direct(ls LayerStack, site string) fakeNode {
	return fakeNode{ls: ls, path: sdfpath.MustParse(site), arc: ArcTypeReference,
		flags: ClassifyNode(ArcTypeReference, OriginDirect, true)}
}

func ancestral(ls LayerStack, site string) fakeNode {
	return fakeNode{ls: ls, path: sdfpath.MustParse(site), arc: ArcTypeReference,
		flags: ClassifyNode(ArcTypeReference, OriginAncestral, true)}
}

type fieldFormat struct{}

func (fieldFormat) CanFieldChangeAffectFileFormatArguments(field string, oldValue, newValue any, contextData any) bool {
	return oldValue != newValue
}

func formatData(fields ...string) DynamicFileFormatDependencyData {
	var d DynamicFileFormatDependencyData
	d.AddDependencyContext(fieldFormat{}, nil, fields)
	return d
}

func newTestIndex() *Index {
	return New(archivist.New(&archivist.Config{Logger: log.New(io.Discard, "", 0), LogLevel: archivist.LEVEL_DEBUG, DebugLevel: archivist.DEBUG_LEVEL_MAX}))
}

// dependents returns the sorted dependents recorded on an exact site.
func dependents(idx *Index, ls LayerStack, site string) []string {
	var out []string
	idx.ForEachDependencyOnSite(ls, sdfpath.MustParse(site), false, false, func(p, _ sdfpath.Path) {
		out = append(out, p.String())
	})
	sort.Strings(out)
	return out
}

// requireCompact checks that no site entry is empty and no layer stack key
// has an empty table.
func requireCompact(t *testing.T, idx *Index) {
	t.Helper()
	edges := 0
	for ls, table := range idx.deps {
		require.False(t, table.Empty(), "layer stack %s kept with empty table", ls.Identifier())
		table.Ascend(func(e *pathtable.Entry[[]sdfpath.Path]) bool {
			require.NotEmpty(t, e.Value, "empty entry <%s> in %s", e.Path(), ls.Identifier())
			edges += len(e.Value)
			return true
		})
	}
	require.Equal(t, edges, idx.NumDependencies())
	for field, count := range idx.possibleDynamicFileFormatArgumentFields {
		require.Positive(t, count, "field %s", field)
	}
}

func requireCodingError(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a coding error panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		var coding *CodingError
		require.True(t, errors.As(err, &coding), "panic value %v is not a *CodingError", err)
	}()
	fn()
}

package scene

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// A scene file looks like:
//
//	layerStacks:
//	  - id: shot
//	    layers: [shot.usda, sequence.usda]
//	formats:
//	  - name: procgen
//	    fields: [depth, seed]
//	primIndices:
//	  - path: /World/Tree
//	    layerStack: shot
//	    nodes:
//	      - {layerStack: tree, site: /Tree, arc: payload}
//	      - {layerStack: tree, site: /Tree, arc: inherit, origin: ancestral, virtual: true}
//	    dynamicFormats: [procgen]
type document struct {
	LayerStacks []layerStackDoc `yaml:"layerStacks"`
	Formats     []formatDoc     `yaml:"formats"`
	PrimIndices []primIndexDoc  `yaml:"primIndices"`
}

type layerStackDoc struct {
	ID     string   `yaml:"id"`
	Layers []string `yaml:"layers"`
}

type formatDoc struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

type primIndexDoc struct {
	Path           sdfpath.Path `yaml:"path"`
	LayerStack     string       `yaml:"layerStack"`
	Nodes          []nodeDoc    `yaml:"nodes"`
	DynamicFormats []string     `yaml:"dynamicFormats"`
}

type nodeDoc struct {
	LayerStack string       `yaml:"layerStack"`
	Site       sdfpath.Path `yaml:"site"`
	Arc        string       `yaml:"arc"`
	Origin     string       `yaml:"origin"`
	Virtual    bool         `yaml:"virtual"`
}

var origins = map[string]pcp.Origin{
	"":             pcp.OriginDirect,
	"direct":       pcp.OriginDirect,
	"partlyDirect": pcp.OriginPartlyDirect,
	"ancestral":    pcp.OriginAncestral,
}

// LoadFile reads a YAML scene file.
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// Parse builds a scene from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	b := NewBuilder()
	for _, ls := range doc.LayerStacks {
		b.AddLayerStack(ls.ID, ls.Layers...)
	}

	formats := make(map[string]*FieldSetFormat, len(doc.Formats))
	for _, f := range doc.Formats {
		formats[f.Name] = &FieldSetFormat{Name: f.Name, Fields: f.Fields}
	}

	for _, pd := range doc.PrimIndices {
		p, err := buildPrimIndex(b, formats, pd)
		if err != nil {
			return nil, err
		}
		b.AddPrimIndex(p)
	}
	return b.Build()
}

func buildPrimIndex(b *Builder, formats map[string]*FieldSetFormat, pd primIndexDoc) (*PrimIndex, error) {
	root := b.LayerStack(pd.LayerStack)
	if root == nil {
		return nil, fmt.Errorf("%w: %q at prim index <%s>", ErrUnknownLayerStack, pd.LayerStack, pd.Path)
	}
	if pd.Path.IsEmpty() {
		return nil, fmt.Errorf("%w: prim index without path", ErrInvalidScene)
	}
	p := NewPrimIndex(root, pd.Path)
	for i, nd := range pd.Nodes {
		ls := b.LayerStack(nd.LayerStack)
		if ls == nil {
			return nil, fmt.Errorf("%w: %q at node %d of <%s>", ErrUnknownLayerStack, nd.LayerStack, i, pd.Path)
		}
		arc, ok := pcp.ParseArcType(nd.Arc)
		if !ok || arc == pcp.ArcTypeRoot {
			return nil, fmt.Errorf("%w: bad arc %q at node %d of <%s>", ErrInvalidScene, nd.Arc, i, pd.Path)
		}
		origin, ok := origins[nd.Origin]
		if !ok {
			return nil, fmt.Errorf("%w: bad origin %q at node %d of <%s>", ErrInvalidScene, nd.Origin, i, pd.Path)
		}
		site := nd.Site
		if site.IsEmpty() {
			site = pd.Path
		}
		p.AddNode(ls, site, arc, origin, !nd.Virtual)
	}
	for _, name := range pd.DynamicFormats {
		f, ok := formats[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q at <%s>", ErrUnknownFormat, name, pd.Path)
		}
		p.AddDynamicFormat(f, nil, f.Fields...)
	}
	return p, nil
}

package cerebrum_test

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/cerebrum"
	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/scene"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// - - - - - - - - - - - - - - - - - - - - - - -
// SETUP FRESH SCHEDULER
// - one scene, one index and one scheduler per test
// - the scene is the seed composition: a shot referencing a chair asset
//   and a procedurally generated tree payload

const sceneYAML = `
layerStacks:
  - id: shot
    layers: [shot.usda, sequence.usda]
  - id: chair
    layers: [chair.usda, materials.usda]
  - id: tree
    layers: [tree.usda]
formats:
  - name: procgen
    fields: [depth, seed]
primIndices:
  - path: /World
    layerStack: shot
  - path: /World/Chair
    layerStack: shot
    nodes:
      - {layerStack: chair, site: /Chair, arc: reference}
  - path: /World/Chair/Leg
    layerStack: shot
    nodes:
      - {layerStack: chair, site: /Chair/Leg, arc: reference, origin: ancestral}
  - path: /World/Stool
    layerStack: shot
    nodes:
      - {layerStack: chair, site: /Chair, arc: reference}
  - path: /World/Tree
    layerStack: shot
    nodes:
      - {layerStack: tree, site: /Tree, arc: payload}
    dynamicFormats: [procgen]
`

type fixture struct {
	scene     *scene.Scene
	index     *pcp.Index
	scheduler *cerebrum.Scheduler
}

func setupFresh(t *testing.T) *fixture {
	t.Helper()
	s, err := scene.Parse([]byte(sceneYAML))
	require.NoError(t, err)

	logger := archivist.New(&archivist.Config{
		Logger:     log.New(io.Discard, "", 0),
		LogLevel:   archivist.LEVEL_DEBUG,
		DebugLevel: archivist.DEBUG_LEVEL_MAX,
	})
	index := pcp.New(logger)
	scheduler := cerebrum.NewScheduler(index, scene.NewComposer(s), cerebrum.NewDemultiplexer(), logger)
	return &fixture{scene: s, index: index, scheduler: scheduler}
}

func (f *fixture) populateAll(t *testing.T) {
	t.Helper()
	require.NoError(t, f.scheduler.Populate(t.Context(), f.scene.PrimIndexPaths(), 4))
}

func (f *fixture) layerStack(t *testing.T, id string) *scene.LayerStack {
	t.Helper()
	ls, ok := f.scene.LayerStack(id)
	require.True(t, ok, id)
	return ls
}

func pathStrings(paths []sdfpath.Path) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}

func stackIDs(stacks []pcp.LayerStack) []string {
	out := make([]string, 0, len(stacks))
	for _, ls := range stacks {
		out = append(out, ls.Identifier())
	}
	return out
}

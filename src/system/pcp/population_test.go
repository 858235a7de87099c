package pcp

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

func snapshot(idx *Index) []string {
	var out []string
	idx.ForEachDependency(func(ls LayerStack, site, dep sdfpath.Path) {
		out = append(out, fmt.Sprintf("%s %s %s", ls.Identifier(), site, dep))
	})
	sort.Strings(out)
	return out
}

func TestConcurrentAddMatchesSerialAdd(t *testing.T) {
	shot := newFakeLayerStack("shot", "shot.usda")
	stacks := []*fakeLayerStack{
		newFakeLayerStack("A", "a.usda"),
		newFakeLayerStack("B", "b.usda"),
	}
	sites := []string{"/x", "/x/y", "/z"}

	var indices []*fakePrimIndex
	var payloads []DynamicFileFormatDependencyData
	for i := 0; i < 64; i++ {
		indices = append(indices, primIndex(shot, fmt.Sprintf("/P%d", i),
			direct(stacks[i%2], sites[i%3]),
			direct(stacks[(i+1)%2], sites[(i+1)%3]),
		))
		payloads = append(payloads, formatData(fmt.Sprintf("f%d", i%5)))
	}

	serial := newTestIndex()
	for i, p := range indices {
		serial.Add(p, payloads[i])
	}

	concurrent := newTestIndex()
	pop := concurrent.NewConcurrentPopulationContext()
	var wg sync.WaitGroup
	for i := range indices {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			concurrent.Add(indices[i], payloads[i])
		}(i)
	}
	wg.Wait()
	pop.Close()

	if diff := cmp.Diff(snapshot(serial), snapshot(concurrent)); diff != "" {
		t.Fatalf("concurrent population differs (-serial +concurrent):\n%s", diff)
	}
	assert.Equal(t, serial.possibleDynamicFileFormatArgumentFields, concurrent.possibleDynamicFileFormatArgumentFields)
	requireCompact(t, concurrent)
}

func TestNestedPopulationContextIsCodingError(t *testing.T) {
	idx := newTestIndex()
	pop := idx.NewConcurrentPopulationContext()

	requireCodingError(t, func() { idx.NewConcurrentPopulationContext() })

	pop.Close()
	pop.Close()
	again := idx.NewConcurrentPopulationContext()
	require.NotNil(t, again)
	// closing a stale scope leaves the open one alone
	pop.Close()
	requireCodingError(t, func() { idx.NewConcurrentPopulationContext() })
	again.Close()
}

func TestPopulationContextsAreScopedPerIndex(t *testing.T) {
	a, b := newTestIndex(), newTestIndex()
	popA := a.NewConcurrentPopulationContext()
	popB := b.NewConcurrentPopulationContext()
	popA.Close()
	popB.Close()
}

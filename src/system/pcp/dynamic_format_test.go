package pcp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

func TestFieldReferenceCounts(t *testing.T) {
	idx := newTestIndex()
	shot := newFakeLayerStack("shot", "shot.usda")

	i1 := primIndex(shot, "/I1")
	i2 := primIndex(shot, "/I2")
	idx.Add(i1, formatData("f1"))
	idx.Add(i2, formatData("f1", "f2"))

	assert.True(t, idx.HasAnyDynamicFileFormatArgumentDependencies())
	assert.True(t, idx.IsPossibleDynamicFileFormatArgumentField("f1"))
	assert.True(t, idx.IsPossibleDynamicFileFormatArgumentField("f2"))
	assert.Equal(t, []string{"f1", "f2"}, idx.DynamicFileFormatArgumentFields())
	assert.False(t, idx.IsPossibleDynamicFileFormatArgumentField("f3"))

	idx.Remove(i1)
	assert.True(t, idx.IsPossibleDynamicFileFormatArgumentField("f1"))
	assert.True(t, idx.DynamicFileFormatArgumentDependencyData(sdfpath.MustParse("/I1")).IsEmpty())

	idx.Remove(i2)
	assert.False(t, idx.IsPossibleDynamicFileFormatArgumentField("f1"))
	assert.False(t, idx.IsPossibleDynamicFileFormatArgumentField("f2"))
	assert.False(t, idx.HasAnyDynamicFileFormatArgumentDependencies())
	requireCompact(t, idx)
}

func TestEmptyPayloadIsNotStored(t *testing.T) {
	idx := newTestIndex()
	shot := newFakeLayerStack("shot", "shot.usda")

	idx.Add(primIndex(shot, "/I1"), DynamicFileFormatDependencyData{})
	assert.False(t, idx.HasAnyDynamicFileFormatArgumentDependencies())
	assert.True(t, idx.DynamicFileFormatArgumentDependencyData(sdfpath.MustParse("/I1")).IsEmpty())
}

func TestStoredPayloadIsReturned(t *testing.T) {
	idx := newTestIndex()
	shot := newFakeLayerStack("shot", "shot.usda")

	idx.Add(primIndex(shot, "/I1"), formatData("depth", "seed"))
	data := idx.DynamicFileFormatArgumentDependencyData(sdfpath.MustParse("/I1"))
	assert.False(t, data.IsEmpty())
	assert.Equal(t, []string{"depth", "seed"}, data.RelevantFieldNames())
}

type contextFormat struct {
	watched string
}

func (f contextFormat) CanFieldChangeAffectFileFormatArguments(field string, oldValue, newValue any, contextData any) bool {
	return field == f.watched && contextData == "live"
}

func TestCanFieldChangeAffectFileFormatArguments(t *testing.T) {
	var empty DynamicFileFormatDependencyData
	assert.False(t, empty.CanFieldChangeAffectFileFormatArguments("depth", 1, 2))
	assert.Empty(t, empty.RelevantFieldNames())

	var data DynamicFileFormatDependencyData
	data.AddDependencyContext(contextFormat{watched: "depth"}, "stale", []string{"depth"})
	assert.False(t, data.CanFieldChangeAffectFileFormatArguments("depth", 1, 2))

	data.AddDependencyContext(contextFormat{watched: "depth"}, "live", []string{"depth", "seed"})
	assert.True(t, data.CanFieldChangeAffectFileFormatArguments("depth", 1, 2))
	// relevant but no format watches it
	assert.False(t, data.CanFieldChangeAffectFileFormatArguments("seed", 1, 2))
	// not relevant at all
	assert.False(t, data.CanFieldChangeAffectFileFormatArguments("color", 1, 2))
}

package pcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyFlagValues(t *testing.T) {
	assert.Equal(t, DependencyFlags(1), DependencyTypeRoot)
	assert.Equal(t, DependencyFlags(1<<5), DependencyTypeNonVirtual)
	assert.Equal(t, DependencyFlags(6), DependencyTypeDirect)
}

func TestClassifyNode(t *testing.T) {
	cases := []struct {
		arc      ArcType
		origin   Origin
		hasSpecs bool
		want     DependencyFlags
		direct   bool
	}{
		{ArcTypeRoot, OriginDirect, true, DependencyTypeRoot, false},
		{ArcTypeReference, OriginDirect, true, DependencyTypePurelyDirect | DependencyTypeNonVirtual, true},
		{ArcTypeInherit, OriginPartlyDirect, false, DependencyTypePartlyDirect | DependencyTypeVirtual, true},
		{ArcTypePayload, OriginAncestral, true, DependencyTypeAncestral | DependencyTypeNonVirtual, false},
	}
	for _, c := range cases {
		got := ClassifyNode(c.arc, c.origin, c.hasSpecs)
		assert.Equal(t, c.want, got, "%s", c.arc)
		assert.Equal(t, c.direct, got.IsDirect(), "%s", c.arc)
	}
}

func TestDependencyFlagsString(t *testing.T) {
	assert.Equal(t, "none", DependencyTypeNone.String())
	assert.Equal(t, "purely-direct, non-virtual", (DependencyTypePurelyDirect | DependencyTypeNonVirtual).String())
	assert.Equal(t, "root", DependencyTypeRoot.String())
}

func TestArcTypeNames(t *testing.T) {
	for arc := ArcTypeRoot; arc <= ArcTypeSpecialize; arc++ {
		parsed, ok := ParseArcType(arc.String())
		assert.True(t, ok)
		assert.Equal(t, arc, parsed)
	}
	assert.Equal(t, "unknown", ArcType(99).String())
	_, ok := ParseArcType("sublayer")
	assert.False(t, ok)
}

func TestLifeboatRetainsOnce(t *testing.T) {
	lsA := newFakeLayerStack("A", "a.usda")
	lsB := newFakeLayerStack("B", "b.usda")

	var boat Lifeboat
	boat.Retain(lsA, lsB)
	boat.Retain(lsA)
	assert.Equal(t, 2, boat.Len())
	assert.Equal(t, []LayerStack{lsA, lsB}, boat.LayerStacks())

	boat.Clear()
	assert.Zero(t, boat.Len())
	boat.Retain(lsB)
	assert.Equal(t, []LayerStack{lsB}, boat.LayerStacks())
}

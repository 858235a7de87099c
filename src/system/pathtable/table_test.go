package pathtable

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

func paths(entries []*Entry[int]) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Path().String())
	}
	return out
}

func seed(t *testing.T, in ...string) *Table[int] {
	t.Helper()
	table := New[int]()
	for i, s := range in {
		e, inserted := table.GetOrInsert(sdfpath.MustParse(s))
		require.True(t, inserted, s)
		e.Value = i + 1
	}
	return table
}

func TestGetOrInsertKeepsExisting(t *testing.T) {
	table := seed(t, "/A")
	e, inserted := table.GetOrInsert(sdfpath.MustParse("/A"))
	assert.False(t, inserted)
	assert.Equal(t, 1, e.Value)
	assert.Nil(t, table.Get(sdfpath.MustParse("/B")))
	assert.Equal(t, 1, table.Len())
}

func TestInsertDoesNotCreateAncestors(t *testing.T) {
	table := seed(t, "/A/B/C")
	assert.Equal(t, 1, table.Len())
	assert.Nil(t, table.Get(sdfpath.MustParse("/A")))
}

func TestFindSubtreeRange(t *testing.T) {
	table := seed(t, "/A", "/A/B", "/A/B/C", "/A/C", "/AB", "/B")

	got := paths(table.FindSubtreeRange(sdfpath.MustParse("/A")))
	if diff := cmp.Diff([]string{"/A", "/A/B", "/A/B/C", "/A/C"}, got); diff != "" {
		t.Fatalf("subtree of /A (-want +got):\n%s", diff)
	}
	got = paths(table.FindSubtreeRange(sdfpath.MustParse("/A/B")))
	if diff := cmp.Diff([]string{"/A/B", "/A/B/C"}, got); diff != "" {
		t.Fatalf("subtree of /A/B (-want +got):\n%s", diff)
	}
	assert.Len(t, table.FindSubtreeRange(sdfpath.AbsoluteRoot()), 6)
	assert.Empty(t, table.FindSubtreeRange(sdfpath.MustParse("/Z")))
	assert.Empty(t, table.FindSubtreeRange(sdfpath.Path{}))
}

func TestSubtreeRangeWithoutRootEntry(t *testing.T) {
	table := seed(t, "/A/B", "/A/C")
	got := paths(table.FindSubtreeRange(sdfpath.MustParse("/A")))
	assert.Equal(t, []string{"/A/B", "/A/C"}, got)
	assert.True(t, table.HasDescendants(sdfpath.MustParse("/A")))
	assert.False(t, table.HasDescendants(sdfpath.MustParse("/A/B")))
}

func TestEraseSubtree(t *testing.T) {
	table := seed(t, "/A", "/A/B", "/A/B/C", "/AB")
	assert.Equal(t, 2, table.EraseSubtree(sdfpath.MustParse("/A/B")))
	assert.Equal(t, []string{"/A", "/AB"}, paths(table.FindSubtreeRange(sdfpath.AbsoluteRoot())))

	assert.True(t, table.Delete(sdfpath.MustParse("/A")))
	assert.False(t, table.Delete(sdfpath.MustParse("/A")))
	table.Clear()
	assert.True(t, table.Empty())
}

func TestAscendStops(t *testing.T) {
	table := seed(t, "/A", "/B", "/C")
	var seen []string
	table.Ascend(func(e *Entry[int]) bool {
		seen = append(seen, e.Path().String())
		return len(seen) < 2
	})
	assert.Equal(t, []string{"/A", "/B"}, seen)
}

package cerebrum

import (
	"sort"

	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

type Demultiplexer struct {
}

func NewDemultiplexer() *Demultiplexer {
	return &Demultiplexer{}
}

// Parse splits a batch of changes per layer stack. Within a group a
// structural site covered by another structural site is dropped, and so is
// every field change at or below a structural site. Groups are ordered by
// layer stack identifier.
func (d *Demultiplexer) Parse(changes []Change) []ChangeGroup {
	byStack := make(map[pcp.LayerStack]*ChangeGroup)
	var order []*ChangeGroup
	for _, c := range changes {
		if c.LayerStack == nil || c.Path.IsEmpty() {
			continue
		}
		group, ok := byStack[c.LayerStack]
		if !ok {
			group = &ChangeGroup{LayerStack: c.LayerStack}
			byStack[c.LayerStack] = group
			order = append(order, group)
		}
		if c.IsStructural() {
			group.Structural = append(group.Structural, c.Path)
		} else {
			group.Fields = append(group.Fields, c)
		}
	}

	ret := make([]ChangeGroup, 0, len(order))
	for _, group := range order {
		group.Structural = d.collapse(group.Structural)
		group.Fields = d.uncovered(group.Fields, group.Structural)
		ret = append(ret, *group)
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].LayerStack.Identifier() < ret[j].LayerStack.Identifier()
	})
	return ret
}

// collapse sorts the paths and keeps only those without a kept ancestor.
// Sorting puts every ancestor directly ahead of its subtree.
func (d *Demultiplexer) collapse(paths []sdfpath.Path) []sdfpath.Path {
	if len(paths) == 0 {
		return nil
	}
	sorted := append([]sdfpath.Path(nil), paths...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	kept := sorted[:0]
	for _, p := range sorted {
		if len(kept) > 0 && p.HasPrefix(kept[len(kept)-1]) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func (d *Demultiplexer) uncovered(fields []Change, structural []sdfpath.Path) []Change {
	var ret []Change
	for _, c := range fields {
		covered := false
		for _, p := range structural {
			if c.Path.HasPrefix(p) {
				covered = true
				break
			}
		}
		if !covered {
			ret = append(ret, c)
		}
	}
	return ret
}

package pcp

import (
	"slices"
	"sort"
	"sync/atomic"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/pathtable"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// siteDepMap maps a site path to the prim indices depending on it. The slice
// is used as an unordered multiset and is never empty while in the table.
type siteDepMap = pathtable.Table[[]sdfpath.Path]

// Index tracks the direct site dependencies and the dynamic file format
// dependencies of every composed prim index.
type Index struct {
	log *archivist.Archivist

	deps  map[LayerStack]*siteDepMap
	edges int

	fileFormatArgumentDeps                  map[sdfpath.Path]DynamicFileFormatDependencyData
	possibleDynamicFileFormatArgumentFields map[string]int

	population atomic.Pointer[ConcurrentPopulationContext]
}

func New(logger *archivist.Archivist) *Index {
	if logger == nil {
		logger = archivist.New(&archivist.Config{})
	}
	logger = logger.Named("pcp.dependencies")
	if err := initMetrics(); err != nil {
		logger.Warning("dependency metrics disabled", err)
	}
	return &Index{
		log:                                     logger,
		deps:                                    make(map[LayerStack]*siteDepMap),
		fileFormatArgumentDeps:                  make(map[sdfpath.Path]DynamicFileFormatDependencyData),
		possibleDynamicFileFormatArgumentFields: make(map[string]int),
	}
}

// Add records the direct dependencies of primIndex and takes over its dynamic
// file format dependency data. A prim index without a root node is ignored.
//
// Add is safe for concurrent use while a ConcurrentPopulationContext is open
// on the index.
func (idx *Index) Add(primIndex PrimIndex, fileFormatData DynamicFileFormatDependencyData) {
	root, ok := primIndex.RootNode()
	if !ok {
		return
	}
	primIndexPath := root.Path()
	trace := idx.log.DebugEnabled(archivist.DEBUG_LEVEL_TRACE)
	if trace {
		idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "Adding deps for index <%s>", primIndexPath)
	}

	population := idx.population.Load()
	count := 0
	for nodeIndex, n := range primIndex.Nodes() {
		flags := n.DependencyFlags()
		if !shouldStoreDependency(flags) {
			continue
		}
		count++

		population.lock()
		idx.addSiteDependency(n.LayerStack(), n.Path(), primIndexPath)
		population.unlock()

		if trace {
			idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, " - Node %d (%s %s): <%s> %s",
				nodeIndex, flags, n.ArcType(), n.Path(), n.LayerStack().Identifier())
		}
	}

	if !fileFormatData.IsEmpty() {
		population.lock()
		for _, field := range fileFormatData.RelevantFieldNames() {
			idx.possibleDynamicFileFormatArgumentFields[field]++
		}
		idx.fileFormatArgumentDeps[primIndexPath] = fileFormatData
		population.unlock()
	}

	if count == 0 && trace {
		idx.log.Debug(archivist.DEBUG_LEVEL_TRACE, "    None")
	}
	recordAdd(count)
}

func (idx *Index) addSiteDependency(ls LayerStack, site, primIndexPath sdfpath.Path) {
	table, ok := idx.deps[ls]
	if !ok {
		table = pathtable.New[[]sdfpath.Path]()
		idx.deps[ls] = table
		recordLayerStacks(1)
	}
	entry, _ := table.GetOrInsert(site)
	entry.Value = append(entry.Value, primIndexPath)
	idx.edges++
}

// Remove forgets every dependency recorded for primIndex by Add. Layer stacks
// left without any dependency are returned; the caller decides when they may
// go away, usually by retaining them in a Lifeboat.
//
// Removing a prim index that was not added panics with a *CodingError.
func (idx *Index) Remove(primIndex PrimIndex) []LayerStack {
	root, ok := primIndex.RootNode()
	if !ok {
		return nil
	}
	primIndexPath := root.Path()
	trace := idx.log.DebugEnabled(archivist.DEBUG_LEVEL_TRACE)
	if trace {
		idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "Removing deps for index <%s>", primIndexPath)
	}

	var released []LayerStack
	count := 0
	for nodeIndex, n := range primIndex.Nodes() {
		flags := n.DependencyFlags()
		if !shouldStoreDependency(flags) {
			continue
		}
		ls, site := n.LayerStack(), n.Path()
		if trace {
			idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, " - Node %d (%s %s): <%s> %s",
				nodeIndex, flags, n.ArcType(), site, ls.Identifier())
		}

		table, ok := idx.deps[ls]
		if !ok {
			idx.codingError("Remove", "no dependencies on layer stack %s for index <%s>", ls.Identifier(), primIndexPath)
		}
		entry := table.Get(site)
		if entry == nil {
			idx.codingError("Remove", "no dependencies on site <%s> in %s for index <%s>", site, ls.Identifier(), primIndexPath)
		}
		i := slices.Index(entry.Value, primIndexPath)
		if i < 0 {
			idx.codingError("Remove", "index <%s> is not a dependent of site <%s> in %s", primIndexPath, site, ls.Identifier())
		}

		// swap with the last element and drop it, order is not kept
		last := len(entry.Value) - 1
		entry.Value[i] = entry.Value[last]
		entry.Value[last] = sdfpath.Path{}
		entry.Value = entry.Value[:last]
		idx.edges--
		count++

		if len(entry.Value) > 0 {
			continue
		}
		if trace {
			idx.log.Debug(archivist.DEBUG_LEVEL_TRACE, "      Removed last dep on site")
		}
		idx.reapSite(table, site, trace)

		if table.Empty() {
			delete(idx.deps, ls)
			released = append(released, ls)
			recordLayerStacks(-1)
			if trace {
				idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "    Removed last dep on %s", ls.Identifier())
			}
		}
	}

	idx.removeFileFormatData(primIndexPath)
	recordRemove(count)
	return released
}

// reapSite erases the now empty entry for site. The table holds only sites
// with dependents and no implicit ancestors, so no empty entry is left in the
// subtree or above it.
func (idx *Index) reapSite(table *siteDepMap, site sdfpath.Path, trace bool) {
	table.Delete(site)
	if trace {
		idx.log.DebugF(archivist.DEBUG_LEVEL_TRACE, "      Removed empty entry <%s>", site)
	}
}

func (idx *Index) removeFileFormatData(primIndexPath sdfpath.Path) {
	data, ok := idx.fileFormatArgumentDeps[primIndexPath]
	if !ok {
		return
	}
	for _, field := range data.RelevantFieldNames() {
		count, ok := idx.possibleDynamicFileFormatArgumentFields[field]
		if !ok {
			idx.codingError("Remove", "field %q of index <%s> has no reference count", field, primIndexPath)
		}
		// the table only tests presence, so a field leaves it at zero
		if count <= 1 {
			delete(idx.possibleDynamicFileFormatArgumentFields, field)
		} else {
			idx.possibleDynamicFileFormatArgumentFields[field] = count - 1
		}
	}
	delete(idx.fileFormatArgumentDeps, primIndexPath)
}

// RemoveAll clears the index and returns every layer stack it held.
func (idx *Index) RemoveAll() []LayerStack {
	idx.log.Debug(archivist.DEBUG_LEVEL_TRACE, "RemoveAll: Clearing all dependencies")

	released := idx.LayerStacks()
	recordLayerStacks(-len(idx.deps))
	recordReset(idx.edges)

	idx.deps = make(map[LayerStack]*siteDepMap)
	idx.edges = 0
	idx.possibleDynamicFileFormatArgumentFields = make(map[string]int)
	idx.fileFormatArgumentDeps = make(map[sdfpath.Path]DynamicFileFormatDependencyData)
	return released
}

// UsedLayers returns every layer of every layer stack with a recorded
// dependency.
func (idx *Index) UsedLayers() LayerSet {
	reached := make(LayerSet)
	for ls := range idx.deps {
		for _, layer := range ls.Layers() {
			reached[layer] = struct{}{}
		}
	}
	return reached
}

// UsedRootLayers returns the root layer of every layer stack with a recorded
// dependency.
func (idx *Index) UsedRootLayers() LayerSet {
	reached := make(LayerSet)
	for ls := range idx.deps {
		reached[ls.RootLayer()] = struct{}{}
	}
	return reached
}

func (idx *Index) UsesLayerStack(ls LayerStack) bool {
	_, ok := idx.deps[ls]
	return ok
}

// LayerStacks returns the layer stacks with recorded dependencies, sorted by
// identifier.
func (idx *Index) LayerStacks() []LayerStack {
	out := make([]LayerStack, 0, len(idx.deps))
	for ls := range idx.deps {
		out = append(out, ls)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Identifier() < out[j].Identifier()
	})
	return out
}

// NumDependencies is the number of recorded (layer stack, site, prim index)
// triples.
func (idx *Index) NumDependencies() int { return idx.edges }

func (idx *Index) HasAnyDynamicFileFormatArgumentDependencies() bool {
	return len(idx.possibleDynamicFileFormatArgumentFields) > 0
}

// IsPossibleDynamicFileFormatArgumentField reports whether any indexed prim
// index computed dynamic file format arguments from field.
func (idx *Index) IsPossibleDynamicFileFormatArgumentField(field string) bool {
	_, ok := idx.possibleDynamicFileFormatArgumentFields[field]
	return ok
}

// DynamicFileFormatArgumentFields returns the possible argument fields in
// name order.
func (idx *Index) DynamicFileFormatArgumentFields() []string {
	fields := make([]string, 0, len(idx.possibleDynamicFileFormatArgumentFields))
	for field := range idx.possibleDynamicFileFormatArgumentFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// DynamicFileFormatArgumentDependencyData returns the data stored for the
// prim index at primIndexPath, or empty data.
func (idx *Index) DynamicFileFormatArgumentDependencyData(primIndexPath sdfpath.Path) DynamicFileFormatDependencyData {
	return idx.fileFormatArgumentDeps[primIndexPath]
}

// ForEachDependencyOnSite calls fn with every prim index depending on
// sitePath in ls, together with the site it depends on.
//
// With recurseBelowSite the dependencies on descendants of sitePath are
// reported as well. With includeAncestral the ancestral dependencies that are
// not stored are synthesised: a prim index depending on an ancestor of
// sitePath has a namespace descendant depending on sitePath itself.
func (idx *Index) ForEachDependencyOnSite(ls LayerStack, sitePath sdfpath.Path, includeAncestral, recurseBelowSite bool, fn func(primIndexPath, dependencySitePath sdfpath.Path)) {
	table, ok := idx.deps[ls]
	if !ok {
		return
	}

	if recurseBelowSite {
		for _, e := range table.FindSubtreeRange(sitePath) {
			for _, dep := range e.Value {
				fn(dep, e.Path())
			}
		}
	} else if e := table.Get(sitePath); e != nil {
		for _, dep := range e.Value {
			fn(dep, sitePath)
		}
	}

	if !includeAncestral {
		return
	}
	for ancestor := sitePath.Parent(); !ancestor.IsEmpty(); ancestor = ancestor.Parent() {
		e := table.Get(ancestor)
		if e == nil {
			continue
		}
		for _, dep := range e.Value {
			fn(sitePath.ReplacePrefix(ancestor, dep), sitePath)
		}
	}
}

// ForEachDependency calls fn for every recorded dependency, layer stacks in
// identifier order and sites in path order.
func (idx *Index) ForEachDependency(fn func(ls LayerStack, sitePath, primIndexPath sdfpath.Path)) {
	for _, ls := range idx.LayerStacks() {
		idx.deps[ls].Ascend(func(e *pathtable.Entry[[]sdfpath.Path]) bool {
			for _, dep := range e.Value {
				fn(ls, e.Path(), dep)
			}
			return true
		})
	}
}

// NumSites returns how many site entries ls has, 0 if it is not used.
func (idx *Index) NumSites(ls LayerStack) int {
	if table, ok := idx.deps[ls]; ok {
		return table.Len()
	}
	return 0
}

// Package pcp records which layer stack sites every composed prim index was
// built from, so that a change to a layer stack at a path can be mapped back
// to the prim indices that must be recomposed.
//
// Only direct dependencies are stored. Ancestral arcs and the root arc of a
// prim index are implied by namespace and are synthesised on demand by
// ForEachDependencyOnSite. Alongside the site dependencies the index keeps the
// dynamic file format dependency data of each prim index and a reference
// count per metadata field that may influence dynamic file format arguments.
//
// Add may run on many goroutines at once while a ConcurrentPopulationContext
// is open. Every other method belongs to the serial invalidation phase.
//
// Layer stacks whose last dependency goes away are returned from Remove and
// RemoveAll; callers retain them in a Lifeboat until the surrounding change
// transaction is done.
package pcp

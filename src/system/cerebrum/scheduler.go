package cerebrum

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// Scheduler keeps a dependency index in step with the prim indices it has
// composed and recomposes the ones a batch of changes affects.
//
// Populate, Invalidate and Reset must not run concurrently with each other.
type Scheduler struct {
	index         *pcp.Index
	composer      Composer
	demultiplexer *Demultiplexer
	log           *archivist.Archivist

	// composed is written by population workers
	mu       sync.Mutex
	composed map[sdfpath.Path]pcp.PrimIndex

	lifeboat pcp.Lifeboat
}

func NewScheduler(index *pcp.Index, composer Composer, demultiplexerInstance *Demultiplexer, logger *archivist.Archivist) *Scheduler {
	if logger == nil {
		logger = archivist.New(&archivist.Config{})
	}
	return &Scheduler{
		index:         index,
		composer:      composer,
		demultiplexer: demultiplexerInstance,
		log:           logger.Named("cerebrum"),
		composed:      make(map[sdfpath.Path]pcp.PrimIndex),
	}
}

func (s *Scheduler) Index() *pcp.Index { return s.index }

// Composed returns the paths of all composed prim indices in path order.
func (s *Scheduler) Composed() []sdfpath.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedPaths(s.composed)
}

// Populate composes the prim indices at paths on up to workers goroutines and
// adds them to the index. workers <= 0 means one per CPU. The first failure
// cancels the remaining work; indices composed before it stay in the index.
func (s *Scheduler) Populate(ctx context.Context, paths []sdfpath.Path, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "scheduling POPULATE begin paths=", len(paths), " workers=", workers)

	pop := s.index.NewConcurrentPopulationContext()
	defer pop.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	seen := make(map[sdfpath.Path]struct{}, len(paths))
	for _, path := range paths {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		g.Go(func() error {
			primIndex, data, err := s.composer.Compose(gctx, path)
			if err != nil {
				return fmt.Errorf("composing <%s>: %w", path, err)
			}
			s.mu.Lock()
			if _, ok := s.composed[path]; ok {
				s.mu.Unlock()
				return fmt.Errorf("%w: <%s>", ErrAlreadyComposed, path)
			}
			s.composed[path] = primIndex
			s.mu.Unlock()

			s.index.Add(primIndex, data)
			s.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "scheduling POPULATE added ", path.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.log.Error("population failed", err)
		return err
	}
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "scheduling POPULATE done composed=", len(s.composed), " deps=", s.index.NumDependencies())
	return nil
}

// Invalidate finds the prim indices affected by changes, removes them from the
// index and recomposes them. Layer stacks released by the removals are kept in
// the lifeboat until recomposition is over.
//
// When recomposition fails the prim indices that could not be composed again
// are neither in the index nor composed; Result.Failed lists them.
func (s *Scheduler) Invalidate(ctx context.Context, changes []Change, workers int) (*Result, error) {
	affected := s.affected(changes)
	s.log.Debug(archivist.DEBUG_LEVEL_TRACE, "scheduling INVALIDATE changes=", len(changes), " affected=", len(affected))

	recompose := make([]sdfpath.Path, 0, len(affected))
	for _, path := range sortedPaths(affected) {
		primIndex, ok := s.composed[path]
		if !ok {
			continue
		}
		s.lifeboat.Retain(s.index.Remove(primIndex)...)
		delete(s.composed, path)
		recompose = append(recompose, path)
	}
	defer s.lifeboat.Clear()

	err := s.Populate(ctx, recompose, workers)

	result := &Result{Recomposed: recompose}
	if err != nil {
		s.mu.Lock()
		for _, path := range recompose {
			if _, ok := s.composed[path]; !ok {
				result.Failed = append(result.Failed, path)
			}
		}
		s.mu.Unlock()
	}
	for _, ls := range s.lifeboat.LayerStacks() {
		if !s.index.UsesLayerStack(ls) {
			result.Dropped = append(result.Dropped, ls)
		}
	}
	if err != nil {
		return result, fmt.Errorf("recomposing after invalidation: %w", err)
	}
	s.log.Info("recomposed prim indices", len(recompose))
	return result, nil
}

// affected maps the changes to the composed prim indices they touch.
func (s *Scheduler) affected(changes []Change) map[sdfpath.Path]pcp.PrimIndex {
	hits := make(map[sdfpath.Path]pcp.PrimIndex)
	add := func(path, site sdfpath.Path) {
		if _, ok := hits[path]; !ok {
			s.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "scheduling INVALIDATE hit index=", path.String(), " site=", site.String())
		}
		hits[path] = nil
	}

	for _, group := range s.demultiplexer.Parse(changes) {
		// root nodes are not in the index, a change in a prim index's own
		// layer stack at or above its path is found here
		for path, primIndex := range s.composed {
			root, ok := primIndex.RootNode()
			if !ok || root.LayerStack() != group.LayerStack {
				continue
			}
			for _, site := range group.Structural {
				if path.HasPrefix(site) {
					add(path, site)
				}
			}
			for _, change := range group.Fields {
				if path.HasPrefix(change.Path) {
					add(path, change.Path)
				}
			}
		}
		for _, site := range group.Structural {
			s.index.ForEachDependencyOnSite(group.LayerStack, site, true, true, add)
		}
		for _, change := range group.Fields {
			if !s.index.IsPossibleDynamicFileFormatArgumentField(change.Field) {
				s.log.Debug(archivist.DEBUG_LEVEL_DETAIL, "scheduling INVALIDATE field irrelevant field=", change.Field)
				continue
			}
			s.index.ForEachDependencyOnSite(group.LayerStack, change.Path, true, false, func(path, site sdfpath.Path) {
				data := s.index.DynamicFileFormatArgumentDependencyData(path)
				if data.CanFieldChangeAffectFileFormatArguments(change.Field, change.OldValue, change.NewValue) {
					add(path, site)
				}
			})
		}
	}

	// a recomposed prim index takes its namespace descendants with it
	if len(hits) > 0 {
		roots := sortedPaths(hits)
		for path := range s.composed {
			if _, ok := hits[path]; ok {
				continue
			}
			if coveredBy(path, roots) {
				hits[path] = nil
			}
		}
	}
	return hits
}

// Reset drops every dependency and forgets all composed prim indices. It
// returns the layer stacks the index held.
func (s *Scheduler) Reset() []pcp.LayerStack {
	s.lifeboat.Retain(s.index.RemoveAll()...)
	defer s.lifeboat.Clear()

	s.mu.Lock()
	s.composed = make(map[sdfpath.Path]pcp.PrimIndex)
	s.mu.Unlock()

	s.log.Info("dependency index reset, released layer stacks", s.lifeboat.Len())
	return s.lifeboat.LayerStacks()
}

func sortedPaths[V any](m map[sdfpath.Path]V) []sdfpath.Path {
	out := make([]sdfpath.Path, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// coveredBy reports whether one of the sorted roots is a prefix of path.
func coveredBy(path sdfpath.Path, roots []sdfpath.Path) bool {
	i := sort.Search(len(roots), func(i int) bool { return !roots[i].Less(path) })
	if i < len(roots) && roots[i] == path {
		return true
	}
	for p := path.Parent(); !p.IsEmpty(); p = p.Parent() {
		j := sort.Search(len(roots), func(i int) bool { return !roots[i].Less(p) })
		if j < len(roots) && roots[j] == p {
			return true
		}
	}
	return false
}

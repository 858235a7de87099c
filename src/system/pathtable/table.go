// Package pathtable provides an ordered table keyed by sdfpath.Path.
//
// Entries are kept in sdfpath order, so all entries at or below a path form a
// single contiguous range that FindSubtreeRange returns in one descent.
// Unlike a namespace tree, inserting a path does not create entries for its
// ancestors: a path is present only if it was inserted.
//
// A Table is not safe for concurrent use.
package pathtable

import (
	"github.com/google/btree"

	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

const degree = 16

// Entry is one row of a Table. Value may be modified in place; the path is
// fixed for the lifetime of the entry.
type Entry[V any] struct {
	path  sdfpath.Path
	Value V
}

func (e *Entry[V]) Path() sdfpath.Path { return e.path }

type Table[V any] struct {
	tree *btree.BTreeG[*Entry[V]]
}

func New[V any]() *Table[V] {
	return &Table[V]{
		tree: btree.NewG[*Entry[V]](degree, func(a, b *Entry[V]) bool {
			return a.path.Less(b.path)
		}),
	}
}

func (t *Table[V]) Len() int { return t.tree.Len() }

func (t *Table[V]) Empty() bool { return t.tree.Len() == 0 }

// Get returns the entry for path, or nil.
func (t *Table[V]) Get(path sdfpath.Path) *Entry[V] {
	e, ok := t.tree.Get(&Entry[V]{path: path})
	if !ok {
		return nil
	}
	return e
}

// GetOrInsert returns the entry for path, inserting a zero-valued one first
// if needed. inserted reports whether that happened.
func (t *Table[V]) GetOrInsert(path sdfpath.Path) (entry *Entry[V], inserted bool) {
	if e := t.Get(path); e != nil {
		return e, false
	}
	e := &Entry[V]{path: path}
	t.tree.ReplaceOrInsert(e)
	return e, true
}

// Delete removes the entry for path and reports whether there was one.
func (t *Table[V]) Delete(path sdfpath.Path) bool {
	_, ok := t.tree.Delete(&Entry[V]{path: path})
	return ok
}

// Ascend calls fn for every entry in path order until fn returns false.
func (t *Table[V]) Ascend(fn func(*Entry[V]) bool) {
	t.tree.Ascend(fn)
}

// FindSubtreeRange returns the entries for path and all of its descendants,
// in path order.
func (t *Table[V]) FindSubtreeRange(path sdfpath.Path) []*Entry[V] {
	var out []*Entry[V]
	t.ascendSubtree(path, func(e *Entry[V]) bool {
		out = append(out, e)
		return true
	})
	return out
}

// HasDescendants reports whether any entry lies strictly below path.
func (t *Table[V]) HasDescendants(path sdfpath.Path) bool {
	found := false
	t.ascendSubtree(path, func(e *Entry[V]) bool {
		if e.path != path {
			found = true
			return false
		}
		return true
	})
	return found
}

// EraseSubtree removes path and all its descendants and returns how many
// entries went away.
func (t *Table[V]) EraseSubtree(path sdfpath.Path) int {
	doomed := t.FindSubtreeRange(path)
	for _, e := range doomed {
		t.tree.Delete(e)
	}
	return len(doomed)
}

func (t *Table[V]) Clear() {
	t.tree.Clear(false)
}

func (t *Table[V]) ascendSubtree(path sdfpath.Path, fn func(*Entry[V]) bool) {
	if path.IsEmpty() {
		return
	}
	t.tree.AscendGreaterOrEqual(&Entry[V]{path: path}, func(e *Entry[V]) bool {
		if !e.path.HasPrefix(path) {
			return false
		}
		return fn(e)
	})
}

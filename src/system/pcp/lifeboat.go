package pcp

// Lifeboat keeps layer stacks reachable until the change transaction that
// released them has finished. It is not safe for concurrent use.
type Lifeboat struct {
	layerStacks []LayerStack
	seen        map[LayerStack]struct{}
}

// Retain keeps every given layer stack alive until Clear.
func (l *Lifeboat) Retain(layerStacks ...LayerStack) {
	for _, ls := range layerStacks {
		if l.seen == nil {
			l.seen = make(map[LayerStack]struct{})
		}
		if _, ok := l.seen[ls]; ok {
			continue
		}
		l.seen[ls] = struct{}{}
		l.layerStacks = append(l.layerStacks, ls)
	}
}

// LayerStacks returns the retained layer stacks in retain order.
func (l *Lifeboat) LayerStacks() []LayerStack {
	return append([]LayerStack(nil), l.layerStacks...)
}

func (l *Lifeboat) Len() int { return len(l.layerStacks) }

// Clear drops every retained layer stack.
func (l *Lifeboat) Clear() {
	l.layerStacks = nil
	l.seen = nil
}

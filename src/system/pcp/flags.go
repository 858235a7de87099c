package pcp

import "strings"

// DependencyFlags classify how a node makes its prim index depend on the
// node's site.
type DependencyFlags uint32

const (
	DependencyTypeNone DependencyFlags = 0

	// The root node of a prim index.
	DependencyTypeRoot DependencyFlags = 1 << (iota - 1)
	// An arc introduced at this level of namespace.
	DependencyTypePurelyDirect
	// A direct arc nested beneath an arc introduced ancestrally.
	DependencyTypePartlyDirect
	// An arc introduced at an ancestral level of namespace.
	DependencyTypeAncestral
	// A node contributing no scene description yet.
	DependencyTypeVirtual
	DependencyTypeNonVirtual

	DependencyTypeDirect = DependencyTypePartlyDirect | DependencyTypePurelyDirect

	DependencyTypeAnyNonVirtual = DependencyTypeRoot | DependencyTypeDirect |
		DependencyTypeAncestral | DependencyTypeNonVirtual
	DependencyTypeAnyIncludingVirtual = DependencyTypeAnyNonVirtual | DependencyTypeVirtual
)

var dependencyFlagNames = []struct {
	flag DependencyFlags
	name string
}{
	{DependencyTypeRoot, "root"},
	{DependencyTypePurelyDirect, "purely-direct"},
	{DependencyTypePartlyDirect, "partly-direct"},
	{DependencyTypeAncestral, "ancestral"},
	{DependencyTypeVirtual, "virtual"},
	{DependencyTypeNonVirtual, "non-virtual"},
}

func (f DependencyFlags) String() string {
	if f == DependencyTypeNone {
		return "none"
	}
	var names []string
	for _, n := range dependencyFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ", ")
}

// IsDirect reports whether the flags include a direct arc.
func (f DependencyFlags) IsDirect() bool { return f&DependencyTypeDirect != 0 }

// Origin says where in namespace the arc of a node was introduced.
type Origin int

const (
	// OriginDirect: the arc was authored at the prim itself.
	OriginDirect Origin = iota
	// OriginPartlyDirect: the arc was authored at the prim but sits below
	// an arc inherited from an ancestor.
	OriginPartlyDirect
	// OriginAncestral: the arc exists only because an ancestor has it.
	OriginAncestral
)

// ClassifyNode computes the dependency flags for a node with the given arc
// and origin. Nodes without specs are virtual dependencies.
func ClassifyNode(arc ArcType, origin Origin, hasSpecs bool) DependencyFlags {
	if arc == ArcTypeRoot {
		return DependencyTypeRoot
	}
	var flags DependencyFlags
	switch origin {
	case OriginDirect:
		flags |= DependencyTypePurelyDirect
	case OriginPartlyDirect:
		flags |= DependencyTypePartlyDirect
	default:
		flags |= DependencyTypeAncestral
	}
	if hasSpecs {
		flags |= DependencyTypeNonVirtual
	} else {
		flags |= DependencyTypeVirtual
	}
	return flags
}

func shouldStoreDependency(flags DependencyFlags) bool {
	return flags.IsDirect()
}

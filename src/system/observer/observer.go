package observer

import (
	"strconv"
	"sync"

	"github.com/voodooEntity/gits"
	"github.com/voodooEntity/gits/src/query"
	"github.com/voodooEntity/gits/src/storage"
	"github.com/voodooEntity/gits/src/transport"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

// Observer mirrors snapshots of a dependency index into a gits instance.
// Every Capture adds a Snapshot entity; earlier snapshots stay queryable.
//
//	Snapshot -> LayerStack -> Site -> Dependent
//	Snapshot -> Field
type Observer struct {
	Gits    *gits.Gits
	log     *archivist.Archivist
	mu      sync.Mutex
	version int
}

func New(name string, logger *archivist.Archivist) *Observer {
	if logger == nil {
		logger = archivist.New(&archivist.Config{})
	}
	logger = logger.Named("observer")
	logger.Info("Creating observer", name)
	return &Observer{
		Gits: gits.NewInstance(name),
		log:  logger,
	}
}

// Capture writes the current state of idx as a new snapshot and returns its
// version.
func (o *Observer) Capture(idx *pcp.Index) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.version++

	snapshot := entity("Snapshot", strconv.Itoa(o.version))
	snapshot.Properties["Dependencies"] = strconv.Itoa(idx.NumDependencies())

	// ForEachDependency walks stacks and sites in order, so each group is
	// closed once the next one starts.
	var stack, site transport.TransportEntity
	flushSite := func() {
		if site.Type != "" {
			stack.ChildRelations = append(stack.ChildRelations, relation(site))
			site = transport.TransportEntity{}
		}
	}
	flushStack := func() {
		flushSite()
		if stack.Type != "" {
			snapshot.ChildRelations = append(snapshot.ChildRelations, relation(stack))
			stack = transport.TransportEntity{}
		}
	}
	idx.ForEachDependency(func(ls pcp.LayerStack, sitePath, primIndexPath sdfpath.Path) {
		if stack.Value != ls.Identifier() {
			flushStack()
			stack = entity("LayerStack", ls.Identifier())
			stack.Properties["RootLayer"] = ls.RootLayer().Identifier()
		}
		if site.Value != sitePath.String() {
			flushSite()
			site = entity("Site", sitePath.String())
		}
		site.ChildRelations = append(site.ChildRelations, relation(entity("Dependent", primIndexPath.String())))
	})
	flushStack()
	for _, field := range idx.DynamicFileFormatArgumentFields() {
		snapshot.ChildRelations = append(snapshot.ChildRelations, relation(entity("Field", field)))
	}

	o.Gits.MapData(snapshot)
	o.log.Debug(archivist.DEBUG_LEVEL_DUMP, "captured snapshot", o.version, snapshot)
	o.log.Debug(archivist.DEBUG_LEVEL_INFO, "captured snapshot version=", o.version, " deps=", idx.NumDependencies())
	return o.version
}

// Latest returns the version of the last snapshot, 0 before the first Capture.
func (o *Observer) Latest() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.version
}

// LayerStacks returns the identifiers of the layer stacks with dependencies
// in the snapshot.
func (o *Observer) LayerStacks(version int) []string {
	qry := snapshotQuery(version).To(query.New().Read("LayerStack"))
	return o.childValues(qry)
}

// Fields returns the possible dynamic file format argument fields recorded in
// the snapshot.
func (o *Observer) Fields(version int) []string {
	qry := snapshotQuery(version).To(query.New().Read("Field"))
	return o.childValues(qry)
}

// DependentsOnSite returns the prim index paths recorded on the exact site in
// the snapshot.
func (o *Observer) DependentsOnSite(version int, layerStack string, site sdfpath.Path) []string {
	qry := snapshotQuery(version).To(
		query.New().Read("LayerStack").Match("Value", "==", layerStack).To(
			query.New().Read("Site").Match("Value", "==", site.String()).To(
				query.New().Read("Dependent"),
			),
		),
	)
	result := o.Gits.Query().Execute(qry)
	o.log.Debug(archivist.DEBUG_LEVEL_DUMP, "DependentsOnSite ", layerStack, site.String(), result)

	var ret []string
	for _, snapshot := range result.Entities {
		for _, stack := range snapshot.Children() {
			for _, s := range stack.Children() {
				for _, dependent := range s.Children() {
					ret = append(ret, dependent.Value)
				}
			}
		}
	}
	return ret
}

// NumDependencies returns the dependency count stored on the snapshot, -1
// if the snapshot is unknown.
func (o *Observer) NumDependencies(version int) int {
	result := o.Gits.Query().Execute(snapshotQuery(version))
	if 0 == result.Amount {
		return -1
	}
	n, err := strconv.Atoi(result.Entities[0].Properties["Dependencies"])
	if err != nil {
		o.log.Error("snapshot carries a broken dependency count", version, err)
		return -1
	}
	return n
}

func (o *Observer) childValues(qry *query.Query) []string {
	result := o.Gits.Query().Execute(qry)
	var ret []string
	for _, snapshot := range result.Entities {
		for _, child := range snapshot.Children() {
			ret = append(ret, child.Value)
		}
	}
	return ret
}

func snapshotQuery(version int) *query.Query {
	return query.New().Read("Snapshot").Match("Value", "==", strconv.Itoa(version))
}

func entity(entityType, value string) transport.TransportEntity {
	return transport.TransportEntity{
		ID:         storage.MAP_FORCE_CREATE,
		Type:       entityType,
		Value:      value,
		Context:    "pcpdeps",
		Properties: make(map[string]string),
	}
}

func relation(target transport.TransportEntity) transport.TransportRelation {
	return transport.TransportRelation{Target: target}
}

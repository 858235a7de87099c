package pcp

import "sort"

// DynamicFileFormat is a file format whose arguments are computed from
// composed metadata of the prim that references it.
type DynamicFileFormat interface {
	// CanFieldChangeAffectFileFormatArguments reports whether changing field
	// from oldValue to newValue can alter the arguments computed with the
	// given context data.
	CanFieldChangeAffectFileFormatArguments(field string, oldValue, newValue any, contextData any) bool
}

type dynamicFormatContext struct {
	format      DynamicFileFormat
	contextData any
}

// DynamicFileFormatDependencyData records which metadata fields influenced the
// dynamic file format arguments computed while composing one prim index.
//
// The zero value is empty. Once handed to Index.Add the data belongs to the
// index and must not be modified.
type DynamicFileFormatDependencyData struct {
	contexts []dynamicFormatContext
	fields   map[string]struct{}
}

// AddDependencyContext records that format computed its arguments with
// contextData from the composed values of fieldNames.
func (d *DynamicFileFormatDependencyData) AddDependencyContext(format DynamicFileFormat, contextData any, fieldNames []string) {
	d.contexts = append(d.contexts, dynamicFormatContext{format: format, contextData: contextData})
	if d.fields == nil {
		d.fields = make(map[string]struct{}, len(fieldNames))
	}
	for _, name := range fieldNames {
		d.fields[name] = struct{}{}
	}
}

// IsEmpty reports whether no dependency context was ever added.
func (d DynamicFileFormatDependencyData) IsEmpty() bool {
	return len(d.contexts) == 0
}

// RelevantFieldNames returns the sorted union of the field names of all
// contexts.
func (d DynamicFileFormatDependencyData) RelevantFieldNames() []string {
	out := make([]string, 0, len(d.fields))
	for name := range d.fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (d DynamicFileFormatDependencyData) hasRelevantField(field string) bool {
	_, ok := d.fields[field]
	return ok
}

// CanFieldChangeAffectFileFormatArguments asks every recorded format whether
// the field change matters to it.
func (d DynamicFileFormatDependencyData) CanFieldChangeAffectFileFormatArguments(field string, oldValue, newValue any) bool {
	if d.IsEmpty() || !d.hasRelevantField(field) {
		return false
	}
	for _, ctx := range d.contexts {
		if ctx.format.CanFieldChangeAffectFileFormatArguments(field, oldValue, newValue, ctx.contextData) {
			return true
		}
	}
	return false
}

package scene

import "reflect"

// FieldSetFormat is a dynamic file format whose arguments are the composed
// values of a fixed set of fields. Any actual value change of one of them
// changes the arguments.
type FieldSetFormat struct {
	Name   string
	Fields []string
}

func (f *FieldSetFormat) CanFieldChangeAffectFileFormatArguments(field string, oldValue, newValue any, contextData any) bool {
	for _, name := range f.Fields {
		if name == field {
			return !reflect.DeepEqual(oldValue, newValue)
		}
	}
	return false
}

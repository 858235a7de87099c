package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wabianimation/pcpdeps/src/system/cerebrum"
	"github.com/wabianimation/pcpdeps/src/system/scene"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

var errBadChange = errors.New("malformed change")

// parseChange reads layerStack:/Path or layerStack:/Path:field=old:new.
func parseChange(s *scene.Scene, arg string) (cerebrum.Change, error) {
	parts := strings.SplitN(arg, ":", 3)
	if len(parts) < 2 {
		return cerebrum.Change{}, fmt.Errorf("%w %q: want layerStack:/Path[:field=old:new]", errBadChange, arg)
	}
	ls, ok := s.LayerStack(parts[0])
	if !ok {
		return cerebrum.Change{}, fmt.Errorf("change %q: %w %q", arg, scene.ErrUnknownLayerStack, parts[0])
	}
	path, err := sdfpath.Parse(parts[1])
	if err != nil {
		return cerebrum.Change{}, fmt.Errorf("change %q: %w", arg, err)
	}
	change := cerebrum.Change{LayerStack: ls, Path: path}
	if len(parts) == 2 {
		return change, nil
	}

	field, values, ok := strings.Cut(parts[2], "=")
	if !ok || field == "" {
		return cerebrum.Change{}, fmt.Errorf("%w %q: field change needs field=old:new", errBadChange, arg)
	}
	oldValue, newValue, ok := strings.Cut(values, ":")
	if !ok {
		return cerebrum.Change{}, fmt.Errorf("%w %q: field change needs field=old:new", errBadChange, arg)
	}
	change.Field, change.OldValue, change.NewValue = field, oldValue, newValue
	return change, nil
}

func parseChanges(s *scene.Scene, args []string) ([]cerebrum.Change, error) {
	changes := make([]cerebrum.Change, 0, len(args))
	for _, arg := range args {
		c, err := parseChange(s, arg)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, nil
}

package runtime

import (
	"sort"
)

// Environment provides lexical scoping for Rox runtime values: one mutable
// binding frame with a link to its enclosing frame. Frames are shared by
// reference: a closure captures the frame itself, never a copy, so
// mutations made through one closure are visible to every other closure
// holding the same frame.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new frame, optionally nested under a parent. The
// parent link is fixed for the frame's lifetime.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or replaces a binding in the current frame. Declaration is
// the only way to introduce a binding; re-declaring in the same frame
// replaces the previous value.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Get retrieves a binding, searching outward through the frame chain.
func (e *Environment) Get(name string) (Value, error) {
	if v, ok := e.values[name]; ok {
		return v, nil
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, NewError(ErrUndefinedVariable, "undefined variable '%s'", name)
}

// Assign updates an existing binding in the first frame where it appears.
// Assignment never introduces a binding.
func (e *Environment) Assign(name string, value Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = value
		return nil
	}
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return NewError(ErrUndefinedVariable, "undefined variable '%s'", name)
}

// GetAt walks exactly depth parent links and looks the name up in that
// frame alone. The resolver guarantees the binding exists there; a miss is
// an internal-consistency failure, not a user error.
func (e *Environment) GetAt(depth int, name string) (Value, error) {
	frame := e.Ancestor(depth)
	if frame == nil {
		return nil, NewError(ErrInternal, "no frame at depth %d for '%s'", depth, name)
	}
	if v, ok := frame.values[name]; ok {
		return v, nil
	}
	return nil, NewError(ErrInternal, "resolved variable '%s' missing at depth %d", name, depth)
}

// AssignAt writes to the frame exactly depth links out, failing when the
// name was never declared there.
func (e *Environment) AssignAt(depth int, name string, value Value) error {
	frame := e.Ancestor(depth)
	if frame == nil {
		return NewError(ErrInternal, "no frame at depth %d for '%s'", depth, name)
	}
	if _, ok := frame.values[name]; !ok {
		return NewError(ErrInternal, "resolved variable '%s' missing at depth %d", name, depth)
	}
	frame.values[name] = value
	return nil
}

// Ancestor returns the frame depth links out, or nil when the chain is
// shorter than that.
func (e *Environment) Ancestor(depth int) *Environment {
	frame := e
	for i := 0; i < depth; i++ {
		if frame == nil {
			return nil
		}
		frame = frame.parent
	}
	return frame
}

// Keys returns the frame's own bindings in sorted order (useful for
// determinism in tests).
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package types

import (
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Data describes a connection type: its display color, the native Go types
// carried by inputs and outputs of this type, and the value an unconnected
// input of this type reads.
type Data struct {
	Name  string // Unique type name (e.g. "Float")
	Color string // Display color as "#RRGGBB"

	// InputType is the native type an input of this type accepts.
	// Nil means the input accepts only outputs of the same type name.
	InputType reflect.Type
	// OutputType is the native type an output of this type carries.
	OutputType reflect.Type

	// Default is read by unconnected inputs and written to fresh outputs.
	Default any

	// Accepts lists other type names whose outputs may feed inputs of
	// this type.
	Accepts []string
}

// Declaration provides one connection type. Registries are populated from an
// explicit list of declarations rather than by scanning loaded code.
type Declaration interface {
	TypeData() Data
}

// DeclarationFunc adapts a function to the Declaration interface.
type DeclarationFunc func() Data

// TypeData calls f.
func (f DeclarationFunc) TypeData() Data { return f() }

// Registry maps connection type names to their Data.
//
// A Registry is built once per session with [New] or [Registry.Populate] and
// queried many times afterwards. It is not safe for concurrent mutation;
// concurrent reads after population are fine.
type Registry struct {
	types  map[string]Data
	order  []string
	logger *log.Logger

	mu     sync.Mutex
	warned map[string]bool // unknown names already logged by Lookup
}

// New creates a registry populated from decls.
// Returns an error with code DUPLICATE_TYPE if two declarations share a name.
// If logger is nil, log.Default() is used for fallback warnings.
func New(logger *log.Logger, decls ...Declaration) (*Registry, error) {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		types:  make(map[string]Data),
		logger: logger,
	}
	if err := r.Populate(decls...); err != nil {
		return nil, err
	}
	return r, nil
}

// NewDefault creates a registry populated with the built-in types.
func NewDefault(logger *log.Logger) *Registry {
	r, err := New(logger, Builtin()...)
	if err != nil {
		// Built-in declarations have distinct names.
		panic(err)
	}
	return r
}

// Populate clears the registry and registers every declaration in order.
// Calling it again with the same declarations yields the same registry;
// entries are rebuilt, never duplicated. On error the registry is left empty.
func (r *Registry) Populate(decls ...Declaration) error {
	r.types = make(map[string]Data, len(decls))
	r.order = r.order[:0]
	r.mu.Lock()
	r.warned = nil
	r.mu.Unlock()
	for _, d := range decls {
		if err := r.Register(d.TypeData()); err != nil {
			r.types = make(map[string]Data)
			r.order = nil
			return err
		}
	}
	return nil
}

// Register adds a type. Returns DUPLICATE_TYPE if the name is already present
// and INVALID_NAME or INVALID_INPUT if the declaration is malformed.
func (r *Registry) Register(d Data) error {
	if err := errors.ValidateIdentifier("type", d.Name); err != nil {
		return err
	}
	if d.Color != "" {
		if err := errors.ValidateColor(d.Color); err != nil {
			return err
		}
	}
	if _, exists := r.types[d.Name]; exists {
		return errors.New(errors.ErrCodeDuplicateType, "type %q already registered", d.Name)
	}
	d.Accepts = slices.Clone(d.Accepts)
	r.types[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Resolve returns the Data registered under name.
// Returns an error with code UNKNOWN_TYPE if no such type exists.
func (r *Registry) Resolve(name string) (Data, error) {
	d, ok := r.types[name]
	if !ok {
		return Data{}, errors.New(errors.ErrCodeUnknownType, "no type data defined for %q", name)
	}
	return d, nil
}

// Lookup returns the Data for name, falling back to the first registered type
// when name is unknown. The fallback is logged once per name and never fails,
// so a canvas referencing a type that is no longer registered still loads and
// displays. An empty registry yields the zero Data.
func (r *Registry) Lookup(name string) Data {
	d, err := r.Resolve(name)
	if err == nil {
		return d
	}
	first := r.firstMiss(name)
	if len(r.order) == 0 {
		if first {
			r.logger.Error("type registry is empty", "type", name)
		}
		return Data{Name: name}
	}
	fallback := r.types[r.order[0]]
	if first {
		r.logger.Warn("unknown connection type, using fallback", "type", name, "fallback", fallback.Name)
	}
	return fallback
}

// firstMiss records name as unknown and reports whether it was new.
func (r *Registry) firstMiss(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.warned[name] {
		return false
	}
	if r.warned == nil {
		r.warned = make(map[string]bool)
	}
	r.warned[name] = true
	return true
}

// InputType returns the native input type of name, or nil when the type is
// unknown or declares none.
func (r *Registry) InputType(name string) reflect.Type {
	if d, ok := r.types[name]; ok {
		return d.InputType
	}
	return nil
}

// OutputType returns the native output type of name, or nil when the type is
// unknown or declares none.
func (r *Registry) OutputType(name string) reflect.Type {
	if d, ok := r.types[name]; ok {
		return d.OutputType
	}
	return nil
}

// Compatible reports whether an output of type out may feed an input of type in.
//
// Types are compatible when the names match, when the input type lists out in
// its Accepts, or when out's OutputType is assignable to in's InputType.
func (r *Registry) Compatible(out, in string) bool {
	if out == in {
		return true
	}
	inData, okIn := r.types[in]
	if !okIn {
		return false
	}
	if slices.Contains(inData.Accepts, out) {
		return true
	}
	outData, okOut := r.types[out]
	if !okOut || outData.OutputType == nil || inData.InputType == nil {
		return false
	}
	return outData.OutputType.AssignableTo(inData.InputType)
}

// Names returns all registered type names in registration order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.order) }

// All returns every registered Data in registration order.
func (r *Registry) All() []Data {
	out := make([]Data, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}

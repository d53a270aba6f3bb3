package canvas

import (
	"fmt"
	"reflect"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Value returns the current value of a port.
//
// For an input it is the value of the connected output, converted to the
// input type's native type when the registry declares one, or the type's
// default when unconnected. For an output it is the last value written.
func (g *Graph) Value(ref PortRef) (any, error) {
	p, err := g.Port(ref)
	if err != nil {
		return nil, err
	}
	return g.value(p), nil
}

func (g *Graph) value(p *Port) any {
	if p.Direction == Output {
		return p.value
	}
	if p.source == nil {
		return g.registry.Lookup(p.Type).Default
	}
	src, err := g.Port(*p.source)
	if err != nil {
		return g.registry.Lookup(p.Type).Default
	}
	if v, ok := convert(src.value, g.registry.InputType(p.Type)); ok {
		return v
	}
	return src.value
}

// SetValue writes the value of an output port. Writing to an input is
// rejected with INVALID_WRITE whether or not it is connected; inputs only
// ever read from their source.
//
// When the port's type declares a native output type, numeric values are
// converted to it and anything else not assignable is rejected with
// TYPE_MISMATCH. Values may be written while the graph is frozen.
func (g *Graph) SetValue(ref PortRef, v any) error {
	p, err := g.Port(ref)
	if err != nil {
		return err
	}
	if p.Direction == Input {
		return errors.New(errors.ErrCodeInvalidWrite, "cannot write to input %q of node %s", p.Name, p.node)
	}
	if t := g.registry.OutputType(p.Type); t != nil && v != nil {
		cv, ok := convert(v, t)
		if !ok {
			return errors.New(errors.ErrCodeTypeMismatch, "cannot write %T to %s output %q", v, p.Type, p.Name)
		}
		v = cv
	}
	p.value = v
	return nil
}

// ValueAs returns the value of a port converted to T. Numeric values are
// converted between numeric types; anything else must already be a T.
func ValueAs[T any](g *Graph, ref PortRef) (T, error) {
	var zero T
	v, err := g.Value(ref)
	if err != nil {
		return zero, err
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	cv, ok := convert(v, reflect.TypeOf(zero))
	if !ok || cv == nil {
		return zero, errors.New(errors.ErrCodeTypeMismatch, "port %s holds %T, not %T", ref, v, zero)
	}
	return cv.(T), nil
}

// convert converts v to t. Values already assignable pass through; numeric
// kinds convert into each other. A nil t or v passes v through unchanged.
func convert(v any, t reflect.Type) (any, bool) {
	if v == nil || t == nil {
		return v, true
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return v, true
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return rv.Convert(t).Interface(), true
	}
	return nil, false
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Calc is the view a [Behavior] gets of its node during Calculate.
type Calc struct {
	g      *Graph
	node   *Node
	reason string
}

// Node returns the node being calculated.
func (c *Calc) Node() *Node { return c.node }

// Fields returns the node's fields.
func (c *Calc) Fields() Fields { return c.node.Fields }

// Connected reports whether the named input has a source.
func (c *Calc) Connected(input string) bool {
	p, ok := c.node.PortByName(input)
	return ok && p.Direction == Input && p.source != nil
}

// Input returns the current value of the named input.
func (c *Calc) Input(name string) (any, bool) {
	p, ok := c.node.PortByName(name)
	if !ok || p.Direction != Input {
		return nil, false
	}
	return c.g.value(p), true
}

// Float returns the named input as a float64. The second result is false if
// there is no such input or its value is not numeric.
func (c *Calc) Float(name string) (float64, bool) {
	v, ok := c.Input(name)
	if !ok {
		return 0, false
	}
	f, ok := convert(v, reflect.TypeFor[float64]())
	if !ok || f == nil {
		return 0, false
	}
	return f.(float64), true
}

// Output writes the named output. It fails the calculation if there is no
// such output or the value does not fit its type.
func (c *Calc) Output(name string, v any) bool {
	p, ok := c.node.PortByName(name)
	if !ok || p.Direction != Output {
		return c.Fail("no output %q", name)
	}
	if err := c.g.SetValue(p.Ref(), v); err != nil {
		return c.Fail("%s", errors.UserMessage(err))
	}
	return true
}

// Fail records why the calculation cannot proceed and returns false, so a
// behavior can write `return c.Fail(...)`.
func (c *Calc) Fail(format string, args ...any) bool {
	c.reason = fmt.Sprintf(format, args...)
	return false
}

// Reason returns the message recorded by Fail.
func (c *Calc) Reason() string { return c.reason }

// Calculate runs the behavior of one node. Required inputs are checked
// first. A panicking behavior is reported as a failure rather than unwinding
// through the caller. On failure, outputs written before the failure keep
// their new values and the reason describes what went wrong.
func (g *Graph) Calculate(id NodeID) (ok bool, reason string) {
	n, found := g.nodes[id]
	if !found {
		return false, fmt.Sprintf("node %s not found", id)
	}
	for _, p := range n.ports {
		if p.Direction == Input && p.Required && p.source == nil {
			return false, fmt.Sprintf("required input %q is not connected", p.Name)
		}
	}
	if n.behavior == nil {
		return false, fmt.Sprintf("node kind %q has no behavior", n.Kind)
	}

	c := &Calc{g: g, node: n}
	defer func() {
		if r := recover(); r != nil {
			ok, reason = false, fmt.Sprintf("panic: %v", r)
		}
	}()
	if !n.behavior.Calculate(c) {
		reason = c.reason
		if reason == "" {
			reason = "calculation failed"
		}
		return false, reason
	}
	return true, ""
}

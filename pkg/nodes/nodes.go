// Package nodes provides the built-in node kinds of the float calculator.
//
// Register adds every kind to a catalog. Each kind is also available on its
// own (Input, Scale, ...) so hosts can assemble a custom catalog.
//
//	inputNode    field value            → Value
//	scaleNode    In,  field factor      → Out
//	offsetNode   In,  field offset      → Out
//	calcNode     A, B, field op         → Result
//	clampNode    In,  fields min, max   → Out
//	displayNode  In                     → Shown
//
// All ports carry the Float connection type. A node fails when a required
// input is unconnected, when its result is not finite, or on division by
// zero; the engine then leaves everything downstream stale.
package nodes

import (
	"math"
	"slices"

	"github.com/matzehuels/nodecanvas/pkg/canvas"
	"github.com/matzehuels/nodecanvas/pkg/types"
)

// Kind IDs stored in snapshots.
const (
	InputID   = "inputNode"
	ScaleID   = "scaleNode"
	OffsetID  = "offsetNode"
	CalcID    = "calcNode"
	ClampID   = "clampNode"
	DisplayID = "displayNode"
)

// Operations accepted by the calcNode "op" field.
var Operations = []string{"add", "sub", "mul", "div", "min", "max", "pow"}

// Register adds every built-in kind to cat, in menu order.
func Register(cat *canvas.Catalog) error {
	for _, k := range All() {
		if err := cat.Register(k); err != nil {
			return err
		}
	}
	return nil
}

// All returns the built-in kinds in menu order.
func All() []canvas.Kind {
	return []canvas.Kind{Input(), Scale(), Offset(), Calc(), Clamp(), Display()}
}

func in(name string) canvas.PortSpec {
	return canvas.PortSpec{Name: name, Direction: canvas.Input, Type: types.Float, Required: true}
}

func out(name string) canvas.PortSpec {
	return canvas.PortSpec{Name: name, Direction: canvas.Output, Type: types.Float}
}

// emit writes v to the named output, failing on NaN and infinities.
func emit(c *canvas.Calc, name string, v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return c.Fail("result %v is not a finite number", v)
	}
	return c.Output(name, v)
}

// Input is a constant source node.
func Input() canvas.Kind {
	return canvas.Kind{
		ID:     InputID,
		Title:  "Input Node",
		Menu:   "Float/Input",
		Size:   canvas.Vec2{X: 200, Y: 50},
		Ports:  []canvas.PortSpec{out("Value")},
		Fields: canvas.Fields{"value": float64(1)},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			return emit(c, "Value", c.Fields().Float("value"))
		}),
	}
}

// Scale multiplies its input by the factor field.
func Scale() canvas.Kind {
	return canvas.Kind{
		ID:     ScaleID,
		Title:  "Scale Node",
		Menu:   "Float/Scale",
		Size:   canvas.Vec2{X: 200, Y: 75},
		Ports:  []canvas.PortSpec{in("In"), out("Out")},
		Fields: canvas.Fields{"factor": float64(2)},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			v, ok := c.Float("In")
			if !ok {
				return c.Fail("input In is not a number")
			}
			return emit(c, "Out", v*c.Fields().Float("factor"))
		}),
	}
}

// Offset adds the offset field to its input.
func Offset() canvas.Kind {
	return canvas.Kind{
		ID:     OffsetID,
		Title:  "Offset Node",
		Menu:   "Float/Offset",
		Size:   canvas.Vec2{X: 200, Y: 75},
		Ports:  []canvas.PortSpec{in("In"), out("Out")},
		Fields: canvas.Fields{"offset": float64(1)},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			v, ok := c.Float("In")
			if !ok {
				return c.Fail("input In is not a number")
			}
			return emit(c, "Out", v+c.Fields().Float("offset"))
		}),
	}
}

// Calc applies a binary operation to its two inputs.
func Calc() canvas.Kind {
	return canvas.Kind{
		ID:     CalcID,
		Title:  "Calc Node",
		Menu:   "Float/Calculation",
		Size:   canvas.Vec2{X: 200, Y: 100},
		Ports:  []canvas.PortSpec{in("A"), in("B"), out("Result")},
		Fields: canvas.Fields{"op": "add"},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			a, okA := c.Float("A")
			b, okB := c.Float("B")
			if !okA || !okB {
				return c.Fail("inputs must be numbers")
			}
			r, ok := apply(c.Fields().String("op"), a, b)
			if !ok {
				return c.Fail("unknown operation %q", c.Fields().String("op"))
			}
			if c.Fields().String("op") == "div" && b == 0 {
				return c.Fail("division by zero")
			}
			return emit(c, "Result", r)
		}),
	}
}

func apply(op string, a, b float64) (float64, bool) {
	switch op {
	case "add":
		return a + b, true
	case "sub":
		return a - b, true
	case "mul":
		return a * b, true
	case "div":
		return a / b, true
	case "min":
		return math.Min(a, b), true
	case "max":
		return math.Max(a, b), true
	case "pow":
		return math.Pow(a, b), true
	}
	return 0, false
}

// ValidOperation reports whether op is accepted by calcNode.
func ValidOperation(op string) bool { return slices.Contains(Operations, op) }

// Clamp limits its input to [min, max].
func Clamp() canvas.Kind {
	return canvas.Kind{
		ID:     ClampID,
		Title:  "Clamp Node",
		Menu:   "Float/Clamp",
		Size:   canvas.Vec2{X: 200, Y: 100},
		Ports:  []canvas.PortSpec{in("In"), out("Out")},
		Fields: canvas.Fields{"min": float64(0), "max": float64(1)},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			v, ok := c.Float("In")
			if !ok {
				return c.Fail("input In is not a number")
			}
			lo, hi := c.Fields().Float("min"), c.Fields().Float("max")
			if lo > hi {
				return c.Fail("min %v is greater than max %v", lo, hi)
			}
			return emit(c, "Out", math.Max(lo, math.Min(hi, v)))
		}),
	}
}

// Display passes its input through so hosts can show it.
func Display() canvas.Kind {
	return canvas.Kind{
		ID:    DisplayID,
		Title: "Display Node",
		Menu:  "Float/Display",
		Size:  canvas.Vec2{X: 200, Y: 50},
		Ports: []canvas.PortSpec{in("In"), out("Shown")},
		Behavior: canvas.BehaviorFunc(func(c *canvas.Calc) bool {
			v, ok := c.Float("In")
			if !ok {
				return c.Fail("input In is not a number")
			}
			return emit(c, "Shown", v)
		}),
	}
}

package canvas

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/types"
)

// PortSpec declares one port of a node kind.
type PortSpec struct {
	Name      string
	Direction Direction
	Type      string
	Required  bool
}

// Kind describes a node kind: its ports, default fields and behavior.
type Kind struct {
	ID       string // Discriminator stored in snapshots (e.g. "inputNode")
	Title    string // Default node name (e.g. "Input Node")
	Menu     string // Menu path shown by front ends (e.g. "Float/Input")
	Size     Vec2
	Ports    []PortSpec
	Fields   Fields // Default field values; also fixes each field's type
	Behavior Behavior
}

// Catalog holds the node kinds a front end can instantiate.
type Catalog struct {
	kinds    map[string]*Kind
	order    []string
	registry *types.Registry
}

// NewCatalog creates an empty catalog. The registry supplies default output
// values for fresh nodes; if nil, the built-in registry is used.
func NewCatalog(reg *types.Registry) *Catalog {
	if reg == nil {
		reg = types.NewDefault(nil)
	}
	return &Catalog{
		kinds:    make(map[string]*Kind),
		registry: reg,
	}
}

// Register adds a node kind. Returns INVALID_INPUT if the kind has no
// behavior, declares duplicate port names or is already registered.
func (c *Catalog) Register(k Kind) error {
	if err := errors.ValidateIdentifier("kind", k.ID); err != nil {
		return err
	}
	if _, exists := c.kinds[k.ID]; exists {
		return errors.New(errors.ErrCodeInvalidInput, "node kind %q already registered", k.ID)
	}
	if k.Behavior == nil {
		return errors.New(errors.ErrCodeInvalidInput, "node kind %q has no behavior", k.ID)
	}
	seen := make(map[string]bool, len(k.Ports))
	for _, p := range k.Ports {
		if err := errors.ValidateIdentifier("port", p.Name); err != nil {
			return err
		}
		if seen[p.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "node kind %q declares port %q twice", k.ID, p.Name)
		}
		seen[p.Name] = true
	}
	k.Ports = slices.Clone(k.Ports)
	k.Fields = k.Fields.Clone()
	if k.Title == "" {
		k.Title = k.ID
	}
	c.kinds[k.ID] = &k
	c.order = append(c.order, k.ID)
	return nil
}

// Kind returns the kind registered under id.
func (c *Catalog) Kind(id string) (*Kind, bool) {
	k, ok := c.kinds[id]
	return k, ok
}

// Kinds returns all registered kinds in registration order.
func (c *Catalog) Kinds() []*Kind {
	out := make([]*Kind, len(c.order))
	for i, id := range c.order {
		out[i] = c.kinds[id]
	}
	return out
}

// Registry returns the type registry used for default port values.
func (c *Catalog) Registry() *types.Registry { return c.registry }

// Create instantiates a node of the given kind at pos with a fresh ID.
// All declared ports are initialized; the node is not attached to a graph.
// Returns UNKNOWN_KIND if no such kind is registered.
func (c *Catalog) Create(kind string, pos Vec2) (*Node, error) {
	k, ok := c.kinds[kind]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownKind, "unknown node kind %q", kind)
	}
	return c.build(k, NodeID(uuid.NewString()), pos), nil
}

func (c *Catalog) build(k *Kind, id NodeID, pos Vec2) *Node {
	n := &Node{
		ID:       id,
		Kind:     k.ID,
		Name:     k.Title,
		Position: pos,
		Size:     k.Size,
		Fields:   k.Fields.Clone(),
		behavior: k.Behavior,
		ports:    make([]*Port, len(k.Ports)),
	}
	for i, spec := range k.Ports {
		p := &Port{
			Name:      spec.Name,
			Direction: spec.Direction,
			Type:      spec.Type,
			Required:  spec.Required,
			node:      id,
			index:     i,
		}
		if spec.Direction == Output {
			p.value = c.registry.Lookup(spec.Type).Default
		}
		n.ports[i] = p
	}
	return n
}

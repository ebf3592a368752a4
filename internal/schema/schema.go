// Package schema implements the pluggable per-group + ungrouped attribute
// typing discipline (Inferred/Provided), grounded on attributes.rs'
// handle_schema and datatypes/mod.rs' Evaluate.
package schema

import (
	"github.com/ritamzico/propgraph/internal/datatype"
	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/groupmap"
	"github.com/ritamzico/propgraph/internal/value"
)

type Mode int

const (
	Inferred Mode = iota
	Provided
)

// GroupSchema is the typing map for one group's (or the ungrouped set's)
// node and edge attributes.
type GroupSchema struct {
	Nodes  map[string]datatype.AttributeDataType
	Edges  map[string]datatype.AttributeDataType
	frozen bool
}

func newGroupSchema() *GroupSchema {
	return &GroupSchema{
		Nodes: make(map[string]datatype.AttributeDataType),
		Edges: make(map[string]datatype.AttributeDataType),
	}
}

type Schema struct {
	Mode      Mode
	Ungrouped *GroupSchema
	Groups    map[groupmap.Group]*GroupSchema
}

func New(mode Mode) *Schema {
	return &Schema{
		Mode:      mode,
		Ungrouped: newGroupSchema(),
		Groups:    make(map[groupmap.Group]*GroupSchema),
	}
}

func (s *Schema) groupSchema(group *groupmap.Group) *GroupSchema {
	if group == nil {
		return s.Ungrouped
	}
	gs, ok := s.Groups[*group]
	if !ok {
		gs = newGroupSchema()
		s.Groups[*group] = gs
	}
	return gs
}

// UpdateNodeAttributes widens the node-attribute typing for Inferred mode,
// or validates it against the Provided schema, for each group the
// entity belongs to (or the ungrouped schema when groups is empty) — the
// same fan-out handle_schema performs once per group.
func (s *Schema) UpdateNodeAttributes(attrs map[string]value.Value, groups []groupmap.Group) error {
	return s.handle(attrs, groups, func(gs *GroupSchema) map[string]datatype.AttributeDataType { return gs.Nodes })
}

func (s *Schema) UpdateEdgeAttributes(attrs map[string]value.Value, groups []groupmap.Group) error {
	return s.handle(attrs, groups, func(gs *GroupSchema) map[string]datatype.AttributeDataType { return gs.Edges })
}

func (s *Schema) handle(attrs map[string]value.Value, groups []groupmap.Group, pick func(*GroupSchema) map[string]datatype.AttributeDataType) error {
	targets := []*groupmap.Group{nil}
	if len(groups) > 0 {
		targets = make([]*groupmap.Group, len(groups))
		for i := range groups {
			g := groups[i]
			targets[i] = &g
		}
	}

	for _, g := range targets {
		gs := s.groupSchema(g)
		typed := pick(gs)

		switch s.Mode {
		case Inferred:
			widen(typed, attrs, gs.frozen)
		case Provided:
			if err := validate(typed, attrs); err != nil {
				return err
			}
		}
	}

	return nil
}

func widen(typed map[string]datatype.AttributeDataType, attrs map[string]value.Value, frozen bool) {
	for key, v := range attrs {
		existing, ok := typed[key]
		if !ok {
			if frozen {
				continue
			}
			typed[key] = datatype.AttributeDataType{
				DataType:      datatype.KindOf(v.Kind),
				AttributeType: datatype.InferAttributeType(v.Kind),
			}
			continue
		}

		if datatype.Evaluate(existing.DataType, v.Kind) {
			continue
		}
		if frozen {
			continue
		}

		typed[key] = datatype.AttributeDataType{
			DataType:      datatype.Union(existing.DataType, datatype.KindOf(v.Kind)),
			AttributeType: existing.AttributeType,
		}
	}
}

func validate(typed map[string]datatype.AttributeDataType, attrs map[string]value.Value) error {
	for key, v := range attrs {
		expected, ok := typed[key]
		if !ok {
			return errs.Schema("attribute %q is not present in the provided schema", key)
		}
		if !datatype.Evaluate(expected.DataType, v.Kind) {
			return errs.Schema("attribute %q expected %v, got %v", key, expected.DataType, v.Kind)
		}
	}
	return nil
}

// Freeze stops an Inferred group schema from widening: attributes outside
// its current typing are no longer added or unioned in, and the update is
// not rejected either. A Provided schema never widens, so the flag does not
// change its validation.
func (gs *GroupSchema) Freeze()   { gs.frozen = true }
func (gs *GroupSchema) Unfreeze() { gs.frozen = false }
func (gs *GroupSchema) Frozen() bool { return gs.frozen }

func (s *Schema) RemoveGroup(group groupmap.Group) {
	delete(s.Groups, group)
}

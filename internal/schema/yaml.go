package schema

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ritamzico/propgraph/internal/datatype"
	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/value"
)

// yamlAttr is the authoring-friendly shape a Provided-mode schema is hand
// written in, e.g. `age: {type: int, attribute_type: continuous}` — an
// ambient convenience over building AttributeDataType values in Go.
type yamlAttr struct {
	Type          string `yaml:"type"`
	AttributeType string `yaml:"attribute_type"`
}

type yamlGroupSchema struct {
	Nodes map[string]yamlAttr `yaml:"nodes"`
	Edges map[string]yamlAttr `yaml:"edges"`
}

type yamlSchema struct {
	Mode      string                     `yaml:"mode"`
	Ungrouped yamlGroupSchema            `yaml:"ungrouped"`
	Groups    map[string]yamlGroupSchema `yaml:"groups"`
}

func LoadYAML(r io.Reader) (*Schema, error) {
	var doc yamlSchema
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Conversion("decoding schema YAML: %v", err)
	}

	mode := Provided
	if doc.Mode == "inferred" {
		mode = Inferred
	}

	s := New(mode)
	if err := loadGroupSchema(s.Ungrouped, doc.Ungrouped); err != nil {
		return nil, err
	}

	for name, gs := range doc.Groups {
		target := newGroupSchema()
		if err := loadGroupSchema(target, gs); err != nil {
			return nil, err
		}
		s.Groups[value.KeyFromString(name)] = target
	}

	return s, nil
}

func loadGroupSchema(into *GroupSchema, doc yamlGroupSchema) error {
	for key, attr := range doc.Nodes {
		adt, err := attrFromYAML(attr)
		if err != nil {
			return err
		}
		into.Nodes[key] = adt
	}
	for key, attr := range doc.Edges {
		adt, err := attrFromYAML(attr)
		if err != nil {
			return err
		}
		into.Edges[key] = adt
	}
	return nil
}

func attrFromYAML(a yamlAttr) (datatype.AttributeDataType, error) {
	var prim datatype.Primitive
	switch a.Type {
	case "string":
		prim = datatype.PString
	case "int":
		prim = datatype.PInt
	case "float":
		prim = datatype.PFloat
	case "bool":
		prim = datatype.PBool
	case "datetime":
		prim = datatype.PDateTime
	case "duration":
		prim = datatype.PDuration
	case "any":
		prim = datatype.PAny
	default:
		return datatype.AttributeDataType{}, errs.Schema("unknown YAML attribute type %q", a.Type)
	}

	var at datatype.AttributeType
	switch a.AttributeType {
	case "categorical":
		at = datatype.Categorical
	case "continuous":
		at = datatype.Continuous
	case "temporal":
		at = datatype.Temporal
	default:
		at = datatype.Unstructured
	}

	return datatype.AttributeDataType{DataType: datatype.Prim(prim), AttributeType: at}, nil
}

func DumpYAML(w io.Writer, s *Schema) error {
	doc := yamlSchema{
		Mode:      "provided",
		Ungrouped: dumpGroupSchema(s.Ungrouped),
		Groups:    make(map[string]yamlGroupSchema, len(s.Groups)),
	}
	if s.Mode == Inferred {
		doc.Mode = "inferred"
	}
	for group, gs := range s.Groups {
		doc.Groups[group.String()] = dumpGroupSchema(gs)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}

func dumpGroupSchema(gs *GroupSchema) yamlGroupSchema {
	out := yamlGroupSchema{
		Nodes: make(map[string]yamlAttr, len(gs.Nodes)),
		Edges: make(map[string]yamlAttr, len(gs.Edges)),
	}
	for key, adt := range gs.Nodes {
		out.Nodes[key] = attrToYAML(adt)
	}
	for key, adt := range gs.Edges {
		out.Edges[key] = attrToYAML(adt)
	}
	return out
}

func attrToYAML(adt datatype.AttributeDataType) yamlAttr {
	typeName := "any"
	switch adt.DataType.String() {
	case "String":
		typeName = "string"
	case "Int":
		typeName = "int"
	case "Float":
		typeName = "float"
	case "Bool":
		typeName = "bool"
	case "DateTime":
		typeName = "datetime"
	case "Duration":
		typeName = "duration"
	}

	attrTypeName := "unstructured"
	switch adt.AttributeType {
	case datatype.Categorical:
		attrTypeName = "categorical"
	case datatype.Continuous:
		attrTypeName = "continuous"
	case datatype.Temporal:
		attrTypeName = "temporal"
	}

	return yamlAttr{Type: typeName, AttributeType: attrTypeName}
}

package inputmodel

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/reoring/inputmodel/codec"
	js "github.com/reoring/inputmodel/jsonschema"
)

// JSONSchema projects the compiled model into a JSON Schema (draft 2020-12)
// document. Type tags without a JSON Schema counterpart export as plain
// strings, and lenient string encodings accepted by non-strict nodes are not
// represented. Recursive models are emitted through $defs.
func (c *Compiled) JSONSchema() *js.Schema {
	e := &exporter{
		names:   make(map[*Compiled]string),
		onStack: make(map[*Compiled]bool),
		defs:    make(map[string]*js.Schema),
	}
	s := e.node(c)
	s.SchemaURI = js.Draft
	if len(e.defs) > 0 {
		s.Defs = e.defs
	}
	return s
}

type exporter struct {
	names   map[*Compiled]string
	onStack map[*Compiled]bool
	defs    map[string]*js.Schema
}

func (e *exporter) node(c *Compiled) *js.Schema {
	d := c.def()
	var s *js.Schema
	if e.onStack[d] {
		name, ok := e.names[d]
		if !ok {
			name = fmt.Sprintf("node%d", len(e.names)+1)
			e.names[d] = name
		}
		s = &js.Schema{Ref: "#/$defs/" + name}
	} else {
		e.onStack[d] = true
		s = e.body(d)
		delete(e.onStack, d)
		if name, ok := e.names[d]; ok {
			e.defs[name] = s
			s = &js.Schema{Ref: "#/$defs/" + name}
		}
	}
	if c.Nullable() {
		if t, ok := s.Type.(string); ok {
			s.Type = []string{t, "null"}
		} else {
			s = &js.Schema{AnyOf: []*js.Schema{s, {Type: "null"}}}
		}
	}
	if _, def, hasDef := c.Optional(); hasDef {
		s.Default = def
	}
	return s
}

func (e *exporter) body(d *Compiled) *js.Schema {
	switch d.kind {
	case KindObject:
		s := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(d.props))}
		for _, p := range d.props {
			s.Properties[p.name] = e.node(p.node)
			if opt, _, _ := p.node.Optional(); !opt {
				s.Required = append(s.Required, p.name)
			}
		}
		if !d.moreProps {
			s.AdditionalProperties = false
		}
		return s
	case KindArray:
		s := &js.Schema{Type: "array", Items: e.node(d.item), MinItems: d.minLen, MaxItems: d.maxLen}
		if d.exactLen != nil {
			s.MinItems, s.MaxItems = d.exactLen, d.exactLen
		}
		return s
	case KindAnyOf:
		s := &js.Schema{}
		for _, cand := range d.candidates {
			s.AnyOf = append(s.AnyOf, e.node(cand.node))
		}
		return s
	}
	return valueSchema(d)
}

var tagTypes = map[string][2]string{
	"object":  {"object", ""},
	"array":   {"array", ""},
	"null":    {"null", ""},
	"int":     {"integer", ""},
	"float":   {"number", ""},
	"number":  {"number", ""},
	"boolean": {"boolean", ""},
	"date":    {"string", "date-time"},
	"email":   {"string", "email"},
	"url":     {"string", "uri"},
	"ipv4":    {"string", "ipv4"},
	"ipv6":    {"string", "ipv6"},
	"uuid3":   {"string", "uuid"},
	"uuid4":   {"string", "uuid"},
	"uuid5":   {"string", "uuid"},
}

func valueSchema(d *Compiled) *js.Schema {
	s := &js.Schema{}
	var typs []string
	seen := map[string]bool{}
	for _, tc := range d.tags {
		t, ok := tagTypes[tc.tag]
		if !ok {
			t = [2]string{"string", ""}
		}
		if !seen[t[0]] {
			seen[t[0]] = true
			typs = append(typs, t[0])
		}
		if len(d.tags) == 1 {
			s.Format = t[1]
		}
	}
	if len(typs) == 1 {
		s.Type = typs[0]
	} else {
		s.Type = typs
	}

	for name, arg := range d.ruleArgs {
		switch name {
		case "min_length":
			s.MinLength = intPtr(arg)
		case "max_length":
			s.MaxLength = intPtr(arg)
		case "exact_length":
			s.MinLength, s.MaxLength = intPtr(arg), intPtr(arg)
		case "regex":
			switch r := arg.(type) {
			case string:
				s.Pattern = r
			case *regexp.Regexp:
				s.Pattern = r.String()
			}
		case "in":
			s.Enum = anyList(arg)
		case "equals":
			s.Const = arg
		case "min_value":
			if f, ok := codec.Float(arg); ok {
				s.Minimum = &f
			}
		case "max_value":
			if f, ok := codec.Float(arg); ok {
				s.Maximum = &f
			}
		}
	}
	return s
}

func intPtr(arg any) *int {
	i, ok := codec.Int(arg)
	if !ok {
		return nil
	}
	n := int(i)
	return &n
}

func anyList(arg any) []any {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

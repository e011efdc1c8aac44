// Package schemadoc loads models from YAML or JSON documents of the form
//
//	models:
//	  address:
//	    properties:
//	      city: {type: string, rules: {min_length: 1}}
//	  user:
//	    properties:
//	      name: {type: string}
//	      age:  {type: int, optional: true, default: 18}
//	      home: {ref: address}
//
// Each model is registered by name, so documents may refer to each other's
// models through ref and extends.
package schemadoc

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	json "github.com/goccy/go-json"

	inputmodel "github.com/reoring/inputmodel"
	"github.com/reoring/inputmodel/codec"
)

// CodeAssert is reported when an assert expression evaluates to false.
const CodeAssert = "assert"

// LoadYAML reads a YAML document and registers its models in reg
// (inputmodel.DefaultRegistry when nil). Property order follows the document.
func LoadYAML(data []byte, reg *inputmodel.Registry) (map[string]inputmodel.Model, error) {
	doc, err := decodeYAML(data)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	return load(doc, reg)
}

// LoadJSON reads a JSON document and registers its models in reg
// (inputmodel.DefaultRegistry when nil). Properties are ordered by name.
func LoadJSON(data []byte, reg *inputmodel.Registry) (map[string]inputmodel.Model, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	return load(fromJSON(raw), reg)
}

func load(doc any, reg *inputmodel.Registry) (map[string]inputmodel.Model, error) {
	if reg == nil {
		reg = inputmodel.DefaultRegistry
	}
	root, ok := doc.(*mapping)
	if !ok {
		return nil, fmt.Errorf("schemadoc: document must be a mapping")
	}
	rawModels, ok := root.get("models")
	if !ok {
		return nil, fmt.Errorf("schemadoc: missing models")
	}
	models, ok := rawModels.(*mapping)
	if !ok {
		return nil, fmt.Errorf("schemadoc: models must be a mapping")
	}
	out := make(map[string]inputmodel.Model, len(models.keys))
	for _, name := range models.keys {
		m, err := buildNode(models.vals[name], "models."+name)
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	// register only once every node built
	for _, name := range models.keys {
		if err := reg.Register(name, out[name]); err != nil {
			return nil, fmt.Errorf("schemadoc: %w", err)
		}
	}
	return out, nil
}

var (
	metaKeys   = []string{"optional", "default", "nullable"}
	objectKeys = []string{"properties", "extends", "morePropsAllowed"}
	arrayKeys  = []string{"items", "minLength", "maxLength", "exactLength"}
	anyOfKeys  = []string{"anyOf"}
	valueKeys  = []string{"type", "strict", "noCoerce", "rules", "extends", "assert"}
	refKeys    = []string{"ref"}
)

func nodeErr(at, format string, args ...any) error {
	return fmt.Errorf("schemadoc: %s: %s", at, fmt.Sprintf(format, args...))
}

func buildNode(v any, at string) (inputmodel.Model, error) {
	n, ok := v.(*mapping)
	if !ok {
		return nil, nodeErr(at, "node must be a mapping")
	}
	var (
		m       inputmodel.Model
		err     error
		allowed []string
	)
	switch {
	case has(n, "properties"):
		allowed = objectKeys
		m, err = buildObject(n, at)
	case has(n, "items"):
		allowed = arrayKeys
		m, err = buildArray(n, at)
	case has(n, "anyOf"):
		allowed = anyOfKeys
		m, err = buildAnyOf(n, at)
	case has(n, "type"), has(n, "extends"):
		allowed = valueKeys
		m, err = buildValue(n, at)
	case has(n, "ref"):
		allowed = refKeys
		var name string
		if name, err = stringField(n, "ref", at); err == nil {
			m = inputmodel.Ref(name)
		}
	default:
		return nil, nodeErr(at, "node declares none of properties, items, anyOf, type, extends or ref")
	}
	if err != nil {
		return nil, err
	}
	for _, k := range n.keys {
		if !contains(allowed, k) && !contains(metaKeys, k) {
			return nil, nodeErr(at, "unexpected key %q", k)
		}
	}
	return wrapMeta(n, m, at)
}

func wrapMeta(n *mapping, m inputmodel.Model, at string) (inputmodel.Model, error) {
	optional, err := boolField(n, "optional", at)
	if err != nil {
		return nil, err
	}
	nullable, err := boolField(n, "nullable", at)
	if err != nil {
		return nil, err
	}
	def, hasDef := n.get("default")
	if !optional && !nullable && !hasDef {
		return m, nil
	}
	return &inputmodel.MetaModel{
		Model:      m,
		Optional:   optional || hasDef,
		Default:    plain(def),
		HasDefault: hasDef,
		Nullable:   nullable,
	}, nil
}

func buildObject(n *mapping, at string) (inputmodel.Model, error) {
	props, ok := n.vals["properties"].(*mapping)
	if !ok {
		return nil, nodeErr(at, "properties must be a mapping")
	}
	om := &inputmodel.ObjectModel{}
	for _, name := range props.keys {
		child, err := buildNode(props.vals[name], at+".properties."+name)
		if err != nil {
			return nil, err
		}
		om.Properties = append(om.Properties, inputmodel.Property{Name: name, Model: child})
	}
	more, err := boolField(n, "morePropsAllowed", at)
	if err != nil {
		return nil, err
	}
	om.MorePropsAllowed = more
	if has(n, "extends") {
		name, err := stringField(n, "extends", at)
		if err != nil {
			return nil, err
		}
		om.Extends = inputmodel.Ref(name)
	}
	return om, nil
}

func buildArray(n *mapping, at string) (inputmodel.Model, error) {
	item, err := buildNode(n.vals["items"], at+".items")
	if err != nil {
		return nil, err
	}
	am := &inputmodel.ArrayModel{Item: item}
	for key, dst := range map[string]**int{
		"minLength":   &am.MinLength,
		"maxLength":   &am.MaxLength,
		"exactLength": &am.ExactLength,
	} {
		raw, ok := n.get(key)
		if !ok {
			continue
		}
		i, ok := codec.Int(raw)
		if !ok {
			return nil, nodeErr(at, "%s must be an integer", key)
		}
		l := int(i)
		*dst = &l
	}
	return am, nil
}

func buildAnyOf(n *mapping, at string) (inputmodel.Model, error) {
	am := &inputmodel.AnyOfModel{}
	switch cands := n.vals["anyOf"].(type) {
	case []any:
		for i, c := range cands {
			child, err := buildNode(c, fmt.Sprintf("%s.anyOf.%d", at, i))
			if err != nil {
				return nil, err
			}
			am.Candidates = append(am.Candidates, inputmodel.Candidate{Model: child})
		}
	case *mapping:
		for _, name := range cands.keys {
			child, err := buildNode(cands.vals[name], at+".anyOf."+name)
			if err != nil {
				return nil, err
			}
			am.Candidates = append(am.Candidates, inputmodel.Candidate{Name: name, Model: child})
		}
	default:
		return nil, nodeErr(at, "anyOf must be a list or a mapping")
	}
	return am, nil
}

func buildValue(n *mapping, at string) (inputmodel.Model, error) {
	val := &inputmodel.ValueModel{}
	switch t := n.vals["type"].(type) {
	case nil:
		// types come from the extended model
	case string:
		val.Types = []string{t}
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, nodeErr(at, "type must list strings")
			}
			val.Types = append(val.Types, s)
		}
	default:
		return nil, nodeErr(at, "type must be a string or a list of strings")
	}
	var err error
	if val.StrictType, err = boolField(n, "strict", at); err != nil {
		return nil, err
	}
	if val.NoCoerce, err = boolField(n, "noCoerce", at); err != nil {
		return nil, err
	}
	if raw, ok := n.get("rules"); ok {
		rules, ok := raw.(*mapping)
		if !ok {
			return nil, nodeErr(at, "rules must be a mapping")
		}
		val.Rules = make(map[string]any, len(rules.keys))
		for _, k := range rules.keys {
			val.Rules[k] = plain(rules.vals[k])
		}
	}
	if has(n, "extends") {
		name, err := stringField(n, "extends", at)
		if err != nil {
			return nil, err
		}
		val.Extends = inputmodel.Ref(name)
	}
	if raw, ok := n.get("assert"); ok {
		var srcs []string
		switch t := raw.(type) {
		case string:
			srcs = []string{t}
		case []any:
			for _, e := range t {
				s, ok := e.(string)
				if !ok {
					return nil, nodeErr(at, "assert must list strings")
				}
				srcs = append(srcs, s)
			}
		default:
			return nil, nodeErr(at, "assert must be a string or a list of strings")
		}
		for _, src := range srcs {
			fn, err := compileAssert(src)
			if err != nil {
				return nil, nodeErr(at, "assert %q: %v", src, err)
			}
			val.Validate = append(val.Validate, fn)
		}
	}
	return val, nil
}

// assertEnv is the expression environment; value is typed any so operators
// are checked at run time against the processed value.
type assertEnv struct {
	Value any `expr:"value"`
}

// compileAssert compiles a boolean expression over `value`. A false result,
// or an evaluation error on the given input, reports CodeAssert.
func compileAssert(src string) (inputmodel.ValidateFunc, error) {
	prog, err := expr.Compile(src, expr.Env(assertEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, v any, r inputmodel.Reporter) error {
		ok, err := runAssert(prog, v)
		if err != nil {
			r.Report(CodeAssert, map[string]any{"expr": src, "error": err.Error()})
			return nil
		}
		if !ok {
			r.Report(CodeAssert, map[string]any{"expr": src})
		}
		return nil
	}, nil
}

func runAssert(prog *vm.Program, v any) (bool, error) {
	out, err := expr.Run(prog, assertEnv{Value: v})
	if err != nil {
		return false, err
	}
	b, _ := out.(bool)
	return b, nil
}

func has(n *mapping, key string) bool {
	_, ok := n.vals[key]
	return ok
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

func boolField(n *mapping, key, at string) (bool, error) {
	raw, ok := n.get(key)
	if !ok {
		return false, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, nodeErr(at, "%s must be a boolean", key)
	}
	return b, nil
}

func stringField(n *mapping, key, at string) (string, error) {
	s, ok := n.vals[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", nodeErr(at, "%s must be a non-empty string", key)
	}
	return s, nil
}

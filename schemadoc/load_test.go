package schemadoc_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	inputmodel "github.com/reoring/inputmodel"
	"github.com/reoring/inputmodel/schemadoc"
)

const usersYAML = `
models:
  address:
    properties:
      city: {type: string, rules: {min_length: 1}}
      zip: {type: string, optional: true, rules: {regex: "^[0-9]{3}-[0-9]{4}$"}}
  user:
    properties:
      name: {type: string}
      age: {type: int, default: 18, assert: "value < 150"}
      home: {ref: address}
      tags:
        items: {type: string}
        maxLength: 3
        optional: true
      contact:
        anyOf:
          mail: {type: email}
          phone: {type: mobile_number}
  admin:
    extends: user
    properties:
      level: {type: int, strict: true}
`

func compileNamed(t *testing.T, reg *inputmodel.Registry, name string) *inputmodel.Compiled {
	t.Helper()
	c, err := inputmodel.NewCompiler(inputmodel.WithRegistry(reg)).Compile(inputmodel.Ref(name))
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return c
}

func TestLoadYAML_Process(t *testing.T) {
	reg := inputmodel.NewRegistry()
	models, err := schemadoc.LoadYAML([]byte(usersYAML), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"address", "admin", "user"}, reg.Names()); diff != "" {
		t.Fatalf("registered names mismatch (-want +got):\n%s", diff)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}

	user := compileNamed(t, reg, "user")
	if diff := cmp.Diff([]string{"name", "age", "home", "tags", "contact"}, user.Properties()); diff != "" {
		t.Fatalf("property order mismatch (-want +got):\n%s", diff)
	}
	ctx := context.Background()
	out, err := user.Process(ctx, map[string]any{
		"name":    "x",
		"home":    map[string]any{"city": "Tokyo"},
		"contact": "a@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := out.(map[string]any)["age"]; got != int64(18) {
		t.Fatalf("expected default age, got %#v", got)
	}

	_, err = user.Process(ctx, map[string]any{
		"name":    "x",
		"age":     "200",
		"home":    map[string]any{"city": ""},
		"contact": "nope",
	})
	iss, ok := inputmodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	want := []string{"assert", "min_length", "invalid_type", "invalid_type", "no_match"}
	if diff := cmp.Diff(want, iss.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML_Extends(t *testing.T) {
	reg := inputmodel.NewRegistry()
	if _, err := schemadoc.LoadYAML([]byte(usersYAML), reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	admin := compileNamed(t, reg, "admin")
	_, err := admin.Process(context.Background(), map[string]any{
		"name":    "x",
		"home":    map[string]any{"city": "Osaka"},
		"contact": "+81 90-1234-5678",
		"level":   "3",
	})
	iss, ok := inputmodel.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "level" {
		t.Fatalf("expected strict level failure only, got %v", err)
	}
}

func TestLoadJSON_MatchesYAML(t *testing.T) {
	doc := `{"models": {"point": {"properties": {
		"x": {"type": "number"},
		"y": {"type": "number", "nullable": true}
	}}}}`
	reg := inputmodel.NewRegistry()
	if _, err := schemadoc.LoadJSON([]byte(doc), reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	p := compileNamed(t, reg, "point")
	out, err := p.Process(context.Background(), map[string]any{"x": "1.5", "y": nil})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"x": 1.5, "y": nil}, out); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unclassifiable": "models:\n  a: {rules: {min_length: 1}}\n",
		"unexpected key": "models:\n  a: {type: string, items: {type: string}, bogus: 1}\n",
		"bad assert":     "models:\n  a: {type: int, assert: \"value <\"}\n",
		"no models":      "other: 1\n",
		"bad type":       "models:\n  a: {type: 3}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := schemadoc.LoadYAML([]byte(doc), inputmodel.NewRegistry()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadYAML_DuplicateKey(t *testing.T) {
	doc := "models:\n  a: {type: string}\n  a: {type: int}\n"
	_, err := schemadoc.LoadYAML([]byte(doc), inputmodel.NewRegistry())
	var dup *schemadoc.DuplicateKeyError
	if !errors.As(err, &dup) || dup.Key != "a" {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
	if !strings.Contains(err.Error(), "duplicate YAML key") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoadYAML_AssertOperators(t *testing.T) {
	doc := `
models:
  n:
    type: int
    assert: ["value < 150", "value % 2 == 0"]
`
	reg := inputmodel.NewRegistry()
	if _, err := schemadoc.LoadYAML([]byte(doc), reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	n := compileNamed(t, reg, "n")
	ctx := context.Background()
	if _, err := n.Process(ctx, 42); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	_, err := n.Process(ctx, "151")
	iss, ok := inputmodel.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if diff := cmp.Diff([]string{"assert", "assert"}, iss.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML_ValueExtendsWithoutType(t *testing.T) {
	doc := `
models:
  code:
    type: string
    rules: {min_length: 2}
  shortCode:
    extends: code
    rules: {max_length: 3}
`
	reg := inputmodel.NewRegistry()
	if _, err := schemadoc.LoadYAML([]byte(doc), reg); err != nil {
		t.Fatalf("load: %v", err)
	}
	sc := compileNamed(t, reg, "shortCode")
	ctx := context.Background()
	if _, err := sc.Process(ctx, "abc"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for in, code := range map[any]string{"a": "min_length", "abcd": "max_length", 12: "invalid_type"} {
		_, err := sc.Process(ctx, in)
		iss, ok := inputmodel.AsIssues(err)
		if !ok || len(iss) != 1 || iss[0].Code != code {
			t.Fatalf("input %v: expected %s, got %v", in, code, err)
		}
	}
}

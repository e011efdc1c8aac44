package dsl_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	inputmodel "github.com/reoring/inputmodel"
	g "github.com/reoring/inputmodel/dsl"
)

type account struct {
	ID      string    `json:"id"`
	Age     int64     `json:"age"`
	Since   time.Time `json:"since"`
	Tags    []string  `json:"tags"`
	Comment *string   `json:"comment"`
}

func TestBindTo_Struct(t *testing.T) {
	m := g.Object().
		Field("id", g.String()).
		Field("age", g.Int()).
		Field("since", g.Date()).
		Optional("tags", g.Array(g.String()), []any{"new"}).
		Field("comment", g.Nullable(g.String())).
		Convert(g.BindTo[account]()).
		MustBuild()
	c := inputmodel.NewCompiler().MustCompile(m)

	out, err := c.Process(context.Background(), map[string]any{
		"id":      "u_1",
		"age":     "42",
		"since":   "2024-01-02T03:04:05Z",
		"comment": nil,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := account{
		ID:    "u_1",
		Age:   42,
		Since: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Tags:  []string{"new"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("bound value mismatch (-want +got):\n%s", diff)
	}
}

func TestBindTo_DecodeError(t *testing.T) {
	conv := g.BindTo[account]()
	if _, err := conv(context.Background(), map[string]any{"age": "x"}); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestObjectBuilder_Errors(t *testing.T) {
	if _, err := g.Object().Field("a", g.String()).Field("a", g.Int()).Build(); err == nil {
		t.Fatalf("expected duplicate field error")
	}
	if _, err := g.Object().Field("", g.String()).Build(); err == nil {
		t.Fatalf("expected empty name error")
	}
}

func TestBuilders_ProduceStableModels(t *testing.T) {
	b := g.String().MinLength(1)
	if b.Model() != b.Model() {
		t.Fatalf("builder must return the same model")
	}
	vm, ok := b.Model().(*inputmodel.ValueModel)
	if !ok {
		t.Fatalf("unexpected model %T", b.Model())
	}
	if diff := cmp.Diff([]string{"string"}, vm.Types); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
	if vm.Rules["min_length"] != 1 {
		t.Fatalf("rule not recorded: %v", vm.Rules)
	}

	arr, ok := g.Array(g.Int()).Min(1).Max(3).Model().(*inputmodel.ArrayModel)
	if !ok || *arr.MinLength != 1 || *arr.MaxLength != 3 || arr.ExactLength != nil {
		t.Fatalf("unexpected array model %+v", arr)
	}

	meta, ok := g.Optional(g.Int(), 5).Model().(*inputmodel.MetaModel)
	if !ok || !meta.Optional || !meta.HasDefault || meta.Default != 5 {
		t.Fatalf("unexpected meta model %+v", meta)
	}
	nm, _ := g.OptionalNoDefault(g.Int()).Model().(*inputmodel.MetaModel)
	if nm.HasDefault {
		t.Fatalf("no default expected")
	}
}

func TestRules_ThroughBuilder(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		b    *g.ValueBuilder
		ok   any
		bad  any
		code string
	}{
		{"regex", g.String().Regex(`^[a-z]+$`), "abc", "ab1", "regex"},
		{"in", g.String().In("a", "b"), "a", "c", "in"},
		{"private_in", g.String().PrivateIn("a"), "a", "b", "private_in"},
		{"exact_length", g.String().ExactLength(2), "ab", "abc", "exact_length"},
		{"starts_with", g.String().StartsWith("x-"), "x-1", "y-1", "starts_with"},
		{"ends_with", g.String().EndsWith(".go"), "a.go", "a.rs", "ends_with"},
		{"upper_case", g.String().UpperCase(), "ABC", "AbC", "upper_case"},
		{"numeric", g.String().Numeric(), "123", "12a", "numeric"},
		{"max_value", g.Number().MaxValue(10), 10.0, 10.5, "max_value"},
		{"contains", g.String().Contains("@"), "a@b", "ab", "contains"},
		{"mime_type", g.String().MimeTypes("image/png"), "image/png", "text/plain", "mime_type"},
		{"after", g.Date().After("2000-01-01T00:00:00Z"), "2001-01-01T00:00:00Z", "1999-01-01T00:00:00Z", "after"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := inputmodel.NewCompiler().MustCompile(tc.b.Model())
			if _, err := c.Process(ctx, tc.ok); err != nil {
				t.Fatalf("expected ok for %v: %v", tc.ok, err)
			}
			_, err := c.Process(ctx, tc.bad)
			iss, ok := inputmodel.AsIssues(err)
			if !ok || len(iss) != 1 || iss[0].Code != tc.code {
				t.Fatalf("expected %s for %v, got %v", tc.code, tc.bad, err)
			}
		})
	}
}

package inputmodel_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/multierr"

	inputmodel "github.com/reoring/inputmodel"
	g "github.com/reoring/inputmodel/dsl"
)

func TestTasks_ChildrenConvertBeforeParentConstruct(t *testing.T) {
	times10 := func(ctx context.Context, v any) (any, error) { return v.(int64) * 10, nil }
	m := g.Object().
		Field("n", g.Int().Convert(times10)).
		Field("items", g.Array(g.Int().Convert(times10))).
		Construct(func(ctx context.Context, obj map[string]any) error {
			var sum int64
			for _, it := range obj["items"].([]any) {
				sum += it.(int64)
			}
			obj["total"] = obj["n"].(int64) + sum
			return nil
		}).
		MustBuild()
	c := inputmodel.NewCompiler().MustCompile(m)
	out, err := c.Process(context.Background(), map[string]any{"n": "5", "items": []any{"1", "2"}})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := out.(map[string]any)["total"]; got != int64(80) {
		t.Fatalf("expected 80, got %#v", got)
	}
}

func TestTasks_ObjectCallbackOrderWithInheritance(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	step := func(name string) inputmodel.ConstructFunc {
		return func(ctx context.Context, obj map[string]any) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}
	conv := func(name string) inputmodel.ConvertFunc {
		return func(ctx context.Context, v any) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return v, nil
		}
	}
	parent := g.Object().
		Field("a", g.String()).
		Behavior("greet", step("behavior")).
		BaseConstruct(step("baseParent")).
		Construct(step("constructParent")).
		Convert(conv("convertParent"))
	child := g.Object().
		Field("b", g.String()).
		Extends(parent).
		BaseConstruct(step("baseChild")).
		Construct(step("constructChild")).
		Convert(conv("convertChild")).
		MustBuild()

	c := inputmodel.NewCompiler().MustCompile(child)
	if _, err := c.Process(context.Background(), map[string]any{"a": "x", "b": "y"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"behavior", "baseChild", "constructParent", "constructChild", "convertParent", "convertChild"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestTasks_SkippedWhenAnyIssue(t *testing.T) {
	var ran atomic.Bool
	mark := func(ctx context.Context, v any) (any, error) {
		ran.Store(true)
		return v, nil
	}
	m := g.Object().
		Field("a", g.String().Convert(mark)).
		Field("b", g.Int()).
		Construct(func(ctx context.Context, obj map[string]any) error {
			ran.Store(true)
			return nil
		}).
		MustBuild()
	c := inputmodel.NewCompiler().MustCompile(m)
	_, err := c.Process(context.Background(), map[string]any{"a": "x", "b": "nope"})
	if _, ok := inputmodel.AsIssues(err); !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	if ran.Load() {
		t.Fatalf("deferred task ran despite issues")
	}
}

func TestTasks_CallbackErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	fail := func(ctx context.Context, v any) (any, error) { return nil, boom }

	one := inputmodel.NewCompiler().MustCompile(g.Object().
		Field("a", g.String().Convert(fail)).
		Field("b", g.String()).
		MustBuild())
	_, err := one.Process(ctx, map[string]any{"a": "x", "b": "y"})
	var ce *inputmodel.CallbackError
	if !errors.As(err, &ce) || ce.Stage != inputmodel.StageConvert || ce.Path != "a" {
		t.Fatalf("expected convert CallbackError at a, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause lost: %v", err)
	}
	if _, ok := inputmodel.AsIssues(err); ok {
		t.Fatalf("callback failure must not be reported as Issues")
	}

	two := inputmodel.NewCompiler().MustCompile(g.Object().
		Field("a", g.String().Convert(fail)).
		Field("b", g.String().Convert(fail)).
		MustBuild())
	_, err = two.Process(ctx, map[string]any{"a": "x", "b": "y"})
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected both failures, got %d: %v", n, err)
	}

	bad := func(ctx context.Context, v any, r inputmodel.Reporter) error { return boom }
	val := inputmodel.NewCompiler().MustCompile(g.String().Validate(bad).Model())
	_, err = val.Process(ctx, "x")
	if !errors.As(err, &ce) || ce.Stage != inputmodel.StageValidate {
		t.Fatalf("expected validate CallbackError, got %v", err)
	}
}

func TestTasks_DeeperFailureStopsParent(t *testing.T) {
	var parentRan atomic.Bool
	m := g.Object().
		Field("a", g.String().Convert(func(ctx context.Context, v any) (any, error) {
			return nil, errors.New("nope")
		})).
		Behavior("mark", func(ctx context.Context, obj map[string]any) error {
			parentRan.Store(true)
			return nil
		}).
		MustBuild()
	c := inputmodel.NewCompiler().MustCompile(m)
	if _, err := c.Process(context.Background(), map[string]any{"a": "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if parentRan.Load() {
		t.Fatalf("parent task ran after child failure")
	}
}

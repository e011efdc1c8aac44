package inputmodel_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	inputmodel "github.com/reoring/inputmodel"
	g "github.com/reoring/inputmodel/dsl"
)

// --- Fixtures ---

func benchUserModel() inputmodel.Model {
	return g.Object().
		Field("name", g.String().MinLength(1)).
		Field("active", g.Bool()).
		Optional("age", g.Int().MinValue(0), 0).
		Optional("tags", g.Array(g.String()), []any{}).
		MustBuild()
}

func smallUserJSON() []byte { return []byte(`{"name":"Alice","active":true,"age":"30"}`) }

func largeArrayJSON(n int) []byte {
	b := &strings.Builder{}
	b.WriteString(`{"items":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, `{"id":%d,"name":"item-%d"}`, i, i)
	}
	b.WriteString(`]}`)
	return []byte(b.String())
}

// --- Compiled once ---

func Benchmark_Process_User_Small(b *testing.B) {
	ctx := context.Background()
	c := inputmodel.NewCompiler().MustCompile(benchUserModel())
	data := smallUserJSON()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.ProcessJSON(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_Process_LargeArray(b *testing.B) {
	ctx := context.Background()
	m := g.Object().
		Field("items", g.Array(g.Object().
			Field("id", g.Int()).
			Field("name", g.String().MaxLength(32)))).
		MustBuild()
	c := inputmodel.NewCompiler().MustCompile(m)
	data := largeArrayJSON(1000)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.ProcessJSON(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Compiled per call ---

func Benchmark_CompileAndProcess_User_Small(b *testing.B) {
	ctx := context.Background()
	data := smallUserJSON()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := inputmodel.NewCompiler().MustCompile(benchUserModel())
		if _, err := c.ProcessJSON(ctx, data); err != nil {
			b.Fatal(err)
		}
	}
}

package dsl

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	inputmodel "github.com/reoring/inputmodel"
)

// BindTo returns a convert function that decodes the processed value into T
// using T's json tags. Use it as the last Convert of an object.
func BindTo[T any]() inputmodel.ConvertFunc {
	return func(ctx context.Context, v any) (any, error) {
		var out T
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("dsl: bind %T: %w", out, err)
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("dsl: bind %T: %w", out, err)
		}
		return out, nil
	}
}

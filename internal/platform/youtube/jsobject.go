package youtube

import (
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"
)

const scriptTimeout = 2 * time.Second

// evalObjectLiteral evaluates src as a JavaScript expression and exports the
// resulting object as a JSON-shaped tree: maps, slices, strings, bools and
// float64 numbers.
func evalObjectLiteral(src string) (map[string]any, error) {
	rt := goja.New()
	timer := time.AfterFunc(scriptTimeout, func() {
		rt.Interrupt("object literal evaluation timed out")
	})
	defer timer.Stop()

	v, err := rt.RunString("(" + src + ")")
	if err != nil {
		return nil, err
	}
	obj, ok := normalizeExported(v.Export()).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("not an object literal")
	}
	return obj, nil
}

func normalizeExported(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeExported(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeExported(e)
		}
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		return x
	default:
		return x
	}
}

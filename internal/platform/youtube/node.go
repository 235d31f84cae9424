package youtube

import (
	"fmt"
	"strings"
)

// dig walks a decoded JSON tree. Path elements are map keys (string) or
// slice indexes (int, negative counts from the end). Missing steps yield nil.
func dig(v any, path ...any) any {
	cur := v
	for _, p := range path {
		switch step := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[step]
		case int:
			s, ok := cur.([]any)
			if !ok {
				return nil
			}
			if step < 0 {
				step += len(s)
			}
			if step < 0 || step >= len(s) {
				return nil
			}
			cur = s[step]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

func digString(v any, path ...any) string {
	switch s := dig(v, path...).(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	}
}

func digMap(v any, path ...any) map[string]any {
	m, _ := dig(v, path...).(map[string]any)
	return m
}

func digSlice(v any, path ...any) []any {
	s, _ := dig(v, path...).([]any)
	return s
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	default:
		return false
	}
}

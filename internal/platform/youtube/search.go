package youtube

import (
	"iter"
	"sort"
)

// SearchKey yields every value stored under key anywhere below root.
//
// root is a decoded JSON tree: map[string]any, []any or a scalar. The walk
// uses an explicit stack, so depth is bounded only by memory. A matched value
// is yielded and not searched further. Map keys are visited in sorted order,
// which keeps the output deterministic; callers must not rely on any order
// beyond each match being yielded exactly once.
func SearchKey(root any, key string) iter.Seq[any] {
	return func(yield func(any) bool) {
		stack := []any{root}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch node := cur.(type) {
			case map[string]any:
				for _, k := range sortedKeys(node) {
					v := node[k]
					if k == key {
						if !yield(v) {
							return
						}
						continue
					}
					stack = append(stack, v)
				}
			case []any:
				stack = append(stack, node...)
			case []map[string]any:
				for _, m := range node {
					stack = append(stack, m)
				}
			}
		}
	}
}

// FirstKey returns the first value SearchKey would yield.
func FirstKey(root any, key string) (any, bool) {
	for v := range SearchKey(root, key) {
		return v, true
	}
	return nil, false
}

// CollectKey returns all matches of key in SearchKey order.
func CollectKey(root any, key string) []any {
	var out []any
	for v := range SearchKey(root, key) {
		out = append(out, v)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package tree

import "strconv"

// Flatten projects a record into a single-level mapping.
//
// Nested record keys are joined with ".", list elements get a 1-based index
// segment, absent scalars are dropped and Opaque nodes are stored as a
// map[string]string value under their own path.
func Flatten(r *Record) map[string]any {
	if r == nil {
		return map[string]any{}
	}
	out := make(map[string]any, r.Len())
	flattenRecord("", r, out)
	return out
}

func flattenRecord(prefix string, r *Record, out map[string]any) {
	for _, key := range r.Keys() {
		n, _ := r.Get(key)
		flattenNode(join(prefix, key), n, out)
	}
}

func flattenNode(path string, n Node, out map[string]any) {
	switch v := n.(type) {
	case Scalar:
		if v.Value != nil {
			out[path] = v.Value
		}
	case Opaque:
		params := make(map[string]string, len(v))
		for k, val := range v {
			params[k] = val
		}
		out[path] = params
	case List:
		for i, item := range v {
			flattenNode(path+"."+strconv.Itoa(i+1), item, out)
		}
	case *Record:
		if v != nil {
			flattenRecord(path, v, out)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

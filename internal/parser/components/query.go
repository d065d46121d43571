package components

import (
	"strings"

	"weblynx/internal/locale"
	"weblynx/internal/parser/tree"
)

// Query is the part of a URL holding "?key=value" pairs, together with the
// literal path parts around the "?" separators.
type Query struct {
	Path   []*PathSegments
	Params map[string]string
}

// NewQuery splits text on "?". Parts containing "=" are parameter lists,
// separated by "&" (or ";" when no "&" is present); the other parts are paths.
func NewQuery(text string, lookup locale.Lookup) *Query {
	q := &Query{Path: []*PathSegments{}}

	for _, part := range strings.Split(text, "?") {
		switch {
		case strings.Contains(part, "="):
			q.addParams(part)
		case part != "":
			q.Path = append(q.Path, NewPathSegments(part, lookup))
		}
	}

	return q
}

func (q *Query) addParams(part string) {
	pairs := strings.Split(part, "&")
	if len(pairs) < 2 {
		pairs = strings.Split(part, ";")
	}

	if q.Params == nil {
		q.Params = make(map[string]string, len(pairs))
	}
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		q.Params[key] = value
	}
}

func (q *Query) Type() string { return TypeQuery }

func (q *Query) Record() *tree.Record {
	paths := make(tree.List, 0, len(q.Path))
	for _, p := range q.Path {
		paths = append(paths, p.Record())
	}

	var params tree.Node = tree.Absent()
	if q.Params != nil {
		params = tree.Opaque(q.Params)
	}

	return tree.NewRecord().
		Set("path", paths).
		Set("query", params)
}

package components

import (
	"strings"

	"weblynx/internal/locale"
	"weblynx/internal/parser/tree"
)

// PathSegments are the non-empty labels of a URL path. A leading segment that
// is a known language code is moved to Language.
type PathSegments struct {
	Segments []string
	Language *string
}

// NewPathSegments splits path on "/". Segments starting with ":" are route
// placeholders and are dropped. lookup may be nil to disable locale detection.
func NewPathSegments(path string, lookup locale.Lookup) *PathSegments {
	p := &PathSegments{Segments: []string{}}

	for _, segment := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if segment == "" || segment[0] == ':' {
			continue
		}
		p.Segments = append(p.Segments, segment)
	}

	if lookup != nil && len(p.Segments) > 0 && lookup.IsKnownLanguageCode(p.Segments[0]) {
		lang := p.Segments[0]
		p.Language = &lang
		p.Segments = p.Segments[1:]
	}

	return p
}

// Last returns the last segment, or "" when there is none.
func (p *PathSegments) Last() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

func (p *PathSegments) Type() string { return TypeSubdirectories }

func (p *PathSegments) Record() *tree.Record {
	return tree.NewRecord().
		Set("subdirectories", tree.Texts(p.Segments)).
		Set("language", tree.OptionalText(p.Language))
}

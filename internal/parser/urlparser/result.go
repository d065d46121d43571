package urlparser

import (
	"weblynx/internal/parser/components"
	"weblynx/internal/parser/tree"
)

// Result is a decomposed URL. Absent parts are nil.
type Result struct {
	Raw                 string
	Protocol            *string
	Port                *int
	Domain              *components.Domain
	Subdirectories      *components.PathSegments
	Query               *components.Query
	FragmentIdentifiers []string
	TargetType          string
}

// IsEmpty reports whether nothing was extracted from the input.
func (r *Result) IsEmpty() bool {
	return r.Protocol == nil && r.Domain == nil && r.Subdirectories == nil && r.Query == nil
}

// Components returns the nested representation of the result.
func (r *Result) Components() *tree.Record {
	rec := tree.NewRecord()

	for _, c := range r.parts() {
		rec.Set(c.Type(), c.Record())
	}

	return rec.
		Set("protocol", tree.OptionalText(r.Protocol)).
		Set("port", tree.OptionalInt(r.Port)).
		Set("fragment_identifiers", tree.Texts(r.FragmentIdentifiers)).
		Set("target_type", tree.Text(r.TargetType))
}

// FlatComponents returns the flattened projection of Components.
func (r *Result) FlatComponents() map[string]any {
	return tree.Flatten(r.Components())
}

func (r *Result) parts() []components.Component {
	var parts []components.Component
	if r.Domain != nil {
		parts = append(parts, r.Domain)
	}
	if r.Subdirectories != nil {
		parts = append(parts, r.Subdirectories)
	}
	if r.Query != nil {
		parts = append(parts, r.Query)
	}
	return parts
}

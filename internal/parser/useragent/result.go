package useragent

import (
	"weblynx/internal/parser/components"
	"weblynx/internal/parser/tree"
)

// Result is a classified User-Agent. Components that could not be extracted are nil.
type Result struct {
	Raw          string
	Family       Family
	IsBot        bool
	Product      *components.Product
	Browser      *components.Browser
	OS           *components.OS
	Device       *components.Device
	Bot          *components.Bot
	LayoutEngine *components.Product
}

// Components returns the nested representation: one record per extracted
// component keyed by its type, then layout_browser_engine and is_bot.
func (r *Result) Components() *tree.Record {
	rec := tree.NewRecord()

	for _, c := range r.parts() {
		rec.Set(c.Type(), c.Record())
	}
	if r.LayoutEngine != nil {
		rec.Set("layout_browser_engine", r.LayoutEngine.Record())
	}

	return rec.Set("is_bot", tree.Bool(r.IsBot))
}

// FlatComponents returns the flattened projection of Components.
func (r *Result) FlatComponents() map[string]any {
	return tree.Flatten(r.Components())
}

func (r *Result) parts() []components.Component {
	var parts []components.Component
	if r.Product != nil {
		parts = append(parts, r.Product)
	}
	if r.Browser != nil {
		parts = append(parts, r.Browser)
	}
	if r.OS != nil {
		parts = append(parts, r.OS)
	}
	if r.Device != nil {
		parts = append(parts, r.Device)
	}
	if r.Bot != nil {
		parts = append(parts, r.Bot)
	}
	return parts
}

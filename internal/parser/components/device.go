package components

import (
	"strings"

	"weblynx/internal/parser/tree"
)

// deviceTokens are platform-clause terms that name hardware or a windowing
// system rather than an operating system.
var deviceTokens = map[string]struct{}{
	"WOW64":      {},
	"iPhone":     {},
	"iPad":       {},
	"iPod":       {},
	"iPod touch": {},
	"Macintosh":  {},
	"Linux":      {},
	"X11":        {},
	"Win64":      {},
	"Maemo":      {},
	"Mobile":     {},
	"Tablet":     {},
}

// IsDevice reports whether term is a recognized device marker.
func IsDevice(term string) bool {
	_, ok := deviceTokens[term]
	return ok
}

// Device is a device family plus an optional build identifier.
type Device struct {
	Name  string
	Build *string
}

// NewDevice builds a device. buildToken is the "Mobile/xxx" token following
// the platform clause, or "" when there is none.
func NewDevice(name, buildToken string) *Device {
	d := &Device{Name: name}
	if _, build, found := strings.Cut(buildToken, "/"); found {
		d.Build = optional(build)
	}
	return d
}

func (d *Device) Type() string { return TypeDevice }

func (d *Device) Record() *tree.Record {
	return tree.NewRecord().
		Set("device_name", tree.Text(d.Name)).
		Set("device_build", tree.OptionalText(d.Build))
}

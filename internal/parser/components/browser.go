package components

import (
	"strings"

	"weblynx/internal/parser/tree"
)

// Browser is the browser identity of a User-Agent.
type Browser struct {
	Name                *string
	Version             *string
	Compatibility       []*Product
	GeckoReleaseVersion *string
}

// NewBrowser derives name and version from token ("Chrome/55.0"). An empty
// token gives a browser without identity that only carries compatibility products.
func NewBrowser(token string, compatibility []*Product) *Browser {
	name, version := splitIdentity(token)
	if compatibility == nil {
		compatibility = []*Product{}
	}
	return &Browser{
		Name:          name,
		Version:       version,
		Compatibility: compatibility,
	}
}

// WithVersionToken replaces the version with the suffix of a dedicated
// version token such as Safari's "Version/7.0".
func (b *Browser) WithVersionToken(token string) *Browser {
	if _, version, found := strings.Cut(token, "/"); found {
		b.Version = optional(version)
	} else {
		b.Version = nil
	}
	return b
}

func (b *Browser) Type() string { return TypeBrowser }

func (b *Browser) Record() *tree.Record {
	return tree.NewRecord().
		Set("browser_name", tree.OptionalText(b.Name)).
		Set("browser_version", tree.OptionalText(b.Version)).
		Set("compatibility", productRecords(b.Compatibility)).
		Set("gecko_release_version", tree.OptionalText(b.GeckoReleaseVersion))
}

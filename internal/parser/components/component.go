// Package components holds the value objects produced by the User-Agent and URL
// decomposers. Each one is built once from raw substrings and renders itself as
// a tree.Record.
package components

import (
	"regexp"
	"strings"

	"weblynx/internal/parser/tree"
)

// Component type tags, used as keys of the nested output.
const (
	TypeProduct        = "product"
	TypeBrowser        = "browser"
	TypeOS             = "os"
	TypeDevice         = "device"
	TypeBot            = "bot"
	TypeDomain         = "domain"
	TypeSubdirectories = "subdirectories"
	TypeQuery          = "query"
)

// Component is one parsed piece of a User-Agent or URL.
type Component interface {
	Type() string
	Record() *tree.Record
}

// LinkParser decomposes a bot's target link. It returns nil when nothing
// could be extracted.
type LinkParser func(link string) *tree.Record

var (
	// "name/version" shaped token
	productTokenPattern = regexp.MustCompile(`^.+/.+`)

	// architecture marker such as x64 or x86_64
	archMarkerPattern = regexp.MustCompile(`x\d+(_\d+)?`)

	// descriptor that is nothing but a link
	bareLinkPattern = regexp.MustCompile(`^\+?https?://.+/.*`)
)

// IsProductToken reports whether token looks like "name/version".
func IsProductToken(token string) bool {
	return productTokenPattern.MatchString(token)
}

// splitIdentity splits token on its first "/". An empty name or version is absent.
func splitIdentity(token string) (name, version *string) {
	n, v, found := strings.Cut(token, "/")
	if n != "" {
		name = &n
	}
	if found && v != "" {
		version = &v
	}
	return name, version
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func productRecords(products []*Product) tree.List {
	list := make(tree.List, 0, len(products))
	for _, p := range products {
		list = append(list, p.Record())
	}
	return list
}

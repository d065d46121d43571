package components

import (
	"strings"

	"weblynx/internal/parser/tree"
)

// Product is a "name/version" token such as Mozilla/5.0 or AppleWebKit/537.36.
type Product struct {
	Name    string
	Version *string
}

// NewProduct splits token on its first "/".
func NewProduct(token string) *Product {
	name, version, found := strings.Cut(token, "/")
	p := &Product{Name: name}
	if found {
		p.Version = &version
	}
	return p
}

// NewProducts builds one product per token.
func NewProducts(tokens []string) []*Product {
	products := make([]*Product, 0, len(tokens))
	for _, token := range tokens {
		products = append(products, NewProduct(token))
	}
	return products
}

func (p *Product) Type() string { return TypeProduct }

func (p *Product) Record() *tree.Record {
	return tree.NewRecord().
		Set("product_name", tree.Text(p.Name)).
		Set("product_version", tree.OptionalText(p.Version))
}

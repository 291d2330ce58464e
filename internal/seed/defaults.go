package seed

import _ "embed"

//go:embed defaults.yaml
var defaultsYAML []byte

// DefaultCatalog returns the built-in demo catalog: a default truck profile,
// a lighter flypack profile, and a pair of example binders.
func DefaultCatalog() (Catalog, error) {
	return Parse(defaultsYAML)
}

// # internal/engine/classify/classifier.go
package classify

import (
	"envinfer/internal/engine/pyenv"
)

type Category string

const (
	CategoryStandardLibrary Category = "standard_lib"
	CategoryThirdParty      Category = "third_party"
	CategoryUnknown         Category = "unknown"
)

// Resolver locates an importable module without executing it.
type Resolver interface {
	Resolve(name string) (location string, ok bool)
}

// Registry maps installed distribution names to versions, matched
// case-insensitively.
type Registry interface {
	Version(name string) (string, bool)
}

// StandardSet answers exact membership in the canonical standard-library
// module names.
type StandardSet interface {
	Contains(name string) bool
}

// Classification is the outcome for one top-level module name.
type Classification struct {
	Name     string
	Category Category
	Entry    string // report entry; "name==version" for matched third-party
	Location string // resolved location, empty when no resolution happened
}

// Classifier decides the dependency partition of a module name. It is a
// best-effort heuristic over the local environment: resolution depends on
// where the analysis runs, which may differ from the project's intended
// target environment.
type Classifier struct {
	stdlib   StandardSet
	resolver Resolver
	registry Registry
}

func New(stdlib StandardSet, resolver Resolver, registry Registry) *Classifier {
	return &Classifier{stdlib: stdlib, resolver: resolver, registry: registry}
}

// Classify runs the decision sequence: stdlib-set match, resolution,
// location marker inspection, installed-registry lookup.
func (c *Classifier) Classify(name string) Classification {
	if c.stdlib.Contains(name) {
		return Classification{Name: name, Category: CategoryStandardLibrary, Entry: name}
	}

	location, ok := c.resolver.Resolve(name)
	if !ok {
		return Classification{Name: name, Category: CategoryUnknown, Entry: name}
	}

	if !pyenv.IsThirdPartyLocation(location) {
		return Classification{Name: name, Category: CategoryStandardLibrary, Entry: name, Location: location}
	}

	if version, found := c.registry.Version(name); found {
		return Classification{
			Name:     name,
			Category: CategoryThirdParty,
			Entry:    name + "==" + version,
			Location: location,
		}
	}

	// Installed under a third-party root but absent from the metadata
	// registry; report it without a version rather than dropping it.
	return Classification{Name: name, Category: CategoryThirdParty, Entry: name, Location: location}
}

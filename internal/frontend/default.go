package frontend

import (
	"github.com/corpling/cqptree/internal/frontend/conllu"
	"github.com/corpling/cqptree/internal/frontend/depsearch"
	"github.com/corpling/cqptree/internal/frontend/deptreepy"
	"github.com/corpling/cqptree/internal/frontend/grew"
	"github.com/corpling/cqptree/internal/ir"
)

// Default returns a registry holding every built-in front end.
func Default() *Registry {
	return DefaultWith(conllu.Spraakbanken)
}

// DefaultWith returns the built-in registry with the CoNLL-U front end
// emitting the given attribute mapping.
func DefaultWith(mapping conllu.Mapping) *Registry {
	r := NewRegistry()
	builtins := []struct {
		name string
		fn   TranslateFunc
	}{
		{"conllu", func(input string) (*ir.Plan, error) {
			return conllu.TranslateWith(mapping, input)
		}},
		{"depsearch", depsearch.Translate},
		{"deptreepy", deptreepy.Translate},
		{"grew", grew.Translate},
	}
	for _, b := range builtins {
		// Names are distinct constants, so registration cannot fail.
		if err := r.Register(b.name, b.fn); err != nil {
			panic(err)
		}
	}
	return r
}

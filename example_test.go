package canopy_test

import (
	"fmt"
	"log"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/config"
	"github.com/aretw0/canopy/pkg/domain"
)

// ExampleNew demonstrates building and running a tree from in-code
// definitions. This is useful for tests and embedded scenarios where
// config files would be overkill.
func ExampleNew() {
	registry := config.NewRegistry()
	defs := []*domain.Definition{
		{
			Name:     "greet",
			Impl:     "sequence",
			Children: []string{"set-name", "name-known"},
		},
		{
			Name:   "set-name",
			Impl:   "assign",
			Params: map[string]any{"assignments": map[string]any{"name": "world"}},
		},
		{
			Name:   "name-known",
			Impl:   "defined",
			Params: map[string]any{"variables": []any{"name"}},
		},
	}
	for _, def := range defs {
		if err := registry.Add(def, "example", config.AddOptions{}); err != nil {
			log.Fatal(err)
		}
	}

	tree, err := canopy.New(registry)
	if err != nil {
		log.Fatal(err)
	}
	if err := tree.Init("greet"); err != nil {
		log.Fatal(err)
	}

	state := domain.NewState()
	status, err := tree.Execute(state)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Hello, %s\n", state.Vars()["name"])
	// Output:
	// Status: SUCCESS
	// Hello, world
}

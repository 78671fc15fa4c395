/*
Package canopy is a behavior-tree execution engine driven by declarative
component configs, designed for building agent control logic, pollers,
and long-running automation workflows.

It separates the tree structure (named component definitions), the
execution state (variables plus per-position statuses), and the
behaviors themselves (leaf nodes), so one tree instance can serve any
number of persisted sessions.

# Concept

A behavior tree composes leaf nodes, which do the actual work, through
controller nodes, which only route execution. Every node execution
returns one of three statuses: SUCCESS, FAILED, or RUNNING ("not done
yet, come back later"). The host drives the tree one pass at a time;
between passes the state can be serialized, persisted, and resumed on
another replica.

# Key Features

  - Declarative configs: trees are YAML/JSON lists of named definitions
    with reusable, reference-flattened component chains.
  - Ternary outcomes: RUNNING is a first-class status, so slow external
    work maps onto repeated cheap passes instead of blocked threads.
  - Shared instances: a definition referenced from several tree
    positions runs as one node instance with independent per-position
    statuses.
  - Two scheduling models: direct synchronous passes, or cooperative
    passes whose leaves may block on a context.
  - Durable sessions: state stores (memory, Redis) plus a session
    manager enforcing one activation per state.

# Usage

Build a registry (from files or in code), create a Tree, initialize it
at a root component, and execute passes:

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/canopy"
		"github.com/aretw0/canopy/pkg/domain"
	)

	func main() {
		tree, err := canopy.Load("./configs")
		if err != nil {
			log.Fatal(err)
		}
		if err := tree.Init("root"); err != nil {
			log.Fatal(err)
		}

		state := domain.NewState()
		for {
			status, err := tree.Execute(state)
			if err != nil {
				log.Fatal(err)
			}
			if status.Terminal() {
				fmt.Println("final status:", status)
				break
			}
			// RUNNING: persist the state, sleep, poll, whatever fits.
		}
	}
*/
package canopy

package autowire

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"
)

// DependencyGraph manages dependencies between binding keys.
type DependencyGraph struct {
	nodes map[reflect.Type]*node
	order []reflect.Type // Preserve registration order
}

type node struct {
	key          reflect.Type
	lifetime     Lifetime
	dependencies []reflect.Type
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[reflect.Type]*node),
		order: make([]reflect.Type, 0),
	}
}

// AddNode adds a node with its dependencies.
// Adding a key again replaces the node, matching last-registration-wins
// resolution. Nodes are processed in first-added order when no dependencies
// exist.
func (g *DependencyGraph) AddNode(key reflect.Type, lifetime Lifetime, dependencies []reflect.Type) {
	if _, exists := g.nodes[key]; !exists {
		g.order = append(g.order, key)
	}
	g.nodes[key] = &node{
		key:          key,
		lifetime:     lifetime,
		dependencies: dependencies,
	}
}

// GetDependencies returns the dependencies of a node.
func (g *DependencyGraph) GetDependencies(key reflect.Type) []reflect.Type {
	if node, ok := g.nodes[key]; ok {
		return node.dependencies
	}

	return nil
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(key reflect.Type) bool {
	_, ok := g.nodes[key]

	return ok
}

// Missing returns, per node, the dependencies that have no node.
func (g *DependencyGraph) Missing() map[reflect.Type][]reflect.Type {
	missing := make(map[reflect.Type][]reflect.Type)

	for _, key := range g.order {
		for _, dep := range g.nodes[key].dependencies {
			if !g.HasNode(dep) {
				missing[key] = append(missing[key], dep)
			}
		}
	}

	return missing
}

// TopologicalSort returns nodes in dependency order.
// Nodes without dependencies maintain their registration order (FIFO).
// Returns error if circular dependency detected.
func (g *DependencyGraph) TopologicalSort() ([]reflect.Type, error) {
	visited := make(map[reflect.Type]bool)
	visiting := make(map[reflect.Type]bool)
	result := make([]reflect.Type, 0, len(g.nodes))

	for _, key := range g.order {
		if err := g.visit(key, visited, visiting, nil, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal.
func (g *DependencyGraph) visit(key reflect.Type, visited, visiting map[reflect.Type]bool, stack []reflect.Type, result *[]reflect.Type) error {
	if visited[key] {
		return nil
	}

	stack = append(stack, key)

	if visiting[key] {
		// Report the cycle starting at its first occurrence.
		for i, k := range stack {
			if k == key {
				return ErrCircularDependency(stack[i:])
			}
		}
	}

	node := g.nodes[key]
	if node == nil {
		// Missing dependencies are reported separately.
		return nil
	}

	visiting[key] = true

	for _, dep := range node.dependencies {
		if err := g.visit(dep, visited, visiting, stack, result); err != nil {
			return err
		}
	}

	visiting[key] = false
	visited[key] = true
	*result = append(*result, key)

	return nil
}

// CaptiveDependencies returns an error for every singleton that depends
// directly on a scoped service.
func (g *DependencyGraph) CaptiveDependencies() error {
	var err error

	for _, key := range g.order {
		n := g.nodes[key]
		if n.lifetime != Singleton {
			continue
		}
		for _, dep := range n.dependencies {
			if d, ok := g.nodes[dep]; ok && d.lifetime == Scoped {
				err = multierr.Append(err, ErrCaptiveDependency(key, dep))
			}
		}
	}

	return err
}

// validateRegistrations builds the dependency graph of regs and reports
// missing dependencies, captive dependencies and cycles.
func validateRegistrations(regs []Registration) error {
	g := NewDependencyGraph()
	for _, reg := range regs {
		g.AddNode(reg.Key, reg.Lifetime, reg.Dependencies())
	}

	var err error

	missing := g.Missing()
	for _, key := range g.order {
		for _, dep := range missing[key] {
			err = multierr.Append(err, NewServiceError(key, "validate",
				fmt.Errorf("no registration for dependency %s", keyName(dep))))
		}
	}

	err = multierr.Append(err, g.CaptiveDependencies())

	if _, sortErr := g.TopologicalSort(); sortErr != nil {
		err = multierr.Append(err, sortErr)
	}

	return err
}

// Package components defines ECS components for the simulation.
package components

// Position represents an agent's location in field cell units.
type Position struct {
	X, Y float32
}

// Heading is an agent's direction of travel in radians.
type Heading struct {
	Angle float32
}

// AgentID is the agent's stable index in the population.
// Bulk reads and writes use it to map ECS storage order back to index order.
type AgentID struct {
	Index uint32
}

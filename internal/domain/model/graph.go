package model

import "time"

// Node is a single topic in the knowledge graph.
type Node struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Edge connects two nodes.
type Edge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Label    string `json:"label,omitempty"`
}

// Graph is the whole collection of nodes and the edges connecting them.
// Marshals to {"nodes":[],"edges":[]} even when empty, which is also the
// documented default for an absent graph slot.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func NewGraph() *Graph {
	return &Graph{Nodes: []Node{}, Edges: []Edge{}}
}

func (g *Graph) AddNode(n Node) {
	g.Nodes = append(g.Nodes, n)
}

func (g *Graph) HasNode(id string) bool {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return true
		}
	}
	return false
}

func (g *Graph) FindByTitle(title string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Title == title {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Connect appends an edge. Callers are responsible for checking both
// endpoints exist.
func (g *Graph) Connect(sourceID, targetID, label string) {
	g.Edges = append(g.Edges, Edge{SourceID: sourceID, TargetID: targetID, Label: label})
}

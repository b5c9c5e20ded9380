package project

import "maps"

// SchemaNode is one configured stage of the training pipeline.
type SchemaNode struct {
	// Uses is the component implementing the node (e.g. "DIETClassifier").
	Uses string `json:"uses"`

	// Config is the node's parameter set.
	Config map[string]any `json:"config,omitempty"`
}

// Schema is the training pipeline keyed by stable node id.
type Schema struct {
	Nodes map[string]SchemaNode `json:"nodes"`
}

// NodeIDs returns the ids of every node in the schema.
func (s Schema) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	return ids
}

// Clone returns a copy of the schema whose node map and top-level config maps
// can be modified without affecting the original.
func (s Schema) Clone() Schema {
	c := Schema{Nodes: make(map[string]SchemaNode, len(s.Nodes))}
	for id, node := range s.Nodes {
		c.Nodes[id] = SchemaNode{
			Uses:   node.Uses,
			Config: maps.Clone(node.Config),
		}
	}
	return c
}

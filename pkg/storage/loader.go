package storage

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// GraphDoc is the on-disk fixture form: a flat document of nodes and
// relationships. Relationships reference their endpoints by node ID.
type GraphDoc struct {
	Nodes         []GraphNode `yaml:"nodes"`
	Relationships []GraphRel  `yaml:"relationships"`
}

// GraphNode is one node entry in a graph document.
type GraphNode struct {
	ID         string         `yaml:"id"`
	Labels     []string       `yaml:"labels,omitempty"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// GraphRel is one relationship entry in a graph document.
type GraphRel struct {
	ID         string         `yaml:"id"`
	Type       string         `yaml:"type"`
	Start      string         `yaml:"start"`
	End        string         `yaml:"end"`
	Properties map[string]any `yaml:"properties,omitempty"`
}

// LoadGraph reads a YAML graph document and bulk-loads it into the
// engine. Nodes load before relationships so endpoint checks see the
// whole document; either bulk step failing leaves the rest unapplied.
func LoadGraph(engine Engine, r io.Reader) error {
	var doc GraphDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parsing graph document: %w", err)
	}

	nodes := make([]*Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return fmt.Errorf("graph document: node with empty id")
		}
		nodes = append(nodes, &Node{
			ID:         NodeID(n.ID),
			Labels:     n.Labels,
			Properties: n.Properties,
		})
	}

	edges := make([]*Edge, 0, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		if rel.Type == "" {
			return fmt.Errorf("graph document: relationship %q with empty type", rel.ID)
		}
		if rel.Start == "" || rel.End == "" {
			return fmt.Errorf("graph document: relationship %q missing an endpoint", rel.ID)
		}
		edges = append(edges, &Edge{
			ID:         EdgeID(rel.ID),
			StartNode:  NodeID(rel.Start),
			EndNode:    NodeID(rel.End),
			Type:       rel.Type,
			Properties: rel.Properties,
		})
	}

	if err := engine.BulkCreateNodes(nodes); err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	if err := engine.BulkCreateEdges(edges); err != nil {
		return fmt.Errorf("loading relationships: %w", err)
	}
	return nil
}

// LoadGraphFile loads a YAML graph document from a file.
func LoadGraphFile(engine Engine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening graph file: %w", err)
	}
	defer f.Close()

	if err := LoadGraph(engine, f); err != nil {
		return fmt.Errorf("graph file %s: %w", path, err)
	}
	return nil
}

// SaveGraph writes the engine's contents as a YAML graph document,
// nodes and relationships each sorted by ID so output is stable.
func SaveGraph(engine *MemoryEngine, w io.Writer) error {
	nodes := engine.GetAllNodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := engine.GetAllEdges()
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	doc := GraphDoc{
		Nodes:         make([]GraphNode, 0, len(nodes)),
		Relationships: make([]GraphRel, 0, len(edges)),
	}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, GraphNode{
			ID:         string(n.ID),
			Labels:     n.Labels,
			Properties: n.Properties,
		})
	}
	for _, e := range edges {
		doc.Relationships = append(doc.Relationships, GraphRel{
			ID:         string(e.ID),
			Type:       e.Type,
			Start:      string(e.StartNode),
			End:        string(e.EndNode),
			Properties: e.Properties,
		})
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding graph document: %w", err)
	}
	return nil
}

// SaveGraphFile writes the engine's contents to a YAML file.
func SaveGraphFile(engine *MemoryEngine, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating graph file: %w", err)
	}
	defer f.Close()

	if err := SaveGraph(engine, f); err != nil {
		return err
	}
	return f.Sync()
}

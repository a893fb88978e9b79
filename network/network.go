// Package network builds the ego network of a single decision: the focal
// decision plus every decision it cites or is cited by, as a deduplicated
// node/edge graph ready for layout.
package network

// Level is the court level of a decision.
type Level string

const (
	LevelFederal  Level = "federal"
	LevelCantonal Level = "cantonal"
)

// EdgeKind is the direction of a citation relationship relative to the
// focal decision.
type EdgeKind string

const (
	// KindCites means the focal decision cites the related decision.
	KindCites EdgeKind = "cites"
	// KindCitedBy means the related decision cites the focal decision.
	KindCitedBy EdgeKind = "cited_by"
)

// Record is one citation relationship delivered by the citations data
// source: a related decision and the direction of the relationship.
type Record struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Level Level    `json:"level"`
	Date  string   `json:"date,omitempty"`
	Kind  EdgeKind `json:"kind"`
}

// Node is a single decision in the graph. Exactly one node per graph has
// Focal set.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Level Level  `json:"level"`
	Date  string `json:"date,omitempty"`
	Focal bool   `json:"is_focal"`
}

// Edge connects two nodes by ID. Both endpoints always reference nodes
// present in the same graph; self-loops are never produced.
type Edge struct {
	SourceID string   `json:"source_id"`
	TargetID string   `json:"target_id"`
	Kind     EdgeKind `json:"kind"`
}

// Graph is the assembled ego network.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build assembles the ego network for a focal decision from a flat list of
// citation records.
//
// Nodes are deduplicated by ID with the first occurrence winning, so a
// decision that both cites and is cited by the focal appears once but
// contributes one edge per record. Records carrying the focal ID itself
// are skipped entirely: the focal node is added exactly once up front and
// a self-edge would be meaningless.
func Build(focalID, focalLabel string, focalLevel Level, records []Record) *Graph {
	g := &Graph{
		Nodes: []Node{{
			ID:    focalID,
			Label: focalLabel,
			Level: focalLevel,
			Focal: true,
		}},
	}

	seen := map[string]bool{focalID: true}
	for _, r := range records {
		if r.ID == "" || r.ID == focalID {
			continue
		}
		if !seen[r.ID] {
			seen[r.ID] = true
			g.Nodes = append(g.Nodes, Node{
				ID:    r.ID,
				Label: r.Label,
				Level: r.Level,
				Date:  r.Date,
			})
		}
		switch r.Kind {
		case KindCitedBy:
			g.Edges = append(g.Edges, Edge{SourceID: r.ID, TargetID: focalID, Kind: KindCitedBy})
		default:
			g.Edges = append(g.Edges, Edge{SourceID: focalID, TargetID: r.ID, Kind: KindCites})
		}
	}
	return g
}

// Focal returns the focal node of the graph.
func (g *Graph) Focal() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].Focal {
			return &g.Nodes[i]
		}
	}
	return nil
}

package types

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Validation errors
var (
	ErrEmptyConcept = errors.New("concept cannot be empty")
	ErrNegativeDepth = errors.New("depth cannot be negative")
)

// LeafReason explains why a node was materialized as a leaf.
type LeafReason string

const (
	// LeafFoundation marks a concept the classifier judged foundational.
	LeafFoundation LeafReason = "foundation"
	// LeafDepthTruncated marks a node that hit the configured maximum depth.
	LeafDepthTruncated LeafReason = "depth_truncated"
	// LeafCycleBroken marks a node whose concept already appeared on the
	// current root-to-node path and was therefore not expanded.
	LeafCycleBroken LeafReason = "cycle_broken"
)

// KnowledgeNode represents one concept in the prerequisite knowledge tree.
//
// A node is created by the explorer when it materializes a concept (the root,
// or a discovered prerequisite) and is mutated in place by the enrichment
// stages, each of which owns a distinct set of fields. The same concept string
// may appear at multiple nodes in different branches; branches are never
// merged.
type KnowledgeNode struct {
	Concept      string        `json:"concept"`
	Depth        int           `json:"depth"`
	IsFoundation bool          `json:"is_foundation"`
	LeafReason   LeafReason    `json:"leaf_reason,omitempty"`
	Prerequisites []*KnowledgeNode `json:"prerequisites"`

	// Enrichment fields, attached by later pipeline stages. Each stage is
	// additive: a second pass may overwrite a field but never nullifies one.
	Equations  []string          `json:"equations,omitempty"`
	Definitions map[string]string `json:"definitions,omitempty"`
	VisualSpec *VisualSpec       `json:"visual_spec,omitempty"`
	Narrative  string            `json:"narrative,omitempty"`
}

// VisualSpec holds the animation metadata for a single concept.
type VisualSpec struct {
	Elements       []string          `json:"elements,omitempty"`
	Colors         map[string]string `json:"colors,omitempty"`
	Animations     []string          `json:"animations,omitempty"`
	Transitions    []string          `json:"transitions,omitempty"`
	CameraMovement string            `json:"camera_movement,omitempty"`
	DurationSeconds int              `json:"duration,omitempty"`
	Layout         string            `json:"layout,omitempty"`

	// Set by the mathematical enricher rather than the visual designer.
	Interpretation string            `json:"interpretation,omitempty"`
	Examples       []string          `json:"examples,omitempty"`
	TypicalValues  map[string]string `json:"typical_values,omitempty"`
}

// NormalizeConcept returns the canonical form of a concept string used for
// cache keys and on-path cycle detection: lowercased with runs of whitespace
// collapsed to single spaces.
func NormalizeConcept(concept string) string {
	return strings.Join(strings.Fields(strings.ToLower(concept)), " ")
}

// NewKnowledgeNode creates an interior node for a concept at the given depth.
func NewKnowledgeNode(concept string, depth int) *KnowledgeNode {
	return &KnowledgeNode{
		Concept:       strings.TrimSpace(concept),
		Depth:         depth,
		Prerequisites: []*KnowledgeNode{},
	}
}

// NewLeaf creates a leaf node with an explicit reason. IsFoundation is set
// only for LeafFoundation; depth-truncated and cycle-broken leaves remain
// non-foundation so the distinction survives serialization.
func NewLeaf(concept string, depth int, reason LeafReason) *KnowledgeNode {
	n := NewKnowledgeNode(concept, depth)
	n.LeafReason = reason
	n.IsFoundation = reason == LeafFoundation
	return n
}

// Validate checks the node's own required fields.
func (n *KnowledgeNode) Validate() error {
	if strings.TrimSpace(n.Concept) == "" {
		return ErrEmptyConcept
	}
	if n.Depth < 0 {
		return ErrNegativeDepth
	}
	return nil
}

// IsLeaf reports whether the node has no prerequisites.
func (n *KnowledgeNode) IsLeaf() bool {
	return len(n.Prerequisites) == 0
}

// Normalized returns the node's concept in canonical cache-key form.
func (n *KnowledgeNode) Normalized() string {
	return NormalizeConcept(n.Concept)
}

// Walk visits the node and all descendants depth first, parent before
// children, stopping early if fn returns false.
func (n *KnowledgeNode) Walk(fn func(*KnowledgeNode) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, p := range n.Prerequisites {
		p.Walk(fn)
	}
}

// Count returns the total number of nodes in the subtree rooted at n.
func (n *KnowledgeNode) Count() int {
	count := 0
	n.Walk(func(*KnowledgeNode) bool {
		count++
		return true
	})
	return count
}

// MaxDepth returns the largest depth value in the subtree rooted at n.
func (n *KnowledgeNode) MaxDepth() int {
	max := 0
	n.Walk(func(node *KnowledgeNode) bool {
		if node.Depth > max {
			max = node.Depth
		}
		return true
	})
	return max
}

// Leaves returns all leaves of the subtree in discovery order.
func (n *KnowledgeNode) Leaves() []*KnowledgeNode {
	var leaves []*KnowledgeNode
	n.Walk(func(node *KnowledgeNode) bool {
		if node.IsLeaf() {
			leaves = append(leaves, node)
		}
		return true
	})
	return leaves
}

// PrintTree writes an indented rendering of the subtree to w.
func (n *KnowledgeNode) PrintTree(w io.Writer) {
	n.printTree(w, 0)
}

func (n *KnowledgeNode) printTree(w io.Writer, indent int) {
	mark := ""
	switch n.LeafReason {
	case LeafFoundation:
		mark = " [foundation]"
	case LeafDepthTruncated:
		mark = " [depth limit]"
	case LeafCycleBroken:
		mark = " [cycle]"
	}
	fmt.Fprintf(w, "%s- %s (depth %d)%s\n", strings.Repeat("  ", indent), n.Concept, n.Depth, mark)
	for _, p := range n.Prerequisites {
		p.printTree(w, indent+1)
	}
}

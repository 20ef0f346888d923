// Package types defines the core data types for the pedagogue pipeline.
//
// This package contains the fundamental types used throughout pedagogue:
//   - KnowledgeNode: One concept in the prerequisite knowledge tree
//   - VisualSpec: Animation metadata attached to a node by the enrichment stages
//   - Narrative: The linearized long-form animation specification
//   - Diagnostic: A soft error collected during a build without aborting it
//   - Message/Response: The oracle (reasoning service) interchange types
//
// # Leaf States
//
// Every leaf carries an explicit LeafReason describing why expansion stopped:
//   - LeafFoundation: the classifier judged the concept foundational
//   - LeafDepthTruncated: the configured maximum depth was reached
//   - LeafCycleBroken: the concept already appeared on the current path
//
// The three states are structurally identical (empty Prerequisites) but
// semantically distinct, so diagnostics and serialization preserve the tag.
//
// # JSON Serialization
//
// Knowledge trees serialize to a tree-shaped JSON document (concept, depth,
// is_foundation, prerequisites[], equations[], definitions{}, visual_spec{})
// suitable for caching and debugging.
package types

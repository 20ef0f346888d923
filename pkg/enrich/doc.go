// Package enrich attaches mathematical and visual content to knowledge tree
// nodes. The MathEnricher treats nodes as independent and works them in
// parallel; the VisualDesigner walks the tree parent-before-children so each
// concept's visuals can build on the colors and elements already introduced.
// Both are additive and idempotent: already-enriched nodes are skipped, and a
// node-local failure degrades that node only.
package enrich

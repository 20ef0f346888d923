// Package explorer builds knowledge trees by recursive prerequisite
// decomposition. A Classifier decides whether a concept is foundational, a
// Resolver names the prerequisites of non-foundational concepts, and the
// Explorer drives the recursion with depth, node, and wall-clock bounds.
//
// Resolver results are memoized by normalized concept name, so a concept that
// appears in several branches costs one oracle call. Cycles along the current
// path are broken by turning the repeated concept into a leaf.
package explorer

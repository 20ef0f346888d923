// Package pedagogue generates long-form Manim animation specifications from
// free-text learning requests.
//
// A request like "explain the Fourier transform" is analyzed into a target
// concept, recursively decomposed into a prerequisite knowledge tree, each
// node enriched with mathematical content and a visual design, and finally
// linearized into a single foundation-first narrative document ready for an
// animation code generator.
//
// The language model behind each stage is configurable per role, so a cheap
// model can classify concepts while a stronger one writes narrative prose.
package pedagogue

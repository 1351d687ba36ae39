package graph

import "sort"

// KeyedFactor is the minimal capability a factor-graph element must
// expose for VariableIndex construction: the ordered set of variables it
// touches. factor.Hessian, factor.Jacobian, and factor.Inequality all
// satisfy this.
type KeyedFactor interface {
	Keys() []VariableKey
}

// Graph is an ordered sequence of factors of one type. It is the Go
// generics stand-in for GTSAM's templated FactorGraph<FACTOR>, per spec
// design note on "nested template factor-graph generics": a sealed set
// of factor variants plus a small capability interface, instead of an
// open class hierarchy.
//
// Copies made with Clone share their factor values with the original
// (see Clone). WorkingSet (the inequality graph) is the inequality graph
// itself, not a derived subset, so factor indices into a Graph stay
// stable across iterations (spec §3's WorkingSet invariant).
type Graph[T any] struct {
	factors []T
}

// New returns an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{}
}

// FromSlice wraps an existing slice of factors as a graph, preserving
// their order (and therefore their indices).
func FromSlice[T any](factors []T) *Graph[T] {
	cp := make([]T, len(factors))
	copy(cp, factors)
	return &Graph[T]{factors: cp}
}

// Add appends f and returns its index within the graph.
func (g *Graph[T]) Add(f T) int {
	g.factors = append(g.factors, f)
	return len(g.factors) - 1
}

// At returns the factor at index i.
func (g *Graph[T]) At(i int) T {
	return g.factors[i]
}

// Set replaces the factor at index i in place. Used by the solver to
// toggle an inequality's active flag without disturbing any other
// factor's index.
func (g *Graph[T]) Set(i int, f T) {
	g.factors[i] = f
}

// Len returns the number of factors in the graph.
func (g *Graph[T]) Len() int {
	return len(g.factors)
}

// Factors returns the underlying factor slice. Callers must not retain
// it past a subsequent Add, since Add may reallocate.
func (g *Graph[T]) Factors() []T {
	return g.factors
}

// Filter returns the indices of factors for which pred returns true,
// preserving graph order. This is the "filtered view" named in spec §3
// for FactorGraph[T].
func (g *Graph[T]) Filter(pred func(T) bool) []int {
	var idx []int
	for i, f := range g.factors {
		if pred(f) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Clone returns a shallow copy of g: a new backing slice with the same
// factor values. Mutating factor fields of reference type still aliases
// the original; use this only for graphs of value-like factors whose
// mutable state (the Inequality active flag) is meant to be copied
// along with the factor value itself.
func (g *Graph[T]) Clone() *Graph[T] {
	return FromSlice(g.factors)
}

// VariableIndex maps a VariableKey to the ordered list of factor
// indices, within one graph, that reference it. It is built once per
// graph by a single scan and is read-only afterward, keeping the
// variable-index/factor relationship one-directional (spec design note
// on breaking cyclic factor<->index references).
type VariableIndex struct {
	index map[VariableKey][]int
}

// BuildVariableIndex scans g once, appending i to the entry for every
// key that factor i references.
func BuildVariableIndex[T KeyedFactor](g *Graph[T]) *VariableIndex {
	idx := &VariableIndex{index: make(map[VariableKey][]int)}
	for i, f := range g.Factors() {
		for _, k := range f.Keys() {
			idx.index[k] = append(idx.index[k], i)
		}
	}
	return idx
}

// Factors returns the factor indices in g that reference key, in the
// order they were discovered while scanning the graph.
func (v *VariableIndex) Factors(key VariableKey) []int {
	return v.index[key]
}

// Keys returns every variable key touched by the graph VariableIndex
// was built from, sorted lexically. The dual-graph builder iterates
// this order to fix the dual graph's row order, per spec §4.5.
func (v *VariableIndex) Keys() []VariableKey {
	out := make([]VariableKey, 0, len(v.index))
	for k := range v.index {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

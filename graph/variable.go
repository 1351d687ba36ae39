// Package graph holds the keyed variable storage and the generic
// factor-graph container shared by the cost, equality, and inequality
// graphs of a QP. It is the Go-generics analogue of GTSAM's
// VectorValues/FactorGraph<FACTOR> pair described in
// gtsam_unstable/linear/QPSolver.h.
package graph

import (
	"fmt"
	"sort"

	"github.com/rwcarlsen/qpgraph/linalg"
)

// VariableKey is a stable, opaque identifier for one vector-valued
// unknown. Keys are compared by value, so any two keys built from the
// same name refer to the same variable.
type VariableKey string

// DimensionMismatchError reports that a variable was used with two
// different dimensions, or that a value was requested for dimensions
// that don't agree with a factor's expectation. It is fatal, raised at
// first use, per spec ERROR HANDLING DESIGN.
type DimensionMismatchError struct {
	Key      VariableKey
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("qpgraph: dimension mismatch for key %q: expected %d, got %d", e.Key, e.Expected, e.Got)
}

// UnknownKeyError reports a lookup for a key that was never inserted.
type UnknownKeyError struct {
	Key VariableKey
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("qpgraph: unknown variable key %q", e.Key)
}

// VariableMap is a keyed collection mapping a VariableKey to a dense
// vector of that key's fixed dimension. Insertion of a key fixes its
// dimension for the lifetime of the map; a later insert at a different
// dimension panics via DimensionMismatchError the way the
// teacher's optim.Point panics on length mismatches (mesh.go's
// "origin len incompatible with point len").
type VariableMap struct {
	order []VariableKey
	vals  map[VariableKey][]float64
}

// NewVariableMap returns an empty VariableMap.
func NewVariableMap() *VariableMap {
	return &VariableMap{vals: make(map[VariableKey][]float64)}
}

// Insert stores vec under key, copying it so the map owns its data. If
// key already exists with a different dimension, it panics with
// DimensionMismatchError.
func (m *VariableMap) Insert(key VariableKey, vec []float64) {
	if existing, ok := m.vals[key]; ok {
		if len(existing) != len(vec) {
			panic(&DimensionMismatchError{Key: key, Expected: len(existing), Got: len(vec)})
		}
		copy(existing, vec)
		return
	}
	cp := make([]float64, len(vec))
	copy(cp, vec)
	m.order = append(m.order, key)
	m.vals[key] = cp
}

// Get returns the vector stored under key and whether it was present.
func (m *VariableMap) Get(key VariableKey) ([]float64, bool) {
	v, ok := m.vals[key]
	return v, ok
}

// MustGet returns the vector stored under key, panicking with
// UnknownKeyError if it is absent.
func (m *VariableMap) MustGet(key VariableKey) []float64 {
	v, ok := m.vals[key]
	if !ok {
		panic(&UnknownKeyError{Key: key})
	}
	return v
}

// Dim returns the declared dimension of key, or 0 if key is absent.
func (m *VariableMap) Dim(key VariableKey) int {
	return len(m.vals[key])
}

// Has reports whether key has been inserted.
func (m *VariableMap) Has(key VariableKey) bool {
	_, ok := m.vals[key]
	return ok
}

// Keys returns the map's keys in their first-insertion order.
func (m *VariableMap) Keys() []VariableKey {
	out := make([]VariableKey, len(m.order))
	copy(out, m.order)
	return out
}

// SortedKeys returns the map's keys sorted lexically, independent of
// insertion order.
func (m *VariableMap) SortedKeys() []VariableKey {
	out := m.Keys()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of keys stored.
func (m *VariableMap) Len() int { return len(m.order) }

// Clone returns a deep copy of m.
func (m *VariableMap) Clone() *VariableMap {
	out := NewVariableMap()
	for _, k := range m.order {
		out.Insert(k, m.vals[k])
	}
	return out
}

// Add returns a new VariableMap equal to m+other, elementwise per key.
// Both maps must carry exactly the same keys at the same dimensions.
func (m *VariableMap) Add(other *VariableMap) *VariableMap {
	out := NewVariableMap()
	for _, k := range m.order {
		a := m.vals[k]
		b, ok := other.vals[k]
		if !ok {
			panic(&UnknownKeyError{Key: k})
		}
		out.Insert(k, linalg.AddVec(a, b))
	}
	return out
}

// ScaledAdd returns a new VariableMap equal to y + alpha*p, i.e. m +
// alpha*other, elementwise per key (spec §4.1's "y <- y + alpha*p").
func (m *VariableMap) ScaledAdd(alpha float64, p *VariableMap) *VariableMap {
	out := NewVariableMap()
	for _, k := range m.order {
		y := m.vals[k]
		delta, ok := p.vals[k]
		if !ok {
			panic(&UnknownKeyError{Key: k})
		}
		out.Insert(k, linalg.ScaledAddVec(y, alpha, delta))
	}
	return out
}

// Dot returns the dot product of m and other over their shared keys.
func (m *VariableMap) Dot(other *VariableMap) float64 {
	tot := 0.0
	for _, k := range m.order {
		a := m.vals[k]
		b, ok := other.vals[k]
		if !ok {
			continue
		}
		tot += linalg.Dot(a, b)
	}
	return tot
}

// Equals reports whether m and other agree on every key in m within an
// absolute tolerance tol. It is not symmetric with respect to keys
// present only in other.
func (m *VariableMap) Equals(other *VariableMap, tol float64) bool {
	for _, k := range m.order {
		a := m.vals[k]
		b, ok := other.vals[k]
		if !ok || !linalg.EqualVec(a, b, tol) {
			return false
		}
	}
	return true
}

// Without returns a copy of m with key removed, leaving m itself
// untouched. Used by the driver to drop a leaving constraint's
// multiplier entry once it exits the working set (spec §4.8 step 2's
// "clear its dual entry").
func (m *VariableMap) Without(key VariableKey) *VariableMap {
	out := NewVariableMap()
	for _, k := range m.order {
		if k == key {
			continue
		}
		out.Insert(k, m.vals[k])
	}
	return out
}

// NormInf returns the infinity norm over every vector stored in m (the
// max absolute entry across all keys), used by the solver's primal_tol
// stationarity test (‖p‖∞).
func (m *VariableMap) NormInf() float64 {
	max := 0.0
	for _, k := range m.order {
		if n := linalg.NormInf(m.vals[k]); n > max {
			max = n
		}
	}
	return max
}

// Package gaussian implements the GaussianSolver contract of spec
// §4.4: given a Gaussian factor graph (Hessian cost factors plus
// Jacobian rows, some Constrained), it returns the VariableMap that
// minimizes the sum of squared residuals subject to the Constrained
// rows holding exactly.
//
// No sparse elimination library was available in the retrieval pack for
// this concern (spec §1 names "the generic sparse Gaussian-factor-graph
// elimination library" as an external collaborator this module doesn't
// own), so this package implements a dense KKT solve instead of
// fabricating a dependency: small per-iteration systems, stacked and
// solved with gonum/matrix/mat64, in the spirit of the teacher's own
// dense small-system helpers (pop/mve.go's mat64.Eigen/mat64.Inverse,
// mesh/project.go's OrthoProj).
package gaussian

import (
	"fmt"
	"sort"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// IndeterminateSolveError reports that the assembled KKT system was
// singular: the equality-constrained subproblem has no unique solution
// given the current working set.
type IndeterminateSolveError struct {
	Reason string
}

func (e *IndeterminateSolveError) Error() string {
	return fmt.Sprintf("qpgraph: indeterminate Gaussian solve: %s", e.Reason)
}

type keyInfo struct {
	dim int
	off int
}

// Solve eliminates the graph formed by hessians and equalities and
// returns a VariableMap with one entry per key referenced anywhere in
// the graph. Jacobian rows with noise model Gaussian contribute a
// least-squares penalty; rows with Constrained must hold exactly.
func Solve(hessians []*factor.Hessian, equalities []*factor.Jacobian) (*graph.VariableMap, error) {
	keys, err := collectKeys(hessians, equalities)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, ki := range keys {
		n += ki.dim
	}
	if n == 0 {
		// No key is referenced anywhere in the graph (e.g. a dual
		// graph built from an empty working set): nothing to solve.
		return graph.NewVariableMap(), nil
	}

	G := linalg.Zeros(n, n)
	g := make([]float64, n)
	hasCost := len(hessians) > 0

	for _, h := range hessians {
		offsets := slotOffsets(h.Keys(), keys)
		for i := 0; i < h.Slots(); i++ {
			linalg.AddVecAt(g, offsets[i], h.Grad(i))
			for j := 0; j < h.Slots(); j++ {
				linalg.AddBlock(G, offsets[i], offsets[j], h.Block(i, j))
			}
		}
	}

	var hardRows []*factor.Jacobian
	for _, eq := range equalities {
		switch eq.Noise() {
		case factor.Constrained:
			hardRows = append(hardRows, eq)
		default:
			hasCost = true
			offsets := slotOffsets(eq.Keys(), keys)
			b := eq.B()
			for i := range eq.Keys() {
				Ai := eq.A(i)
				AiT := linalg.Transpose(Ai)
				linalg.AddBlock(G, offsets[i], offsets[i], linalg.Mul(AiT, Ai))
				linalg.AddVecAt(g, offsets[i], linalg.MatVec(AiT, b))
				for j := range eq.Keys() {
					if j == i {
						continue
					}
					linalg.AddBlock(G, offsets[i], offsets[j], linalg.Mul(AiT, eq.A(j)))
				}
			}
		}
	}

	m := 0
	for _, eq := range hardRows {
		m += eq.Dim()
	}

	var C *linalg.Matrix
	var d []float64
	if m > 0 {
		C = linalg.Zeros(m, n)
		d = make([]float64, m)
		row := 0
		for _, eq := range hardRows {
			offsets := slotOffsets(eq.Keys(), keys)
			for i := range eq.Keys() {
				linalg.AddBlock(C, row, offsets[i], eq.A(i))
			}
			linalg.AddVecAt(d, row, eq.B())
			row += eq.Dim()
		}
	}

	var x []float64
	switch {
	case m == 0:
		sol, err := linalg.Solve(G, linalg.VecToCol(g))
		if err != nil {
			return nil, &IndeterminateSolveError{Reason: err.Error()}
		}
		x = linalg.ColToVec(sol)
	case !hasCost:
		// No quadratic cost term at all: the Constrained rows are the
		// entire problem, a plain (possibly overdetermined) linear
		// system rather than an equality-constrained QP. Solving it
		// through the augmented KKT system below would be singular,
		// since G is identically zero; solve C*x = d directly instead.
		// This is the shape the dual graph (stationarity rows over
		// multiplier keys, no Hessian) always takes.
		sol, err := linalg.Solve(C, linalg.VecToCol(d))
		if err != nil {
			return nil, &IndeterminateSolveError{Reason: err.Error()}
		}
		x = linalg.ColToVec(sol)
	default:
		total := n + m
		K := linalg.Zeros(total, total)
		linalg.SetBlock(K, 0, 0, G)
		linalg.SetBlock(K, 0, n, linalg.Transpose(C))
		linalg.SetBlock(K, n, 0, C)
		rhs := make([]float64, total)
		copy(rhs[:n], g)
		copy(rhs[n:], d)

		sol, err := linalg.Solve(K, linalg.VecToCol(rhs))
		if err != nil {
			return nil, &IndeterminateSolveError{Reason: err.Error()}
		}
		x = linalg.ColToVec(sol)[:n]
	}

	out := graph.NewVariableMap()
	for k, ki := range keys {
		out.Insert(k, x[ki.off:ki.off+ki.dim])
	}
	return out, nil
}

func collectKeys(hessians []*factor.Hessian, equalities []*factor.Jacobian) (map[graph.VariableKey]keyInfo, error) {
	dims := make(map[graph.VariableKey]int)
	order := func(k graph.VariableKey, d int) error {
		if prev, ok := dims[k]; ok {
			if prev != d {
				return &graph.DimensionMismatchError{Key: k, Expected: prev, Got: d}
			}
			return nil
		}
		dims[k] = d
		return nil
	}

	for _, h := range hessians {
		for i, k := range h.Keys() {
			if err := order(k, h.SlotDim(i)); err != nil {
				return nil, err
			}
		}
	}
	for _, eq := range equalities {
		for i, k := range eq.Keys() {
			_, c := eq.A(i).Dims()
			if err := order(k, c); err != nil {
				return nil, err
			}
		}
	}

	names := make([]graph.VariableKey, 0, len(dims))
	for k := range dims {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	keys := make(map[graph.VariableKey]keyInfo, len(names))
	off := 0
	for _, k := range names {
		keys[k] = keyInfo{dim: dims[k], off: off}
		off += dims[k]
	}
	return keys, nil
}

func slotOffsets(slotKeys []graph.VariableKey, keys map[graph.VariableKey]keyInfo) []int {
	out := make([]int, len(slotKeys))
	for i, k := range slotKeys {
		out[i] = keys[k].off
	}
	return out
}

// Package activeset implements the ActiveSetSolver iteration engine of
// spec §4.8: given an immutable QP (quadratic cost plus linear equality
// and inequality graphs), it drives the working set toward
// optimality, one equality-subproblem solve per iteration (plus a dual
// solve when the primal step is negligible), exactly as
// QPSolver::optimize does in the original source.
package activeset

import (
	"fmt"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
)

// WorkingSet is the set of inequalities treated as equalities during
// the current inner solve (the GLOSSARY's "Working set").
type WorkingSet = graph.Graph[*factor.Inequality]

// QP is the immutable triple a Solver is built from: quadratic cost,
// linear equalities, and linear inequalities. EqualityDuals assigns
// each equality row a synthetic multiplier key, in lockstep with
// Equalities.Factors() by index — see DESIGN.md's dual package entry
// for why equalities need multiplier keys even though spec §3 only
// names one on InequalityFactor.
type QP struct {
	Cost          *graph.Graph[*factor.Hessian]
	Equalities    *graph.Graph[*factor.Jacobian]
	EqualityDuals []graph.VariableKey
	Inequalities  *graph.Graph[*factor.Inequality]
}

// NewQP builds a QP from its three graphs, assigning each equality row
// a positional synthetic dual key.
func NewQP(cost *graph.Graph[*factor.Hessian], equalities *graph.Graph[*factor.Jacobian], inequalities *graph.Graph[*factor.Inequality]) *QP {
	duals := make([]graph.VariableKey, equalities.Len())
	for i := range duals {
		duals[i] = graph.VariableKey(fmt.Sprintf("__eq_dual_%d__", i))
	}
	return &QP{
		Cost:          cost,
		Equalities:    equalities,
		EqualityDuals: duals,
		Inequalities:  inequalities,
	}
}

// QPState is the driver's per-iteration state, replaced wholesale each
// call to iterate (spec §5's mutation discipline: no in-place state
// mutation across iterations).
type QPState struct {
	X          *graph.VariableMap
	Duals      *graph.VariableMap
	WorkingSet *WorkingSet
	Converged  bool
	Iter       int
}

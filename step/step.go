// Package step implements the two small pieces of iteration-control
// arithmetic the active-set driver needs between elimination steps:
// computing how far a descent direction can travel before an inactive
// inequality blocks it (spec §4.6's StepEngine), and picking which
// active inequality should leave the working set given a dual solution
// (spec §4.7's LeavingConstraintSelector). Both are grounded on
// QPSolver.h's computeStepSize/identifyLeavingConstraint.
package step

import (
	"math"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
)

// denFloor is the numerical floor below which a direction's rate of
// approach to a constraint boundary is treated as exactly zero (spec
// §4.6's "treat |den| < 1e-10 as den = 0").
const denFloor = 1e-10

// tieTol is the tolerance within which two candidate step sizes are
// considered tied; ties are broken by lowest factor index (spec §4.6).
const tieTol = 1e-12

// Blocking reports the step size alpha and, if one exists, the index
// (within the inequality graph) of the inactive constraint that first
// becomes tight.
type Blocking struct {
	Alpha  float64
	Index  int
	HasIdx bool
}

// Engine computes the step size and blocking constraint for a primal
// direction p starting from x, scanning every inequality in ineq that
// is not currently part of the working set.
type Engine struct{}

// Step implements spec §4.6: for each inactive row a'x <= b, num = b -
// a'x, den = a'p; a non-positive den means the step moves toward (or
// parallel to) feasibility and can't block. The final alpha is
// min(1, min_i alpha_i); ties within tieTol go to the lowest index.
func (Engine) Step(ineq *graph.Graph[*factor.Inequality], x, p *graph.VariableMap) Blocking {
	best := Blocking{Alpha: 1, HasIdx: false}
	for i, f := range ineq.Factors() {
		if f.Active() {
			continue
		}
		num := -f.Residual(x)
		den := directionalResidual(f, p)
		if math.Abs(den) < denFloor {
			den = 0
		}
		if den <= 0 {
			continue
		}
		alpha := num / den
		// Strictly better, or tied within tieTol: ties go to the
		// lowest index, which is already held since i increases.
		if alpha < best.Alpha-tieTol {
			best = Blocking{Alpha: alpha, Index: i, HasIdx: true}
		}
	}
	if best.Alpha >= 1-tieTol {
		return Blocking{Alpha: 1, HasIdx: false}
	}
	return best
}

// directionalResidual evaluates a'p for inequality f's row, i.e. the
// residual of f against the direction p treated as a point (f's
// constant term b does not participate).
func directionalResidual(f *factor.Inequality, p *graph.VariableMap) float64 {
	sum := 0.0
	for slot, k := range f.Keys() {
		pk, ok := p.Get(k)
		if !ok {
			panic(&graph.UnknownKeyError{Key: k})
		}
		a := f.A(slot)
		_, c := a.Dims()
		for j := 0; j < c; j++ {
			sum += a.At(0, j) * pk[j]
		}
	}
	return sum
}

// Leaving reports the index of the active inequality (within the
// working set) whose dual is the largest positive value, and whether
// such a constraint exists.
type Leaving struct {
	Index  int
	HasIdx bool
}

// LeavingSelector implements spec §4.7: among the active inequalities,
// find the one with the largest positive multiplier (most severely
// violating lambda <= 0). If every active multiplier is <= dualTol,
// the working set is optimal and no constraint leaves.
type LeavingSelector struct {
	DualTol float64
}

// Select scans ineq's active factors in index order, using duals for
// each factor's DualKey. A factor whose dual key is missing from duals
// (it was never solved for, e.g. the dual graph omitted it) is treated
// as having multiplier zero.
func (s LeavingSelector) Select(ineq *graph.Graph[*factor.Inequality], duals *graph.VariableMap) Leaving {
	best := Leaving{}
	bestLambda := s.DualTol
	for i, f := range ineq.Factors() {
		if !f.Active() {
			continue
		}
		v, ok := duals.Get(f.DualKey())
		if !ok {
			continue
		}
		lambda := v[0]
		if lambda > bestLambda {
			bestLambda = lambda
			best = Leaving{Index: i, HasIdx: true}
		}
	}
	return best
}

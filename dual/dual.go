// Package dual builds the KKT-stationarity graph used to recover the
// Lagrange multipliers of an active working set (spec §4.5's
// DualGraphBuilder). This is the Go shape of GTSAM's buildDualGraph /
// collectDualJacobians in gtsam_unstable/linear/QPSolver.h: take the
// derivative of the Lagrangian
//
//	L(x, lambda) = f(x) - sum_k lambda_k * c_k(x)
//
// with respect to each primal variable xi and set it to zero. Every
// active constraint touching xi (an equality row, or an inequality
// currently in the working set) contributes its transposed coefficient
// block as a column of lambda's coefficient; the cost factors touching
// xi contribute the right-hand side grad f(xi). The resulting rows,
// one per primal variable touched by at least one active constraint,
// form a new Jacobian graph over multiplier keys, noise model
// Constrained because stationarity must hold exactly.
package dual

import (
	"sort"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Build assembles the dual graph for the given cost and active
// constraints, evaluated at the current iterate x. equalities and
// eqDuals run in lockstep: eqDuals[i] is the multiplier key of
// equalities.At(i). workingSet is scanned for factors with Active()
// true; inactive inequalities contribute nothing.
//
// Variables are scanned in lexical key order (graph.VariableIndex.Keys)
// so that, for a fixed working set, the dual graph's row order (and
// therefore any tie-breaking downstream) is deterministic.
func Build(
	cost *graph.Graph[*factor.Hessian],
	equalities *graph.Graph[*factor.Jacobian],
	eqDuals []graph.VariableKey,
	workingSet *graph.Graph[*factor.Inequality],
	x *graph.VariableMap,
) *graph.Graph[*factor.Jacobian] {
	costIdx := graph.BuildVariableIndex[*factor.Hessian](cost)
	eqIdx := graph.BuildVariableIndex[*factor.Jacobian](equalities)
	wsIdx := graph.BuildVariableIndex[*factor.Inequality](workingSet)

	// Only variables touched by at least one active constraint get a
	// stationarity row: a variable with no constraint on it satisfies
	// grad f(xi) = 0 automatically at a KKT primal solution, so the
	// row is omitted rather than emitted and trivially solved (spec
	// §4.5).
	keys := make(map[graph.VariableKey]bool)
	for _, k := range eqIdx.Keys() {
		keys[k] = true
	}
	for _, k := range wsIdx.Keys() {
		if anyActive(workingSet, wsIdx.Factors(k)) {
			keys[k] = true
		}
	}
	ordered := make([]graph.VariableKey, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	out := graph.New[*factor.Jacobian]()
	for _, xi := range ordered {
		blockKeys, blocks := collectDualJacobians(xi, equalities, eqIdx, eqDuals, workingSet, wsIdx)
		if len(blockKeys) == 0 {
			continue
		}
		rhs := stationarityRHS(xi, x, cost, costIdx)
		out.Add(factor.NewJacobian(blockKeys, blocks, rhs, factor.Constrained))
	}
	return out
}

// anyActive reports whether any of the workingSet factors at the given
// indices is currently active.
func anyActive(workingSet *graph.Graph[*factor.Inequality], idx []int) bool {
	for _, i := range idx {
		if workingSet.At(i).Active() {
			return true
		}
	}
	return false
}

// collectDualJacobians gathers, for primal variable xi, one transposed
// coefficient block per active constraint touching it: A_k(xi)' as the
// block for multiplier key lambda_k. This mirrors QPSolver.h's
// collectDualJacobians, which is templated only over Jacobian-shaped
// factors (equalities and active inequalities), never over the cost
// Hessian.
func collectDualJacobians(
	xi graph.VariableKey,
	equalities *graph.Graph[*factor.Jacobian],
	eqIdx *graph.VariableIndex,
	eqDuals []graph.VariableKey,
	workingSet *graph.Graph[*factor.Inequality],
	wsIdx *graph.VariableIndex,
) ([]graph.VariableKey, []*linalg.Matrix) {
	var keys []graph.VariableKey
	var blocks []*linalg.Matrix

	for _, fi := range eqIdx.Factors(xi) {
		eq := equalities.At(fi)
		slot := slotOf(xi, eq.Keys())
		keys = append(keys, eqDuals[fi])
		blocks = append(blocks, linalg.Transpose(eq.A(slot)))
	}
	for _, fi := range wsIdx.Factors(xi) {
		ineq := workingSet.At(fi)
		if !ineq.Active() {
			continue
		}
		slot := slotOf(xi, ineq.Keys())
		keys = append(keys, ineq.DualKey())
		blocks = append(blocks, linalg.Transpose(ineq.A(slot)))
	}
	return keys, blocks
}

// stationarityRHS returns grad f(xi) evaluated at x, summed over every
// Hessian cost factor touching xi. A variable with no cost factor
// touching it (one that appears only in a constraint) has a zero
// gradient contribution.
func stationarityRHS(xi graph.VariableKey, x *graph.VariableMap, cost *graph.Graph[*factor.Hessian], costIdx *graph.VariableIndex) []float64 {
	var rhs []float64
	for _, fi := range costIdx.Factors(xi) {
		h := cost.At(fi)
		slot := slotOf(xi, h.Keys())
		g := h.Gradient(slot, x)
		if rhs == nil {
			rhs = make([]float64, len(g))
		}
		for r := range rhs {
			rhs[r] += g[r]
		}
	}
	if rhs == nil {
		rhs = make([]float64, x.Dim(xi))
	}
	return rhs
}

func slotOf(key graph.VariableKey, keys []graph.VariableKey) int {
	for i, k := range keys {
		if k == key {
			return i
		}
	}
	panic("dual: key not found among factor's own keys")
}

package dual

import (
	"testing"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/gaussian"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// TestBuildSingleActiveInequality checks the textbook case: minimize
// x^2 subject to x <= 1, active at x=1. Stationarity gives
// grad f(x) = 2*x = 2 = lambda * 1, so lambda should come out as 2.
func TestBuildSingleActiveInequality(t *testing.T) {
	x := graph.VariableKey("x")

	cost := graph.New[*factor.Hessian]()
	h := factor.NewHessian([]graph.VariableKey{x}, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{2}))
	cost.Add(h)

	equalities := graph.New[*factor.Jacobian]()

	workingSet := graph.New[*factor.Inequality]()
	ineq := factor.NewInequality([]graph.VariableKey{x}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 1, "lam1")
	ineq.SetActive(true)
	workingSet.Add(ineq)

	xk := graph.NewVariableMap()
	xk.Insert(x, []float64{1})

	dg := Build(cost, equalities, nil, workingSet, xk)
	if dg.Len() != 1 {
		t.Fatalf("expected 1 dual row, got %d", dg.Len())
	}

	duals, err := gaussian.Solve(nil, dg.Factors())
	if err != nil {
		t.Fatalf("unexpected solve error: %v", err)
	}
	lam := duals.MustGet("lam1")
	if len(lam) != 1 || lam[0] != 2 {
		t.Errorf("expected lambda=[2], got %v", lam)
	}
}

// TestBuildIgnoresInactiveInequality confirms an inequality left out of
// the working set contributes no dual row at all.
func TestBuildIgnoresInactiveInequality(t *testing.T) {
	x := graph.VariableKey("x")

	cost := graph.New[*factor.Hessian]()
	h := factor.NewHessian([]graph.VariableKey{x}, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{2}))
	cost.Add(h)

	equalities := graph.New[*factor.Jacobian]()

	workingSet := graph.New[*factor.Inequality]()
	ineq := factor.NewInequality([]graph.VariableKey{x}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 1, "lam1")
	workingSet.Add(ineq)

	xk := graph.NewVariableMap()
	xk.Insert(x, []float64{0})

	dg := Build(cost, equalities, nil, workingSet, xk)
	if dg.Len() != 0 {
		t.Errorf("expected no dual rows for an inactive working set, got %d", dg.Len())
	}
}

// TestBuildIncludesEqualityDual checks that an always-active equality
// constraint also contributes a stationarity row, keyed by its
// assigned multiplier.
func TestBuildIncludesEqualityDual(t *testing.T) {
	x := graph.VariableKey("x")

	cost := graph.New[*factor.Hessian]()
	h := factor.NewHessian([]graph.VariableKey{x}, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{2}))
	cost.Add(h)

	equalities := graph.New[*factor.Jacobian]()
	eq := factor.NewJacobian([]graph.VariableKey{x}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, []float64{1}, factor.Constrained)
	equalities.Add(eq)
	eqDuals := []graph.VariableKey{"lam_eq0"}

	workingSet := graph.New[*factor.Inequality]()

	xk := graph.NewVariableMap()
	xk.Insert(x, []float64{1})

	dg := Build(cost, equalities, eqDuals, workingSet, xk)
	if dg.Len() != 1 {
		t.Fatalf("expected 1 dual row, got %d", dg.Len())
	}
	duals, err := gaussian.Solve(nil, dg.Factors())
	if err != nil {
		t.Fatalf("unexpected solve error: %v", err)
	}
	lam := duals.MustGet("lam_eq0")
	if len(lam) != 1 || lam[0] != 2 {
		t.Errorf("expected lambda=[2], got %v", lam)
	}
}

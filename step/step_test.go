package step

import (
	"testing"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

func TestStepBlocksAtBoundary(t *testing.T) {
	xk := graph.VariableKey("x")
	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 2, "lam"))

	x := graph.NewVariableMap()
	x.Insert(xk, []float64{0})
	p := graph.NewVariableMap()
	p.Insert(xk, []float64{3})

	got := Engine{}.Step(ineq, x, p)
	want := 2.0 / 3.0
	if !got.HasIdx || got.Index != 0 {
		t.Fatalf("expected blocking index 0, got %+v", got)
	}
	if diff := got.Alpha - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected alpha %v, got %v", want, got.Alpha)
	}
}

func TestStepFullUnblocked(t *testing.T) {
	xk := graph.VariableKey("x")
	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 10, "lam"))

	x := graph.NewVariableMap()
	x.Insert(xk, []float64{0})
	p := graph.NewVariableMap()
	p.Insert(xk, []float64{1})

	got := Engine{}.Step(ineq, x, p)
	if got.HasIdx {
		t.Fatalf("expected no blocking constraint, got %+v", got)
	}
	if got.Alpha != 1 {
		t.Errorf("expected alpha 1, got %v", got.Alpha)
	}
}

func TestStepSkipsActiveAndNonBlockingDirections(t *testing.T) {
	xk := graph.VariableKey("x")
	ineq := graph.New[*factor.Inequality]()
	active := factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 1, "lam0")
	active.SetActive(true)
	ineq.Add(active)
	awayFromBoundary := factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{-1})}, 5, "lam1")
	ineq.Add(awayFromBoundary)

	x := graph.NewVariableMap()
	x.Insert(xk, []float64{0})
	p := graph.NewVariableMap()
	p.Insert(xk, []float64{1})

	got := Engine{}.Step(ineq, x, p)
	if got.HasIdx {
		t.Fatalf("expected neither active nor diverging constraint to block, got %+v", got)
	}
}

func TestLeavingSelectorPicksLargestPositive(t *testing.T) {
	xk := graph.VariableKey("x")
	ineq := graph.New[*factor.Inequality]()
	f0 := factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 1, "lam0")
	f0.SetActive(true)
	ineq.Add(f0)
	f1 := factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 2, "lam1")
	f1.SetActive(true)
	ineq.Add(f1)

	duals := graph.NewVariableMap()
	duals.Insert("lam0", []float64{-1})
	duals.Insert("lam1", []float64{3})

	sel := LeavingSelector{DualTol: 1e-9}
	got := sel.Select(ineq, duals)
	if !got.HasIdx || got.Index != 1 {
		t.Errorf("expected leaving index 1 (lam1=3), got %+v", got)
	}
}

func TestLeavingSelectorOptimalWhenAllNonpositive(t *testing.T) {
	xk := graph.VariableKey("x")
	ineq := graph.New[*factor.Inequality]()
	f0 := factor.NewInequality([]graph.VariableKey{xk}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 1, "lam0")
	f0.SetActive(true)
	ineq.Add(f0)

	duals := graph.NewVariableMap()
	duals.Insert("lam0", []float64{-0.5})

	sel := LeavingSelector{DualTol: 1e-9}
	got := sel.Select(ineq, duals)
	if got.HasIdx {
		t.Errorf("expected no leaving constraint, got %+v", got)
	}
}

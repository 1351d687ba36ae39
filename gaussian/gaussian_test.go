package gaussian

import (
	"testing"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

func TestSolveUnconstrained(t *testing.T) {
	keys := []graph.VariableKey{"x"}
	h := factor.NewHessian(keys, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetGrad(0, []float64{2})

	x, err := Solve([]*factor.Hessian{h}, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := x.MustGet("x")[0]; got != 2 {
		t.Fatalf("got %v, want 2", got)
	}
}

func TestSolveEqualityConstrained(t *testing.T) {
	keys := []graph.VariableKey{"x1", "x2"}
	h := factor.NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetBlock(1, 1, linalg.New(1, 1, []float64{1}))
	h.SetBlock(0, 1, linalg.Zeros(1, 1))

	row := factor.NewJacobian(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.New(1, 1, []float64{1}),
	}, []float64{1}, factor.Constrained)

	x, err := Solve([]*factor.Hessian{h}, []*factor.Jacobian{row})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := x.MustGet("x1")[0]; got < 0.4999999 || got > 0.5000001 {
		t.Fatalf("x1 = %v, want 0.5", got)
	}
	if got := x.MustGet("x2")[0]; got < 0.4999999 || got > 0.5000001 {
		t.Fatalf("x2 = %v, want 0.5", got)
	}
}

func TestSolveNoCostPlainLinearSystem(t *testing.T) {
	row := factor.NewJacobian([]graph.VariableKey{"lam"}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, []float64{-2}, factor.Constrained)
	x, err := Solve(nil, []*factor.Jacobian{row})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if got := x.MustGet("lam")[0]; got != -2 {
		t.Fatalf("got %v, want -2", got)
	}
}

func TestSolveEmptyGraphReturnsEmptyMap(t *testing.T) {
	x, err := Solve(nil, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if x.Len() != 0 {
		t.Fatalf("expected empty map, got %d keys", x.Len())
	}
}

func TestSolveDimensionMismatchError(t *testing.T) {
	keys := []graph.VariableKey{"x"}
	h := factor.NewHessian(keys, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))

	row := factor.NewJacobian([]graph.VariableKey{"x"}, []*linalg.Matrix{linalg.New(1, 2, []float64{1, 1})}, []float64{1}, factor.Constrained)

	_, err := Solve([]*factor.Hessian{h}, []*factor.Jacobian{row})
	if err == nil {
		t.Fatal("expected a dimension mismatch error")
	}
	if _, ok := err.(*graph.DimensionMismatchError); !ok {
		t.Fatalf("expected *graph.DimensionMismatchError, got %T", err)
	}
}

package factor

import (
	"testing"

	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

func TestHessianGradient(t *testing.T) {
	keys := []graph.VariableKey{"x", "y"}
	h := NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{2}))
	h.SetBlock(1, 1, linalg.New(1, 1, []float64{2}))
	h.SetBlock(0, 1, linalg.Zeros(1, 1))
	h.SetGrad(0, []float64{4})
	h.SetGrad(1, []float64{4})

	x := graph.NewVariableMap()
	x.Insert("x", []float64{1})
	x.Insert("y", []float64{1})

	gx := h.Gradient(0, x)
	if gx[0] != -2 {
		t.Fatalf("grad_x = %v, want -2", gx[0])
	}
}

func TestHessianBlockTransposedWhenOffDiagonal(t *testing.T) {
	keys := []graph.VariableKey{"x", "y"}
	h := NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 1, linalg.New(1, 1, []float64{3}))

	b01 := h.Block(0, 1)
	b10 := h.Block(1, 0)
	if b01.At(0, 0) != 3 || b10.At(0, 0) != 3 {
		t.Fatalf("expected symmetric blocks, got %v %v", b01.At(0, 0), b10.At(0, 0))
	}
}

func TestHessianShiftedNegatesGradient(t *testing.T) {
	keys := []graph.VariableKey{"x"}
	h := NewHessian(keys, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetGrad(0, []float64{2})

	x := graph.NewVariableMap()
	x.Insert("x", []float64{0})

	shifted := h.Shifted(x)
	if got := shifted.Grad(0)[0]; got != 2 {
		t.Fatalf("shifted grad = %v, want 2 (== -Gradient(0,x))", got)
	}
}

func TestHessianSetBlockRequiresIJOrder(t *testing.T) {
	keys := []graph.VariableKey{"x", "y"}
	h := NewHessian(keys, []int{1, 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when i > j")
		}
	}()
	h.SetBlock(1, 0, linalg.Zeros(1, 1))
}

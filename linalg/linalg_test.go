package linalg

import "testing"

func TestSolveSquare(t *testing.T) {
	// 2x + y = 5, x + 3y = 10 -> x=1, y=3
	A := New(2, 2, []float64{2, 1, 1, 3})
	b := VecToCol([]float64{5, 10})
	x, err := Solve(A, b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	got := ColToVec(x)
	if !EqualVec(got, []float64{1, 3}, 1e-9) {
		t.Fatalf("got %v, want [1 3]", got)
	}
}

func TestSolveOverdetermined(t *testing.T) {
	// A consistent overdetermined system: x=2 stated twice, plus a
	// trivially-satisfied zero row, least-squares should still recover
	// x=2 exactly.
	A := New(3, 1, []float64{1, 1, 0})
	b := VecToCol([]float64{2, 2, 0})
	x, err := Solve(A, b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	got := ColToVec(x)
	if !EqualVec(got, []float64{2}, 1e-9) {
		t.Fatalf("got %v, want [2]", got)
	}
}

func TestAddBlockAndSetBlock(t *testing.T) {
	dst := Zeros(3, 3)
	src := New(2, 2, []float64{1, 2, 3, 4})
	SetBlock(dst, 1, 1, src)
	AddBlock(dst, 1, 1, src)
	if dst.At(1, 1) != 2 || dst.At(2, 2) != 8 {
		t.Fatalf("unexpected block accumulation: %v %v", dst.At(1, 1), dst.At(2, 2))
	}
}

func TestMatVec(t *testing.T) {
	a := New(2, 2, []float64{1, 0, 0, 1})
	v := []float64{3, 4}
	got := MatVec(a, v)
	if !EqualVec(got, v, 1e-12) {
		t.Fatalf("identity matvec changed the vector: %v", got)
	}
}

func TestScaledAddVec(t *testing.T) {
	y := []float64{1, 1}
	p := []float64{2, -2}
	got := ScaledAddVec(y, 0.5, p)
	if !EqualVec(got, []float64{2, 0}, 1e-12) {
		t.Fatalf("got %v, want [2 0]", got)
	}
}

func TestNormInf(t *testing.T) {
	if NormInf([]float64{-1, 5, -3}) != 5 {
		t.Fatalf("expected 5")
	}
}

func TestTranspose(t *testing.T) {
	a := New(1, 2, []float64{3, 4})
	tr := Transpose(a)
	r, c := tr.Dims()
	if r != 2 || c != 1 || tr.At(0, 0) != 3 || tr.At(1, 0) != 4 {
		t.Fatalf("unexpected transpose: dims=%d,%d vals=%v,%v", r, c, tr.At(0, 0), tr.At(1, 0))
	}
}

// Package linalg provides the dense matrix and vector primitives used by
// factor blocks, the KKT elimination solver, and the dual-graph builder.
// It wraps gonum/matrix/mat64 the same way the teacher mesh package does:
// a BLAS backend is registered once at init time and all blocks are plain
// *mat64.Dense values.
package linalg

import (
	"fmt"
	"math"

	"github.com/gonum/blas/goblas"
	"github.com/gonum/matrix/mat64"
)

func init() {
	mat64.Register(goblas.Blasser)
}

// Matrix is a dense, row-major matrix block. Blocks owned by a factor are
// small (one key's worth of columns, one constraint row's worth of rows).
type Matrix = mat64.Dense

// New builds an r x c matrix from row-major data. A nil data slice zeros
// the matrix.
func New(r, c int, data []float64) *Matrix {
	return mat64.NewDense(r, c, data)
}

// Zeros returns an r x c matrix of zeros.
func Zeros(r, c int) *Matrix {
	return mat64.NewDense(r, c, nil)
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := mat64.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// Transpose returns a new matrix equal to a's transpose.
func Transpose(a *Matrix) *Matrix {
	t := &mat64.Dense{}
	t.TCopy(a)
	return t
}

// Mul returns a*b as a new matrix.
func Mul(a, b *Matrix) *Matrix {
	out := &mat64.Dense{}
	out.Mul(a, b)
	return out
}

// Add returns a+b as a new matrix.
func Add(a, b *Matrix) *Matrix {
	out := &mat64.Dense{}
	out.Add(a, b)
	return out
}

// Sub returns a-b as a new matrix.
func Sub(a, b *Matrix) *Matrix {
	out := &mat64.Dense{}
	out.Sub(a, b)
	return out
}

// Scale returns a*s as a new matrix.
func Scale(a *Matrix, s float64) *Matrix {
	out := &mat64.Dense{}
	out.Scale(s, a)
	return out
}

// Solve solves a*x = b for x, same convention as mesh.OrthoProj's use of
// mat64.Solve for square systems.
func Solve(a, b *Matrix) (*Matrix, error) {
	return mat64.Solve(a, b)
}

// Inverse returns a's inverse.
func Inverse(a *Matrix) (*Matrix, error) {
	return mat64.Inverse(a)
}

// VecToCol turns a []float64 into an n x 1 column matrix.
func VecToCol(v []float64) *Matrix {
	return mat64.NewDense(len(v), 1, v)
}

// ColToVec reads an n x 1 column matrix back into a []float64.
func ColToVec(m *Matrix) []float64 {
	return m.Col(nil, 0)
}

// MatVec returns a*v for a column vector v, as a plain []float64.
func MatVec(a *Matrix, v []float64) []float64 {
	_, n := a.Dims()
	if n != len(v) {
		panic(fmt.Sprintf("linalg: matvec dimension mismatch: matrix has %d cols, vector has %d", n, len(v)))
	}
	out := &mat64.Dense{}
	out.Mul(a, VecToCol(v))
	return ColToVec(out)
}

// Dot returns the dot product of a and b.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("linalg: dot dimension mismatch: %d vs %d", len(a), len(b)))
	}
	tot := 0.0
	for i := range a {
		tot += a[i] * b[i]
	}
	return tot
}

// AddVec returns a+b elementwise.
func AddVec(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("linalg: add dimension mismatch: %d vs %d", len(a), len(b)))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out
}

// SubVec returns a-b elementwise.
func SubVec(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("linalg: sub dimension mismatch: %d vs %d", len(a), len(b)))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

// ScaleVec returns a*s elementwise.
func ScaleVec(a []float64, s float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

// ScaledAddVec returns y + alpha*p elementwise (the VariableMap.ScaledAdd
// primitive).
func ScaledAddVec(y []float64, alpha float64, p []float64) []float64 {
	if len(y) != len(p) {
		panic(fmt.Sprintf("linalg: scaled-add dimension mismatch: %d vs %d", len(y), len(p)))
	}
	out := make([]float64, len(y))
	for i := range y {
		out[i] = y[i] + alpha*p[i]
	}
	return out
}

// NormInf returns the infinity norm (max absolute element) of v.
func NormInf(v []float64) float64 {
	max := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}

// SetBlock copies src into dst starting at (rowOff, colOff).
func SetBlock(dst *Matrix, rowOff, colOff int, src *Matrix) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(rowOff+i, colOff+j, src.At(i, j))
		}
	}
}

// AddBlock accumulates src into dst starting at (rowOff, colOff).
func AddBlock(dst *Matrix, rowOff, colOff int, src *Matrix) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(rowOff+i, colOff+j, dst.At(rowOff+i, colOff+j)+src.At(i, j))
		}
	}
}

// AddVecAt accumulates src into dst's rows starting at rowOff.
func AddVecAt(dst []float64, rowOff int, src []float64) {
	for i, v := range src {
		dst[rowOff+i] += v
	}
}

// EqualVec reports whether a and b are equal within an absolute tolerance.
func EqualVec(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

package factor

import (
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Hessian represents one quadratic cost term
//
//	1/2 * sum_ij xi' Gij xj  -  sum_i gi' xi
//
// scoped to an ordered tuple of keys, per spec §3's HessianFactor.
// Off-diagonal blocks are stored once (for i<j) and transposed on
// lookup, since the block Hessian is symmetric: Gji = Gij'.
type Hessian struct {
	keys   []graph.VariableKey
	dims   []int
	blocks map[[2]int]*linalg.Matrix
	grad   [][]float64
}

// NewHessian builds an empty Hessian factor over keys with the given
// per-key dimensions. Use SetBlock and SetGrad to fill it in.
func NewHessian(keys []graph.VariableKey, dims []int) *Hessian {
	checkKeyDims(keys, dims)
	return &Hessian{
		keys:   append([]graph.VariableKey{}, keys...),
		dims:   append([]int{}, dims...),
		blocks: make(map[[2]int]*linalg.Matrix),
		grad:   make([][]float64, len(keys)),
	}
}

// SetBlock stores the dims[i] x dims[j] block Gij. Callers must pass i
// <= j; SetBlock(j, i, ...) is inferred automatically as the transpose.
func (h *Hessian) SetBlock(i, j int, g *linalg.Matrix) {
	if i > j {
		panic("factor: Hessian.SetBlock requires i <= j; the (j,i) block is implied")
	}
	r, c := g.Dims()
	if r != h.dims[i] || c != h.dims[j] {
		panic(&graph.DimensionMismatchError{Key: h.keys[i], Expected: h.dims[i], Got: r})
	}
	h.blocks[[2]int{i, j}] = g
}

// SetGrad stores the linear coefficient gi for slot i.
func (h *Hessian) SetGrad(i int, g []float64) {
	if len(g) != h.dims[i] {
		panic(&graph.DimensionMismatchError{Key: h.keys[i], Expected: h.dims[i], Got: len(g)})
	}
	h.grad[i] = append([]float64{}, g...)
}

// Keys returns the ordered tuple of variables this factor touches.
func (h *Hessian) Keys() []graph.VariableKey { return h.keys }

// Dim returns the total scalar dimension spanned by this factor's keys.
func (h *Hessian) Dim() int {
	n := 0
	for _, d := range h.dims {
		n += d
	}
	return n
}

// Active always reports true: cost factors are never removed from the
// graph the way inequalities are.
func (h *Hessian) Active() bool { return true }

// Slots returns the number of key slots (as opposed to Dim's scalar
// count).
func (h *Hessian) Slots() int { return len(h.keys) }

// SlotDim returns the dimension of slot i.
func (h *Hessian) SlotDim(i int) int { return h.dims[i] }

// Block returns Gij, transposing a stored (j,i) block when i>j.
func (h *Hessian) Block(i, j int) *linalg.Matrix {
	if i <= j {
		if b, ok := h.blocks[[2]int{i, j}]; ok {
			return b
		}
		return linalg.Zeros(h.dims[i], h.dims[j])
	}
	b := h.Block(j, i)
	return linalg.Transpose(b)
}

// Grad returns gi, the linear coefficient for slot i.
func (h *Hessian) Grad(i int) []float64 {
	if h.grad[i] == nil {
		return make([]float64, h.dims[i])
	}
	return h.grad[i]
}

// Gradient returns grad f(x) restricted to slot i, evaluated at x:
//
//	grad_i f(x) = sum_j Gij * x[keys[j]]  -  gi
//
// This is exactly the right-hand side term spec §4.5 assigns to the
// dual graph's stationarity row for xi, and the GTSAM comment this is
// grounded on: "grad f(xi) = sum_j G_ij*xj - gi".
func (h *Hessian) Gradient(i int, x *graph.VariableMap) []float64 {
	out := make([]float64, h.dims[i])
	for j, kj := range h.keys {
		xj, ok := x.Get(kj)
		if !ok {
			panic(&graph.UnknownKeyError{Key: kj})
		}
		row := linalg.MatVec(h.Block(i, j), xj)
		for r := range out {
			out[r] += row[r]
		}
	}
	gi := h.Grad(i)
	for r := range out {
		out[r] -= gi[r]
	}
	return out
}

// Shifted returns a copy of h rewritten in terms of the step p = y - x:
// the same quadratic blocks, but with grad_i' = -Gradient(i, x) so that
// minimizing the shifted cost over p gives the same descent direction
// as minimizing the original cost over y, starting from the feasible
// point x. This is the "primal delta" the active-set driver solves for
// each iteration instead of re-deriving an absolute point (spec §4.8
// step 1), following QPSolver.h's buildDualGraph shift of using the
// current iterate's gradient as the linear term.
func (h *Hessian) Shifted(x *graph.VariableMap) *Hessian {
	out := &Hessian{
		keys:   append([]graph.VariableKey{}, h.keys...),
		dims:   append([]int{}, h.dims...),
		blocks: h.blocks,
		grad:   make([][]float64, len(h.keys)),
	}
	for i := range h.keys {
		g := h.Gradient(i, x)
		neg := make([]float64, len(g))
		for r := range g {
			neg[r] = -g[r]
		}
		out.grad[i] = neg
	}
	return out
}

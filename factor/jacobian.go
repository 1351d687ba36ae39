package factor

import (
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Jacobian represents one linear row Ai*x - bi scoped to an ordered
// tuple of keys: a linear equality constraint, an active inequality
// after promotion, or a row of the dual graph (spec §3's
// JacobianFactor). Its noise model says whether the row must be
// satisfied exactly (Constrained) or minimized in a least-squares sense
// (Gaussian).
type Jacobian struct {
	keys   []graph.VariableKey
	blocks []*linalg.Matrix
	b      []float64
	noise  NoiseModel
}

// NewJacobian builds a row over keys with per-key coefficient blocks
// and right-hand side b. All blocks must have exactly len(b) rows.
func NewJacobian(keys []graph.VariableKey, blocks []*linalg.Matrix, b []float64, noise NoiseModel) *Jacobian {
	dims := make([]int, len(blocks))
	for i, blk := range blocks {
		_, c := blk.Dims()
		dims[i] = c
	}
	checkBlockDims("Jacobian", keys, dims, blocks, len(b))
	return &Jacobian{
		keys:   append([]graph.VariableKey{}, keys...),
		blocks: append([]*linalg.Matrix{}, blocks...),
		b:      append([]float64{}, b...),
		noise:  noise,
	}
}

// Keys returns the ordered tuple of variables this row touches.
func (j *Jacobian) Keys() []graph.VariableKey { return j.keys }

// Dim returns the row count of this factor.
func (j *Jacobian) Dim() int { return len(j.b) }

// Active always reports true: equality rows are never removed from
// their graph (unlike Inequality, whose active flag is load-bearing).
func (j *Jacobian) Active() bool { return true }

// A returns the coefficient block for the variable at slot.
func (j *Jacobian) A(slot int) *linalg.Matrix { return j.blocks[slot] }

// B returns the right-hand side.
func (j *Jacobian) B() []float64 { return j.b }

// Noise returns the row's noise model.
func (j *Jacobian) Noise() NoiseModel { return j.noise }

// Residual evaluates Ai*x - bi at the given point.
func (j *Jacobian) Residual(x *graph.VariableMap) []float64 {
	out := make([]float64, j.Dim())
	for slot, k := range j.keys {
		xk, ok := x.Get(k)
		if !ok {
			panic(&graph.UnknownKeyError{Key: k})
		}
		row := linalg.MatVec(j.blocks[slot], xk)
		for r := range out {
			out[r] += row[r]
		}
	}
	for r := range out {
		out[r] -= j.b[r]
	}
	return out
}

// WithB returns a copy of j with its right-hand side replaced. Used by
// the solver to build the shifted "delta" equality subproblem for the
// current iterate (spec §4.8 step 1) without touching the original
// factor's blocks or keys.
func (j *Jacobian) WithB(b []float64) *Jacobian {
	cp := *j
	cp.b = append([]float64{}, b...)
	return &cp
}

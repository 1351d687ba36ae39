package factor

import (
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Inequality is a single-row Jacobian specialized for a*x <= b. It
// additionally carries the symbolic key of its Lagrange multiplier
// (dualKey) and an active flag recording whether it is currently
// enforced as an equality in the working set (spec §3's
// InequalityFactor). The active flag is the one piece of mutable state
// any factor carries, and it is toggled exclusively by the driver
// between elimination steps (spec §5's mutation discipline).
type Inequality struct {
	row     *Jacobian
	dualKey graph.VariableKey
	active  bool
}

// NewInequality builds an inactive a*x <= b row over keys with
// per-key coefficient blocks a, right-hand side b, and the symbolic key
// its multiplier will be assigned when active.
func NewInequality(keys []graph.VariableKey, a []*linalg.Matrix, b float64, dualKey graph.VariableKey) *Inequality {
	row := NewJacobian(keys, a, []float64{b}, Gaussian)
	return &Inequality{row: row, dualKey: dualKey}
}

// Keys returns the ordered tuple of variables this constraint touches.
func (f *Inequality) Keys() []graph.VariableKey { return f.row.Keys() }

// Dim always reports 1: an InequalityFactor is a single scalar row.
func (f *Inequality) Dim() int { return 1 }

// A returns the coefficient block for the variable at slot.
func (f *Inequality) A(slot int) *linalg.Matrix { return f.row.A(slot) }

// B returns the single-element right-hand side {b}.
func (f *Inequality) B() []float64 { return f.row.B() }

// Active reports whether this inequality is currently in the working
// set (enforced as an equality).
func (f *Inequality) Active() bool { return f.active }

// SetActive toggles the working-set membership of this inequality
// in place. It is the only mutation any factor supports.
func (f *Inequality) SetActive(active bool) { f.active = active }

// DualKey returns the symbolic identifier of this constraint's Lagrange
// multiplier.
func (f *Inequality) DualKey() graph.VariableKey { return f.dualKey }

// Residual evaluates a*x - b at the given point. A value <= 0 means x
// satisfies this constraint.
func (f *Inequality) Residual(x *graph.VariableMap) float64 {
	return f.row.Residual(x)[0]
}

// AsEquality returns this constraint's row as a hard-equality Jacobian
// factor (noise model Constrained), the form it takes once promoted
// into the working set's equality subproblem (spec §3(b)).
func (f *Inequality) AsEquality() *Jacobian {
	eq := *f.row
	eq.noise = Constrained
	return &eq
}

// Clone returns a value copy of f, including its active flag, sharing
// the immutable coefficient blocks with the original. Used when the
// solver needs to fork a working set (e.g. to produce state' without
// mutating the state it was derived from).
func (f *Inequality) Clone() *Inequality {
	row := *f.row
	return &Inequality{row: &row, dualKey: f.dualKey, active: f.active}
}

// Package bench holds canonical worked QPs with known optimal points
// and multipliers, the way the teacher's own bench package held named
// objective functions with known optima (AllFuncs, Benchmark). Each
// Problem here, apart from the tie-break regression at the end of
// Problems, is one of spec §8's end-to-end scenarios: a small QP plus
// the x* and lambda* the solver is expected to land on.
package bench

import (
	"github.com/rwcarlsen/qpgraph/activeset"
	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Problem is one named QP fixture: the problem itself, a feasible
// starting point, and the expected optimum. WantDuals may be nil for
// problems with no active constraints at the optimum.
type Problem struct {
	Name      string
	QP        *activeset.QP
	X0        *graph.VariableMap
	WantX     map[graph.VariableKey]float64
	WantDuals map[graph.VariableKey]float64
}

func hessian1D(g, b float64) *graph.Graph[*factor.Hessian] {
	keys := []graph.VariableKey{"x"}
	h := factor.NewHessian(keys, []int{1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{g}))
	h.SetGrad(0, []float64{b})
	out := graph.New[*factor.Hessian]()
	out.Add(h)
	return out
}

func point1D(v float64) *graph.VariableMap {
	m := graph.NewVariableMap()
	m.Insert("x", []float64{v})
	return m
}

// unconstrained builds min 1/2*x^2 - 2x (so grad = x - 2, optimum at
// x=2), with no constraints at all: spec §8 scenario 1.
func unconstrained() Problem {
	cost := hessian1D(1, 2)
	qp := activeset.NewQP(cost, graph.New[*factor.Jacobian](), graph.New[*factor.Inequality]())
	return Problem{
		Name:  "unconstrained_1d",
		QP:    qp,
		X0:    point1D(0),
		WantX: map[graph.VariableKey]float64{"x": 2},
	}
}

// equalityOnly builds min 1/2*(x1^2+x2^2) s.t. x1+x2=1, starting away
// from the constraint line: spec §8 scenario 2. The unconstrained
// optimum (0,0) is infeasible, so the single active equality pins the
// solver directly to its minimum-norm feasible point (0.5, 0.5).
func equalityOnly() Problem {
	keys := []graph.VariableKey{"x1", "x2"}
	h := factor.NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetBlock(1, 1, linalg.New(1, 1, []float64{1}))
	h.SetBlock(0, 1, linalg.Zeros(1, 1))
	cost := graph.New[*factor.Hessian]()
	cost.Add(h)

	row := factor.NewJacobian(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.New(1, 1, []float64{1}),
	}, []float64{1}, factor.Constrained)
	eq := graph.New[*factor.Jacobian]()
	eq.Add(row)

	qp := activeset.NewQP(cost, eq, graph.New[*factor.Inequality]())
	x0 := graph.NewVariableMap()
	x0.Insert("x1", []float64{1})
	x0.Insert("x2", []float64{0})

	return Problem{
		Name:  "equality_only",
		QP:    qp,
		X0:    x0,
		WantX: map[graph.VariableKey]float64{"x1": 0.5, "x2": 0.5},
	}
}

// inactiveInequality builds min 1/2*x^2 - 2x s.t. x<=5: the bound
// never binds at the unconstrained optimum x=2, so it must end the
// solve inactive with a zero multiplier: spec §8 scenario 3.
func inactiveInequality() Problem {
	cost := hessian1D(1, 2)
	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality([]graph.VariableKey{"x"}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 5, "lam"))
	qp := activeset.NewQP(cost, graph.New[*factor.Jacobian](), ineq)
	return Problem{
		Name:      "inactive_inequality",
		QP:        qp,
		X0:        point1D(0),
		WantX:     map[graph.VariableKey]float64{"x": 2},
		WantDuals: map[graph.VariableKey]float64{"lam": 0},
	}
}

// activeInequality builds min 1/2*x^2 - 3x s.t. x<=2: the unconstrained
// optimum x=3 is infeasible, so the bound binds and the multiplier is
// the unconstrained gradient magnitude at the boundary: spec §8
// scenario 4.
func activeInequality() Problem {
	cost := hessian1D(1, 3)
	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality([]graph.VariableKey{"x"}, []*linalg.Matrix{linalg.New(1, 1, []float64{1})}, 2, "lam"))
	qp := activeset.NewQP(cost, graph.New[*factor.Jacobian](), ineq)
	return Problem{
		Name:      "active_inequality",
		QP:        qp,
		X0:        point1D(0),
		WantX:     map[graph.VariableKey]float64{"x": 2},
		WantDuals: map[graph.VariableKey]float64{"lam": -1},
	}
}

// infeasibleStart builds the same box from activeInequality but starts
// strictly on the wrong side of it: spec §8 scenario 6. Optimize is
// expected to return InfeasibleInitialError rather than a point.
func infeasibleStart() Problem {
	p := activeInequality()
	p.Name = "infeasible_start"
	p.X0 = point1D(5)
	return p
}

// leavingConstraint builds min 1/2*((x-2)^2+(y-2)^2) s.t. x+y<=5 and
// x<=1, starting at the corner where both happen to be active at once
// (1,4). Spec §8 scenario 5: the unconstrained optimum (2,2) already
// satisfies x+y<=5, so that bound is never really needed; the solver
// is expected to discover its multiplier wants to push positive at the
// starting corner, release it, then descend along x=1 down to the
// true optimum (1,2), where only x<=1 remains active.
func leavingConstraint() Problem {
	keys := []graph.VariableKey{"x", "y"}
	h := factor.NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetBlock(1, 1, linalg.New(1, 1, []float64{1}))
	h.SetBlock(0, 1, linalg.Zeros(1, 1))
	h.SetGrad(0, []float64{2})
	h.SetGrad(1, []float64{2})
	cost := graph.New[*factor.Hessian]()
	cost.Add(h)

	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.New(1, 1, []float64{1}),
	}, 5, "lam_sum"))
	ineq.Add(factor.NewInequality(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.Zeros(1, 1),
	}, 1, "lam_x"))

	qp := activeset.NewQP(cost, graph.New[*factor.Jacobian](), ineq)
	x0 := graph.NewVariableMap()
	x0.Insert("x", []float64{1})
	x0.Insert("y", []float64{4})

	return Problem{
		Name:      "leaving_constraint",
		QP:        qp,
		X0:        x0,
		WantX:     map[graph.VariableKey]float64{"x": 1, "y": 2},
		WantDuals: map[graph.VariableKey]float64{"lam_x": -1, "lam_sum": 0},
	}
}

// tieBreakCorner builds min 1/2*((x-3)^2+(y-3)^2) s.t. x<=1, y<=1,
// x+y<=10, starting at the origin. The first step's direction p=(3,3)
// hits x<=1 and y<=1 at exactly the same alpha (1/3), an intentional
// tie meant to exercise computeStepSize's lowest-index tie-break (spec
// §4.6's "Ordering and tie-breaking"): a solver that breaks ties
// inconsistently would cycle instead of converging to the box corner
// (1,1), where both bounds are genuinely active with negative
// multipliers.
func tieBreakCorner() Problem {
	keys := []graph.VariableKey{"x", "y"}
	h := factor.NewHessian(keys, []int{1, 1})
	h.SetBlock(0, 0, linalg.New(1, 1, []float64{1}))
	h.SetBlock(1, 1, linalg.New(1, 1, []float64{1}))
	h.SetBlock(0, 1, linalg.Zeros(1, 1))
	h.SetGrad(0, []float64{3})
	h.SetGrad(1, []float64{3})
	cost := graph.New[*factor.Hessian]()
	cost.Add(h)

	ineq := graph.New[*factor.Inequality]()
	ineq.Add(factor.NewInequality(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.Zeros(1, 1),
	}, 1, "lam_x"))
	ineq.Add(factor.NewInequality(keys, []*linalg.Matrix{
		linalg.Zeros(1, 1),
		linalg.New(1, 1, []float64{1}),
	}, 1, "lam_y"))
	ineq.Add(factor.NewInequality(keys, []*linalg.Matrix{
		linalg.New(1, 1, []float64{1}),
		linalg.New(1, 1, []float64{1}),
	}, 10, "lam_sum"))

	qp := activeset.NewQP(cost, graph.New[*factor.Jacobian](), ineq)
	x0 := graph.NewVariableMap()
	x0.Insert("x", []float64{0})
	x0.Insert("y", []float64{0})

	return Problem{
		Name:      "tie_break_corner",
		QP:        qp,
		X0:        x0,
		WantX:     map[graph.VariableKey]float64{"x": 1, "y": 1},
		WantDuals: map[graph.VariableKey]float64{"lam_x": -2, "lam_y": -2, "lam_sum": 0},
	}
}

// Problems is the full registry of named fixtures, in the order spec
// §8 lists its scenarios, with the tie-break regression appended last.
var Problems = []Problem{
	unconstrained(),
	equalityOnly(),
	inactiveInequality(),
	activeInequality(),
	leavingConstraint(),
	infeasibleStart(),
	tieBreakCorner(),
}

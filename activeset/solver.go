package activeset

import (
	"github.com/rwcarlsen/qpgraph/dual"
	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/gaussian"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/step"
)

// Solver drives one QP toward a KKT point via repeated calls to
// iterate. It is safe to call Optimize repeatedly with different
// starting points (the QP is borrowed immutably), and safe to use from
// independent goroutines on independent Solvers, per spec §5.
type Solver struct {
	qp  *QP
	cfg config
}

// New builds a Solver over qp, playing the role of
// pattern.NewIterator/swarm.NewIterator.
func New(qp *QP, opts ...Option) *Solver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Solver{qp: qp, cfg: cfg}
}

// Optimize runs the active-set loop from x0 (and, if warm-starting,
// duals0) until convergence or max_iters is exceeded, returning the
// optimal primal point and its associated multipliers (spec §4.8's
// outer driver, §6's library API).
func (s *Solver) Optimize(x0, duals0 *graph.VariableMap) (*graph.VariableMap, *graph.VariableMap, error) {
	if duals0 == nil {
		duals0 = graph.NewVariableMap()
	}
	ws, err := identifyActiveConstraints(s.qp.Inequalities, x0, duals0, s.cfg.warmStart, s.cfg.feasTol)
	if err != nil {
		return nil, nil, err
	}

	state := &QPState{X: x0, Duals: duals0, WorkingSet: ws, Converged: false, Iter: 0}
	for state.Iter < s.cfg.maxIters {
		next, err := s.iterate(state)
		if err != nil {
			return nil, nil, err
		}
		state = next
		if state.Converged {
			return state.X, state.Duals, nil
		}
	}
	return nil, nil, &MaxIterationsExceededError{MaxIters: s.cfg.maxIters, Last: state}
}

// identifyActiveConstraints implements spec §4.8's initialization: it
// classifies every inequality's residual at x0 as violated, boundary,
// or interior, raising InfeasibleInitialError on the first kind and
// activating the second. Strictly-interior constraints only activate
// under warm_start when duals0 carries a strictly positive multiplier
// for them (design note (c)'s tightened warm-start rule).
func identifyActiveConstraints(ineq *graph.Graph[*factor.Inequality], x0, duals0 *graph.VariableMap, warmStart bool, feasTol float64) (*WorkingSet, error) {
	ws := ineq.Clone()
	var violations []graph.VariableKey
	for i, f := range ws.Factors() {
		r := f.Residual(x0)
		switch {
		case r > feasTol:
			violations = append(violations, f.DualKey())
		case r >= -feasTol:
			ws.Set(i, activated(f, true))
		default:
			if warmStart {
				if v, ok := duals0.Get(f.DualKey()); ok && v[0] > 0 {
					ws.Set(i, activated(f, true))
				}
			}
		}
	}
	if len(violations) > 0 {
		return nil, &InfeasibleInitialError{DualKeys: violations}
	}
	return ws, nil
}

// iterate implements one step of spec §4.8's iteration engine:
// solve the equality subproblem for a primal delta p; if p is
// negligible, the working set is either optimal or needs a constraint
// released; otherwise take a step of size alpha along p, activating
// whichever inequality blocks it first.
func (s *Solver) iterate(state *QPState) (*QPState, error) {
	shiftedCost := shiftCost(s.qp.Cost, state.X)
	equalities := s.equalitySubproblem(state)

	p, err := gaussian.Solve(shiftedCost.Factors(), equalities)
	if err != nil {
		return nil, err
	}

	if p.NormInf() <= s.cfg.primalTol {
		return s.releaseOrConverge(state)
	}
	return s.descendAlong(state, p), nil
}

// equalitySubproblem builds the shifted "delta" equality rows (spec
// §4.8 step 1): the QP's own equalities plus every currently active
// inequality, each rewritten in terms of the step p = y - x_k instead
// of an absolute point.
func (s *Solver) equalitySubproblem(state *QPState) []*factor.Jacobian {
	var rows []*factor.Jacobian
	for _, e := range s.qp.Equalities.Factors() {
		r := e.Residual(state.X)
		shifted := make([]float64, len(r))
		for i, ri := range r {
			shifted[i] = -ri
		}
		rows = append(rows, e.WithB(shifted))
	}
	for _, f := range state.WorkingSet.Factors() {
		if !f.Active() {
			continue
		}
		row := f.AsEquality()
		rows = append(rows, row.WithB([]float64{-f.Residual(state.X)}))
	}
	return rows
}

// releaseOrConverge handles spec §4.8 step 2: x_k is stationary for the
// current working set, so solve the dual graph and either declare
// convergence (no constraint wants to leave) or release the
// worst-offending one and continue.
func (s *Solver) releaseOrConverge(state *QPState) (*QPState, error) {
	dualGraph := dual.Build(s.qp.Cost, s.qp.Equalities, s.qp.EqualityDuals, state.WorkingSet, state.X)
	duals, err := gaussian.Solve(nil, dualGraph.Factors())
	if err != nil {
		return nil, err
	}

	leave := step.LeavingSelector{DualTol: s.cfg.dualTol}.Select(state.WorkingSet, duals)
	if !leave.HasIdx {
		next := &QPState{X: state.X, Duals: duals, WorkingSet: state.WorkingSet, Converged: true, Iter: state.Iter + 1}
		s.record(next, 0)
		s.cfg.logger.Converged(next.Iter)
		return next, nil
	}

	leftKey := state.WorkingSet.At(leave.Index).DualKey()
	lambda := duals.MustGet(leftKey)[0]
	s.cfg.logger.Leaving(state.Iter, leftKey, lambda, true)
	s.cfg.logger.WorkingSetChange(state.Iter, leftKey, false)

	nextWS := state.WorkingSet.Clone()
	nextWS.Set(leave.Index, activated(state.WorkingSet.At(leave.Index), false))

	next := &QPState{X: state.X, Duals: duals.Without(leftKey), WorkingSet: nextWS, Converged: false, Iter: state.Iter + 1}
	s.record(next, 0)
	return next, nil
}

// descendAlong handles spec §4.8 step 3: p is a genuine descent
// direction, so step along it by whatever alpha the inactive
// inequalities allow, activating the blocking one (if any).
func (s *Solver) descendAlong(state *QPState, p *graph.VariableMap) *QPState {
	blocking := step.Engine{}.Step(state.WorkingSet, state.X, p)
	nextX := state.X.ScaledAdd(blocking.Alpha, p)

	nextWS := state.WorkingSet
	if blocking.HasIdx {
		nextWS = state.WorkingSet.Clone()
		nextWS.Set(blocking.Index, activated(state.WorkingSet.At(blocking.Index), true))
		s.cfg.logger.WorkingSetChange(state.Iter, state.WorkingSet.At(blocking.Index).DualKey(), true)
	}

	var blockingKey graph.VariableKey
	if blocking.HasIdx {
		blockingKey = state.WorkingSet.At(blocking.Index).DualKey()
	}
	s.cfg.logger.Step(state.Iter, blocking.Alpha, blockingKey, blocking.HasIdx, p.NormInf())

	next := &QPState{X: nextX, Duals: state.Duals, WorkingSet: nextWS, Converged: false, Iter: state.Iter + 1}
	s.record(next, blocking.Alpha)
	return next
}

// shiftCost rewrites every Hessian cost factor in terms of the step p =
// y - x, per Hessian.Shifted.
func shiftCost(cost *graph.Graph[*factor.Hessian], x *graph.VariableMap) *graph.Graph[*factor.Hessian] {
	out := graph.New[*factor.Hessian]()
	for _, h := range cost.Factors() {
		out.Add(h.Shifted(x))
	}
	return out
}

// activated returns a clone of f with its active flag set, leaving f
// itself untouched. Every working-set mutation goes through this, since
// factors may be shared with the original QP's Inequalities graph and
// must never be mutated in place.
func activated(f *factor.Inequality, active bool) *factor.Inequality {
	cp := f.Clone()
	cp.SetActive(active)
	return cp
}

// record appends the current state to the configured trace sink, if
// any. A trace write failure is not a solve failure, but it does
// indicate the caller's database is in a bad state, so it panics the
// same way pattern.Iterator.updateDb's panicif(err) does.
func (s *Solver) record(state *QPState, alpha float64) {
	if s.cfg.sink == nil {
		return
	}
	if err := s.cfg.sink.Record(state.Iter, alpha, state.Converged, state.X, state.Duals, state.WorkingSet); err != nil {
		panic(err)
	}
}

package activeset

import (
	"fmt"

	"github.com/rwcarlsen/qpgraph/graph"
)

// InfeasibleInitialError reports that the caller's starting point
// violates one or more inequalities by more than feas_tol (spec §7).
// There is no phase-1 LP fallback; this is fatal for the call.
type InfeasibleInitialError struct {
	DualKeys []graph.VariableKey
}

func (e *InfeasibleInitialError) Error() string {
	return fmt.Sprintf("qpgraph: infeasible initial point: violates %v", e.DualKeys)
}

// MaxIterationsExceededError reports that optimize ran max_iters
// iterations without converging. Last carries the final QPState for
// diagnosis, per spec §7.
type MaxIterationsExceededError struct {
	MaxIters int
	Last     *QPState
}

func (e *MaxIterationsExceededError) Error() string {
	return fmt.Sprintf("qpgraph: exceeded %d iterations without converging", e.MaxIters)
}

// Package trace provides optional, opt-in instrumentation for the
// active-set driver: structured per-iteration diagnostics via
// rs/zerolog, and a caller-owned SQL iteration log via database/sql.
// Both are nil/disabled by default, the same way the teacher's
// pattern.Iterator.Db and swarm.Iterator.Db are nil unless the caller
// passes pattern.DB(db)/swarm.DB(db) — here activeset.WithLogger and
// activeset.WithTrace play that role.
package trace

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/rwcarlsen/qpgraph/graph"
)

// Logger wraps a zerolog.Logger for the iteration diagnostics named in
// spec §5's resource model: working-set changes, step sizes, and
// blocking/leaving constraint indices. A zero-value Logger is disabled
// and every method is a no-op, so callers who never configure one pay
// nothing.
type Logger struct {
	zl      zerolog.Logger
	enabled bool
}

// NewLogger returns a Logger writing structured JSON lines to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger(), enabled: true}
}

// Step logs one completed iteration: the step size taken (0 for a pure
// working-set change), whether a constraint blocked the step, and the
// resulting primal infinity norm of the step.
func (l *Logger) Step(iter int, alpha float64, blockingKey graph.VariableKey, hasBlocking bool, stepNorm float64) {
	if l == nil || !l.enabled {
		return
	}
	ev := l.zl.Info().Int("iter", iter).Float64("alpha", alpha).Float64("step_norm", stepNorm)
	if hasBlocking {
		ev = ev.Str("blocking_dual_key", string(blockingKey))
	}
	ev.Msg("qp step")
}

// WorkingSetChange logs an activation or deactivation of one
// inequality's dual key.
func (l *Logger) WorkingSetChange(iter int, dualKey graph.VariableKey, active bool) {
	if l == nil || !l.enabled {
		return
	}
	l.zl.Info().Int("iter", iter).Str("dual_key", string(dualKey)).Bool("active", active).Msg("working set change")
}

// Leaving logs which constraint (if any) left the working set, with
// its multiplier value.
func (l *Logger) Leaving(iter int, dualKey graph.VariableKey, lambda float64, left bool) {
	if l == nil || !l.enabled {
		return
	}
	ev := l.zl.Info().Int("iter", iter).Float64("lambda", lambda).Bool("left", left)
	if left {
		ev = ev.Str("dual_key", string(dualKey))
	}
	ev.Msg("leaving constraint check")
}

// Converged logs the terminal iteration.
func (l *Logger) Converged(iter int) {
	if l == nil || !l.enabled {
		return
	}
	l.zl.Info().Int("iter", iter).Msg("converged")
}

package activeset

import (
	"database/sql"

	"github.com/rwcarlsen/qpgraph/trace"
)

type config struct {
	maxIters  int
	primalTol float64
	dualTol   float64
	feasTol   float64
	warmStart bool
	logger    *trace.Logger
	sink      *trace.Sink
}

func defaultConfig() config {
	return config{
		maxIters:  100,
		primalTol: 1e-7,
		dualTol:   1e-9,
		feasTol:   1e-7,
		warmStart: true,
	}
}

// Option configures a Solver, mirroring the teacher's
// pattern.Option/swarm.Option functional-options pattern
// (pattern.NewIterator(e, start, opts...)).
type Option func(*config)

// WithMaxIters caps the number of outer iterations; exceeding it raises
// MaxIterationsExceededError.
func WithMaxIters(n int) Option {
	return func(c *config) { c.maxIters = n }
}

// WithPrimalTol sets the threshold on ||p||_inf used to declare inner
// stationarity.
func WithPrimalTol(tol float64) Option {
	return func(c *config) { c.primalTol = tol }
}

// WithDualTol sets the threshold below which a multiplier is treated as
// zero by the leaving-constraint test.
func WithDualTol(tol float64) Option {
	return func(c *config) { c.dualTol = tol }
}

// WithFeasTol sets the tolerance used to classify an initial residual
// as boundary, interior, or infeasible.
func WithFeasTol(tol float64) Option {
	return func(c *config) { c.feasTol = tol }
}

// WithWarmStart controls whether duals0 pre-activates strictly-interior
// constraints carrying a positive multiplier from a prior solve.
func WithWarmStart(warm bool) Option {
	return func(c *config) { c.warmStart = warm }
}

// WithLogger attaches structured per-iteration diagnostics. A nil
// logger (the default) disables logging entirely.
func WithLogger(l *trace.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTrace attaches a caller-owned SQL iteration log, mirroring
// pattern.DB(db)/swarm.DB(db). The tables are created if absent; db's
// lifetime remains the caller's responsibility.
func WithTrace(db *sql.DB) Option {
	return func(c *config) {
		sink, err := trace.NewSink(db)
		if err != nil {
			panic(err)
		}
		c.sink = sink
	}
}

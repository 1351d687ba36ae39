// Package factor defines the three factor variants a QP's graphs are
// built from: Hessian (quadratic cost terms), Jacobian (linear equality
// rows), and Inequality (linear <= rows, promotable to equality). They
// mirror GTSAM's HessianFactor/JacobianFactor/LinearInequality, kept as
// a sealed set of concrete types plus small capability interfaces
// rather than an open class hierarchy, per spec design note 9.
package factor

import (
	"fmt"

	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// NoiseModel tags a Jacobian row as a soft least-squares residual
// ("gaussian") or a hard equality that must be satisfied exactly
// ("constrained"). QP equalities and promoted active inequalities are
// always Constrained; Gaussian rows exist for GaussianSolver's general
// contract (spec §4.4) even though this module's own factor graphs
// never contain one: an Inequality keeps its row as Gaussian
// internally, and AsEquality turns it Constrained before it is solved.
type NoiseModel int

const (
	Gaussian NoiseModel = iota
	Constrained
)

func (n NoiseModel) String() string {
	if n == Constrained {
		return "constrained"
	}
	return "gaussian"
}

func checkKeyDims(keys []graph.VariableKey, dims []int) {
	if len(keys) != len(dims) {
		panic(fmt.Sprintf("factor: %d keys but %d dims", len(keys), len(dims)))
	}
}

func checkBlockDims(name string, keys []graph.VariableKey, dims []int, blocks []*linalg.Matrix, rows int) {
	if len(blocks) != len(keys) {
		panic(fmt.Sprintf("factor: %s has %d keys but %d coefficient blocks", name, len(keys), len(blocks)))
	}
	for i, b := range blocks {
		r, c := b.Dims()
		if r != rows {
			panic(&graph.DimensionMismatchError{Key: keys[i], Expected: rows, Got: r})
		}
		if c != dims[i] {
			panic(&graph.DimensionMismatchError{Key: keys[i], Expected: dims[i], Got: c})
		}
	}
}

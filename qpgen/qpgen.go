// Package qpgen generates small random QPs, together with a
// best-effort feasible starting point, for the property-based tests in
// spec §8. It mirrors pop.New/pop.NewConstr's rejection-sampling
// approach: sample points in a box, keep the ones that satisfy every
// linear constraint, and fall back to the least-bad infeasible
// candidate (ranked by an llrb tree) if a fully feasible one is slow
// to turn up.
package qpgen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/petar/GoLLRB/llrb"

	"github.com/rwcarlsen/qpgraph/activeset"
	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

// Rng is the minimal random source qpgen needs, the same shape as
// pop.Rng, so a Mersenne-Twister source can be swapped in for
// reproducibility (see NewMersenneRand).
type Rng interface {
	Float64() float64
}

// Config controls the shape of a generated QP.
type Config struct {
	NVars       int
	NInequality int
	Box         float64 // half-width of the sampling box for variables
	MaxIter     int     // rejection-sampling attempts before falling back to the ranked candidate
	Rand        Rng
}

// DefaultConfig returns a Config with a fixed-seed math/rand source,
// matching pop.Rand's own default (rand.New(rand.NewSource(1))).
func DefaultConfig(nVars, nIneq int) Config {
	return Config{
		NVars:       nVars,
		NInequality: nIneq,
		Box:         5,
		MaxIter:     2000,
		Rand:        rand.New(rand.NewSource(1)),
	}
}

// Problem is a generated QP together with a starting point and the
// ordered keys assigned to its variables.
type Problem struct {
	QP   *activeset.QP
	X0   *graph.VariableMap
	Keys []graph.VariableKey
}

// Generate builds a random QP with an SPD Hessian (via M'M + 0.1*I,
// the standard way to guarantee positive-definiteness from an
// arbitrary random matrix), cfg.NInequality random half-space
// constraints, and a starting point from feasiblePoint.
func Generate(cfg Config) *Problem {
	n := cfg.NVars
	keys := make([]graph.VariableKey, n)
	for i := range keys {
		keys[i] = graph.VariableKey(fmt.Sprintf("v%d", i))
	}

	M := linalg.Zeros(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			M.Set(i, j, cfg.Rand.Float64()*2-1)
		}
	}
	G := linalg.Add(linalg.Mul(linalg.Transpose(M), M), linalg.Scale(linalg.Identity(n), 0.1))
	g := make([]float64, n)
	for i := range g {
		g[i] = cfg.Rand.Float64()*4 - 2
	}

	dims := make([]int, n)
	for i := range dims {
		dims[i] = 1
	}
	h := factor.NewHessian(keys, dims)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			h.SetBlock(i, j, linalg.New(1, 1, []float64{G.At(i, j)}))
		}
		h.SetGrad(i, []float64{g[i]})
	}
	costGraph := graph.New[*factor.Hessian]()
	costGraph.Add(h)

	ineqGraph := graph.New[*factor.Inequality]()
	rows := make([][]float64, 0, cfg.NInequality)
	rhs := make([]float64, 0, cfg.NInequality)
	for k := 0; k < cfg.NInequality; k++ {
		row := make([]float64, n)
		norm := 0.0
		for i := range row {
			row[i] = cfg.Rand.Float64()*2 - 1
			norm += row[i] * row[i]
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		for i := range row {
			row[i] /= norm
		}
		bound := cfg.Box * (0.5 + 0.5*cfg.Rand.Float64())

		blocks := make([]*linalg.Matrix, n)
		for i := range blocks {
			blocks[i] = linalg.New(1, 1, []float64{row[i]})
		}
		ineqGraph.Add(factor.NewInequality(keys, blocks, bound, graph.VariableKey(fmt.Sprintf("lam%d", k))))
		rows = append(rows, row)
		rhs = append(rhs, bound)
	}

	x0 := feasiblePoint(cfg, keys, rows, rhs)
	qp := activeset.NewQP(costGraph, graph.New[*factor.Jacobian](), ineqGraph)
	return &Problem{QP: qp, X0: x0, Keys: keys}
}

// candidate ranks a sampled point by its total constraint violation,
// the llrb.Item grounded on pop.NewConstr's item/howbad type.
type candidate struct {
	pos    []float64
	howbad float64
}

func (c candidate) Less(than llrb.Item) bool {
	return c.howbad < than.(candidate).howbad
}

// feasiblePoint samples points uniformly in [-Box, Box]^n, returning
// the first one that satisfies every row*pos <= bound. If maxiter
// samples all violate something, it falls back to the least-bad
// candidate seen, tracked in an llrb tree the way pop.NewConstr keeps
// only the n least-bad infeasible points while searching.
func feasiblePoint(cfg Config, keys []graph.VariableKey, rows [][]float64, bounds []float64) *graph.VariableMap {
	least := llrb.New()
	for iter := 0; iter < cfg.MaxIter; iter++ {
		pos := make([]float64, len(keys))
		for i := range pos {
			pos[i] = (cfg.Rand.Float64()*2 - 1) * cfg.Box
		}

		howbad := 0.0
		for k, row := range rows {
			dot := 0.0
			for i, a := range row {
				dot += a * pos[i]
			}
			if diff := dot - bounds[k]; diff > 0 {
				howbad += diff
			}
		}
		if howbad == 0 {
			return toVariableMap(keys, pos)
		}
		least.InsertNoReplace(candidate{pos: pos, howbad: howbad})
		for least.Len() > 1 {
			least.DeleteMax()
		}
	}
	if least.Len() == 0 {
		return toVariableMap(keys, make([]float64, len(keys)))
	}
	best := least.DeleteMin().(candidate)
	return toVariableMap(keys, best.pos)
}

func toVariableMap(keys []graph.VariableKey, pos []float64) *graph.VariableMap {
	m := graph.NewVariableMap()
	for i, k := range keys {
		m.Insert(k, []float64{pos[i]})
	}
	return m
}

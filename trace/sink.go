package trace

import (
	"database/sql"
	"fmt"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
)

// Table names for the caller-owned iteration log, named after the
// teacher's TblPolls/TblInfo (pattern.go) and TblParticles/TblBest
// (swarm.go) constants: one table per kind of per-iteration record.
const (
	TblIterations = "qpiterations"
	TblPrimal     = "qpprimal"
	TblDual       = "qpdual"
	TblWorkingSet = "qpworkingset"
)

// Sink records QP iteration state into a caller-owned database,
// mirroring pattern.Iterator.Db/swarm.Iterator.Db: nil by default, and
// entirely optional. Unlike the teacher's fixed-dimension optim.Point
// (one column per coordinate), VariableMap entries span a variable
// number of keys and per-key dimensions, so each variable's value is
// recorded as normalized (iter, key, slot, value) rows rather than
// dense columns.
type Sink struct {
	db *sql.DB
}

// NewSink wraps db, creating the iteration-log tables if they don't
// already exist. The caller owns db's lifetime; Sink never closes it.
func NewSink(db *sql.DB) (*Sink, error) {
	s := &Sink{db: db}
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS " + TblIterations + " (iter INTEGER, converged INTEGER, alpha REAL);",
		"CREATE TABLE IF NOT EXISTS " + TblPrimal + " (iter INTEGER, key TEXT, slot INTEGER, value REAL);",
		"CREATE TABLE IF NOT EXISTS " + TblDual + " (iter INTEGER, key TEXT, slot INTEGER, value REAL);",
		"CREATE TABLE IF NOT EXISTS " + TblWorkingSet + " (iter INTEGER, key TEXT, active INTEGER);",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("trace: creating iteration-log tables: %w", err)
		}
	}
	return s, nil
}

// Record appends one iteration's state: the primal and dual maps, and
// the active flag of every inequality in ws. alpha is the step size
// taken to reach x this iteration (0 for a pure working-set change).
func (s *Sink) Record(iter int, alpha float64, converged bool, x, duals *graph.VariableMap, ws *graph.Graph[*factor.Inequality]) error {
	if s == nil || s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	convInt := 0
	if converged {
		convInt = 1
	}
	if _, err := tx.Exec("INSERT INTO "+TblIterations+" (iter,converged,alpha) VALUES (?,?,?);", iter, convInt, alpha); err != nil {
		tx.Rollback()
		return err
	}

	if err := insertVarMap(tx, TblPrimal, iter, x); err != nil {
		tx.Rollback()
		return err
	}
	if err := insertVarMap(tx, TblDual, iter, duals); err != nil {
		tx.Rollback()
		return err
	}

	for _, f := range ws.Factors() {
		active := 0
		if f.Active() {
			active = 1
		}
		if _, err := tx.Exec("INSERT INTO "+TblWorkingSet+" (iter,key,active) VALUES (?,?,?);", iter, string(f.DualKey()), active); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func insertVarMap(tx *sql.Tx, table string, iter int, m *graph.VariableMap) error {
	if m == nil {
		return nil
	}
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		for slot, val := range v {
			if _, err := tx.Exec("INSERT INTO "+table+" (iter,key,slot,value) VALUES (?,?,?,?);", iter, string(k), slot, val); err != nil {
				return err
			}
		}
	}
	return nil
}

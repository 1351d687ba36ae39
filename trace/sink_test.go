package trace

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rwcarlsen/qpgraph/factor"
	"github.com/rwcarlsen/qpgraph/graph"
	"github.com/rwcarlsen/qpgraph/linalg"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewSinkCreatesTables(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewSink(db); err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	for _, tbl := range []string{TblIterations, TblPrimal, TblDual, TblWorkingSet} {
		var n int
		if err := db.QueryRow("SELECT count(*) FROM " + tbl).Scan(&n); err != nil {
			t.Fatalf("table %s not created: %v", tbl, err)
		}
	}
}

func TestRecordInsertsOneRowPerKey(t *testing.T) {
	db := openTestDB(t)
	sink, err := NewSink(db)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}

	x := graph.NewVariableMap()
	x.Insert("x", []float64{1, 2})
	duals := graph.NewVariableMap()
	duals.Insert("lam", []float64{-1})

	ws := graph.New[*factor.Inequality]()
	f := factor.NewInequality([]graph.VariableKey{"x"}, []*linalg.Matrix{linalg.New(1, 2, []float64{1, 0})}, 5, "lam")
	f.SetActive(true)
	ws.Add(f)

	if err := sink.Record(0, 0.5, false, x, duals, ws); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT count(*) FROM " + TblPrimal).Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 primal rows (one per slot), got %d", n)
	}

	var active int
	if err := db.QueryRow("SELECT active FROM "+TblWorkingSet+" WHERE key=?", "lam").Scan(&active); err != nil {
		t.Fatalf("query working set: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected active=1, got %d", active)
	}
}

func TestRecordOnNilSinkIsNoop(t *testing.T) {
	var sink *Sink
	err := sink.Record(0, 0, false, graph.NewVariableMap(), graph.NewVariableMap(), graph.New[*factor.Inequality]())
	if err != nil {
		t.Fatalf("expected nil-sink Record to be a no-op, got %v", err)
	}
}

func TestLoggerNilSafe(t *testing.T) {
	var l *Logger
	l.Step(0, 1, "k", true, 0.5)
	l.WorkingSetChange(0, "k", true)
	l.Leaving(0, "k", -1, false)
	l.Converged(0)
}

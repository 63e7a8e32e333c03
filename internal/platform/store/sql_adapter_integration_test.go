//go:build integration_pg
// +build integration_pg

package store

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"codespeak/internal/platform/logger"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

func newTestStoreLogger() logger.Logger {
	// quiet, deterministic logs
	return zerolog.New(io.Discard)
}

func TestSQLAdapter_Integration_AppendOrderedEntries(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s := &Store{Log: newTestStoreLogger()}
	cfg := Config{
		PG: PGConfig{
			URL:         dsn,
			MaxConns:    2,
			SlowQueryMs: 0,
			LogSQL:      true, // hit tracer wiring path
		},
	}
	txr, err := openPG(ctx, cfg, s)
	if err != nil {
		t.Fatalf("openPG failed: %v", err)
	}
	a, ok := txr.(*pgAdapter)
	if !ok {
		t.Fatalf("openPG did not return *pgAdapter, got %T", txr)
	}
	t.Cleanup(func() { _ = a.Close() })

	// a miniature transcript table: seq must come back monotonic
	if _, err := a.Exec(ctx, `
		CREATE TEMP TABLE entries_t (
			seq        BIGSERIAL PRIMARY KEY,
			lecture_id TEXT NOT NULL,
			text       TEXT NOT NULL
		)
	`); err != nil {
		t.Fatalf("create temp table: %v", err)
	}

	for i := 0; i < 3; i++ {
		var seq int64
		err := a.QueryRow(ctx,
			`INSERT INTO entries_t (lecture_id, text) VALUES ($1, $2) RETURNING seq`,
			"lec1", fmt.Sprintf("entry %d", i),
		).Scan(&seq)
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if seq != int64(i+1) {
			t.Fatalf("seq = %d want %d", seq, i+1)
		}
	}

	rs, err := a.Query(ctx, `SELECT seq, text FROM entries_t WHERE lecture_id=$1 ORDER BY seq`, "lec1")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rs.Close()

	cols := rs.Columns()
	if len(cols) != 2 || cols[0] != "seq" || cols[1] != "text" {
		t.Fatalf("columns mismatch: %#v", cols)
	}

	var seqs []int64
	for rs.Next() {
		var seq int64
		var text string
		if err := rs.Scan(&seq, &text); err != nil {
			t.Fatalf("rows scan: %v", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rs.Err(); err != nil {
		t.Fatalf("rows err: %v", err)
	}
	if len(seqs) != 3 || seqs[0] != 1 || seqs[2] != 3 {
		t.Fatalf("seqs mismatch: %v", seqs)
	}

	// double close is tolerated
	if err := a.Close(); err != nil {
		t.Fatalf("adapter close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("adapter close second: %v", err)
	}
}

func TestSQLAdapter_Integration_CascadeDeleteTx(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s := &Store{Log: newTestStoreLogger()}
	cfg := Config{PG: PGConfig{URL: dsn, MaxConns: 2}}
	txr, err := openPG(ctx, cfg, s)
	if err != nil {
		t.Fatalf("openPG failed: %v", err)
	}
	a := txr.(*pgAdapter)
	t.Cleanup(func() { _ = a.Close() })

	for _, ddl := range []string{
		`CREATE TEMP TABLE lec_t (id TEXT PRIMARY KEY)`,
		`CREATE TEMP TABLE ent_t (seq BIGSERIAL PRIMARY KEY, lecture_id TEXT NOT NULL)`,
	} {
		if _, err := a.Exec(ctx, ddl); err != nil {
			t.Fatalf("ddl: %v", err)
		}
	}
	if _, err := a.Exec(ctx, `INSERT INTO lec_t (id) VALUES ('lec1')`); err != nil {
		t.Fatalf("seed lecture: %v", err)
	}
	if _, err := a.Exec(ctx, `INSERT INTO ent_t (lecture_id) VALUES ('lec1'), ('lec1')`); err != nil {
		t.Fatalf("seed entries: %v", err)
	}

	// commit path: both deletes land together
	if err := a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `DELETE FROM ent_t WHERE lecture_id='lec1'`); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `DELETE FROM lec_t WHERE id='lec1'`)
		return err
	}); err != nil {
		t.Fatalf("tx commit: %v", err)
	}

	var count int
	if err := a.QueryRow(ctx, `SELECT COUNT(*) FROM ent_t`).Scan(&count); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("entries after cascade = %d want 0", count)
	}

	// rollback path: a failing step leaves everything in place
	if _, err := a.Exec(ctx, `INSERT INTO lec_t (id) VALUES ('lec2')`); err != nil {
		t.Fatalf("seed lec2: %v", err)
	}
	_ = a.Tx(ctx, func(q RowQuerier) error {
		if _, err := q.Exec(ctx, `DELETE FROM lec_t WHERE id='lec2'`); err != nil {
			return err
		}
		return errRollback
	})

	count = 0
	if err := a.QueryRow(ctx, `SELECT COUNT(*) FROM lec_t WHERE id='lec2'`).Scan(&count); err != nil {
		t.Fatalf("count lec2: %v", err)
	}
	if count != 1 {
		t.Fatalf("rollback failed count=%d want=1", count)
	}
}

var errRollback = &fakeErr{}

type fakeErr struct{}

func (*fakeErr) Error() string { return "rollback" }

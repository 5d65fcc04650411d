package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	models "docforge/internal/domain/models/docstore"
	"docforge/internal/domain/repositories"
	"docforge/internal/repository/postgres"
)

// stubTx satisfies pgx.Tx so it can ride the context into GetExecutor;
// only Query matters here.
type stubTx struct {
	query func(sql string, args []any) (pgx.Rows, error)
}

func (s *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.query(sql, args)
}

func (s *stubTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (s *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (s *stubTx) Begin(ctx context.Context) (pgx.Tx, error)                     { return s, nil }
func (s *stubTx) Commit(ctx context.Context) error                              { return nil }
func (s *stubTx) Rollback(ctx context.Context) error                            { return nil }
func (s *stubTx) Conn() *pgx.Conn                                               { return nil }
func (s *stubTx) LargeObjects() pgx.LargeObjects                                { return pgx.LargeObjects{} }
func (s *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults  { return nil }
func (s *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (s *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

type stubRows struct {
	rows [][]any
	idx  int
}

func (r *stubRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		}
	}
	return nil
}

func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) Close()                                       {}
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func newStubRepository(t *testing.T, tx *stubTx) (*Repository, context.Context) {
	t.Helper()
	repo := NewRepository(&postgres.RepositoryConfig{
		Tables: postgres.NewTableNames("test_"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil)
	return repo, repositories.SetTx(context.Background(), tx)
}

func TestSearchFallsBackToSubstringScan(t *testing.T) {
	var sawFullText, sawSubstring bool
	tx := &stubTx{query: func(sql string, args []any) (pgx.Rows, error) {
		if strings.Contains(sql, "to_tsquery") {
			sawFullText = true
			return nil, &pgconn.PgError{Code: "42883", Message: "function to_tsquery(unknown, unknown) does not exist"}
		}
		sawSubstring = true
		return &stubRows{rows: [][]any{
			{"node-1", "Welcome", "shared welcome text", 0.0},
			{"node-1", "Welcome", "shared welcome text", 0.0},
			{"node-2", "Notes", "more text here", 0.0},
		}}, nil
	}}
	repo, ctx := newStubRepository(t, tx)

	results, err := repo.SearchDocumentsByBody(ctx, models.SearchOptions{Term: "text"})
	if err != nil {
		t.Fatalf("SearchDocumentsByBody: %v", err)
	}

	if !sawFullText {
		t.Error("full-text query never attempted")
	}
	if !sawSubstring {
		t.Error("substring query never attempted")
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 deduplicated results, got %d", len(results))
	}
	if results[0].NodeID != "node-1" || results[1].NodeID != "node-2" {
		t.Errorf("unexpected node ids: %s, %s", results[0].NodeID, results[1].NodeID)
	}
	if results[0].Snippet == "" {
		t.Error("expected a snippet built from the body")
	}
}

func TestSearchFallbackErrorPropagates(t *testing.T) {
	broken := errors.New("connection reset")
	tx := &stubTx{query: func(sql string, args []any) (pgx.Rows, error) {
		return nil, broken
	}}
	repo, ctx := newStubRepository(t, tx)

	_, err := repo.SearchDocumentsByBody(ctx, models.SearchOptions{Term: "text"})
	if !errors.Is(err, broken) {
		t.Fatalf("expected the fallback's own error to surface, got %v", err)
	}
}

func TestSearchSubstringUsesEscapedPattern(t *testing.T) {
	var pattern string
	tx := &stubTx{query: func(sql string, args []any) (pgx.Rows, error) {
		if strings.Contains(sql, "to_tsquery") {
			return nil, &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
		}
		pattern = args[0].(string)
		return &stubRows{}, nil
	}}
	repo, ctx := newStubRepository(t, tx)

	if _, err := repo.SearchDocumentsByBody(ctx, models.SearchOptions{Term: "50%_off"}); err != nil {
		t.Fatalf("SearchDocumentsByBody: %v", err)
	}
	if pattern != `%50\%\_off%` {
		t.Errorf("substring pattern = %q, want %q", pattern, `%50\%\_off%`)
	}
}

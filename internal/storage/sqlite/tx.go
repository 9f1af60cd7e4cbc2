package sqlite

import (
	"context"
	"database/sql"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"github.com/julianstephens/easydiary/internal/migration"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// builder renders ? placeholders, which is what SQLite expects
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// reader holds every read query. Store reads run against the pool, Tx reads
// see the transaction's own uncommitted writes.
type reader struct {
	q dbtx
}

// Tx is one write transaction opened by Store.InTx
type Tx struct {
	reader

	tx      *sql.Tx
	touched map[string]struct{}
}

// touch records tables whose observers must re-run after commit
func (t *Tx) touch(tables ...string) {
	for _, name := range tables {
		t.touched[name] = struct{}{}
	}
}

// Touched returns the tables written so far, sorted
func (t *Tx) Touched() []string {
	out := make([]string, 0, len(t.touched))
	for name := range t.touched {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Dependent tables reached by ON DELETE CASCADE from each table
var cascades = map[string][]string{
	migration.TableDiaryEntries: {migration.TableLogItems, migration.TableTextEntries},
	migration.TableLogTypes:     {migration.TableLogItems, migration.TableTextEntries},
	migration.TableLogItems:     {migration.TableTextEntries},
}

// touchDelete records a delete from table and everything it cascades to
func (t *Tx) touchDelete(table string) {
	t.touch(table)
	t.touch(cascades[table]...)
}

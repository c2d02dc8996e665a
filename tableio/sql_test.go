package tableio

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/hgrecco/dataframing/record"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestSQL_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openSQLite(t)

	tbl := record.NewTable("name", "age", "score", "tags")
	require.NoError(t, tbl.AppendRow([]any{"Cleese, John", 84, 2.5, []string{"a"}}))
	require.NoError(t, tbl.AppendRow([]any{"Palin, Michael", nil, 1.0, nil}))

	require.NoError(t, WriteSQL(ctx, db, "people", tbl, SQLOptions{Dialect: DialectSQLite, Create: true}))

	got, err := ReadSQL(ctx, db, `SELECT name, age, score, tags FROM people ORDER BY name`)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "score", "tags"}, got.Columns())
	require.Equal(t, 2, got.Len())
	assert.Equal(t, record.Record{"name": "Cleese, John", "age": 84, "score": 2.5, "tags": `["a"]`}, got.Row(0))
	assert.Equal(t, record.Record{"name": "Palin, Michael", "age": nil, "score": 1.0, "tags": nil}, got.Row(1))

	got, err = ReadSQL(ctx, db, `SELECT name FROM people WHERE age > ?`, 80)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestSQL_WriteRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openSQLite(t)

	_, err := db.ExecContext(ctx, `CREATE TABLE t (a BIGINT NOT NULL)`)
	require.NoError(t, err)

	tbl := record.NewTable("a")
	require.NoError(t, tbl.AppendRow([]any{1}))
	require.NoError(t, tbl.AppendRow([]any{nil}))

	err = WriteSQL(ctx, db, "t", tbl, SQLOptions{})
	require.ErrorContains(t, err, "insert row 1")

	got, err := ReadSQL(ctx, db, `SELECT a FROM t`)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())

	assert.ErrorIs(t, WriteSQL(ctx, db, "", tbl, SQLOptions{}), ErrEmptyTableName)
}

func TestDialect(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DialectPostgres, DialectFor("pgx"))
	assert.Equal(t, DialectMySQL, DialectFor("mysql"))
	assert.Equal(t, DialectSQLite, DialectFor("sqlite"))

	assert.Equal(t, "$2", DialectPostgres.placeholder(1))
	assert.Equal(t, "?", DialectMySQL.placeholder(1))
	assert.Equal(t, "`a``b`", DialectMySQL.quote("a`b"))
	assert.Equal(t, `"a""b"`, DialectSQLite.quote(`a"b`))

	tbl := record.NewTable("n", "f", "s")
	require.NoError(t, tbl.AppendRow([]any{nil, 1.5, "x"}))
	require.NoError(t, tbl.AppendRow([]any{3, nil, nil}))
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "t" ("n" BIGINT, "f" DOUBLE PRECISION, "s" TEXT)`,
		createStatement(DialectSQLite, "t", tbl))
}

package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedOrder(t *testing.T) {
	files, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, files, 4)

	assert.Equal(t, "001_stock_data.sql", files[0].name)
	assert.Equal(t, "004_backtest_summaries.sql", files[3].name)
	assert.Contains(t, files[0].sql, "CREATE TABLE IF NOT EXISTS stock_data")
}

func TestClickhouseMigrations_Split(t *testing.T) {
	files, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, m := range files {
		require.NoError(t, validateNoSemicolonInStrings(m.sql), m.name)
		stmts := splitStatements(m.sql)
		assert.NotEmpty(t, stmts, m.name)
		for _, s := range stmts {
			assert.NotContains(t, s, "--", "comment left in %s", m.name)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	sql := "-- header\nCREATE TABLE a (x Int8);\n\nCREATE TABLE b (y Int8)\n;\n"
	assert.Equal(t, []string{"CREATE TABLE a (x Int8)", "CREATE TABLE b (y Int8)"}, splitStatements(sql))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings("SELECT 'a''b'; SELECT 1;"))
	assert.Error(t, validateNoSemicolonInStrings("SELECT 'a;b'"))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/bars")
	require.NoError(t, err)
	assert.Equal(t, "bars", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

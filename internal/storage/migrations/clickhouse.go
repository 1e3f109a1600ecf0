package migrations

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	chstore "volume-breakout-lab/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the dsn's database if needed and applies all
// embedded SQL files. Returns a connection to that database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := databaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}
	stmts := make(map[string][]string, len(files))
	for _, m := range files {
		if err := validateNoSemicolonInStrings(m.sql); err != nil {
			return nil, fmt.Errorf("validate migration %s: %w", m.name, err)
		}
		stmts[m.name] = splitStatements(m.sql)
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse admin: %w", err)
	}
	createErr := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName))
	admin.Close()
	if createErr != nil {
		return nil, fmt.Errorf("create database %s: %w", dbName, createErr)
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	// the native protocol runs one statement per Exec
	for _, m := range files {
		for _, stmt := range stmts[m.name] {
			if err := conn.Exec(ctx, stmt); err != nil {
				conn.Close()
				return nil, fmt.Errorf("apply migration %s: %w", m.name, err)
			}
		}
	}

	return conn, nil
}

// splitStatements splits SQL on semicolons after dropping blank lines and
// -- comments. Block comments are not supported.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings returns an error if a single-quoted string
// literal contains a semicolon, which splitStatements would cut.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				i++ // escaped quote
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return fmt.Errorf("semicolon inside string literal at offset %d", i)
			}
		}
	}
	return nil
}

func databaseFromDSN(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}

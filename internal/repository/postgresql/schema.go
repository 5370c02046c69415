package postgresql

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/assetverse-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	err := WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, stmt := range splitStatements(schemaSQL) {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return database.Unavailable("apply schema", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Database schema ensured")
	return nil
}

func splitStatements(sql string) []string {
	var stmts []string
	for _, part := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			stmts = append(stmts, strings.Join(lines, "\n"))
		}
	}
	return stmts
}

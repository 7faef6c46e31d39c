// Command dbcheck is a connectivity probe: it opens one connection with the
// configured credentials, lists the schemas visible to the role and exits.
// Useful for verifying credentials and network reachability before running
// the adapter.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/greendigit-eu/cnr-sql-adapter/internal/config"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.URL())
	if err != nil {
		slog.Error("failed to connect", "host", cfg.Database.Host, "error", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, "SELECT schema_name FROM information_schema.schemata")
	if err != nil {
		slog.Error("failed to list schemas", "error", err)
		os.Exit(1)
	}
	defer rows.Close()

	for rows.Next() {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			slog.Error("failed to scan schema row", "error", err)
			os.Exit(1)
		}
		fmt.Println(schema)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed reading schema rows", "error", err)
		os.Exit(1)
	}

	fmt.Println("connection ok")
}

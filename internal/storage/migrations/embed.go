// Package migrations holds the embedded schema files and the runners
// that apply them in lexical order.
package migrations

import "embed"

// PostgresFS contains the PostgreSQL schema migrations.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS contains the ClickHouse schema migrations.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

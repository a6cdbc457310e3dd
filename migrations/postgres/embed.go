// Package migrations embebe las migraciones SQL (formato goose) de PostgreSQL.
package migrations

import "embed"

// FS contiene las migraciones *.sql.
//
//go:embed *.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "."

// Package repository define las interfaces de repositorio del dominio.
//
// Las implementaciones viven en internal/store/pg (PostgreSQL) e
// internal/store/memory (tests y modo desarrollo).
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Find* devuelve (nil, nil) si la fila no existe.
//   - Update*/Delete* devuelven (nil, nil) o (false, nil) si la fila no existe.
//   - Violaciones de unicidad se traducen a ErrConflict.
package repository

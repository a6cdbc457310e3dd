package repository

import "errors"

// Los métodos Find* NO usan ErrNotFound: la ausencia se reporta como (nil, nil)
// y el caller decide si es un error. Estos sentinels cubren el resto.
var (
	// ErrConflict indica una violación de unicidad (ej: email duplicado).
	ErrConflict = errors.New("conflict")

	// ErrForeignKey indica una referencia a una fila inexistente (ej: tenant_id).
	ErrForeignKey = errors.New("foreign key violation")

	// ErrNoDatabase indica que no hay base de datos configurada.
	ErrNoDatabase = errors.New("no database configured")
)

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsForeignKey verifica si el error es ErrForeignKey.
func IsForeignKey(err error) bool {
	return errors.Is(err, ErrForeignKey)
}

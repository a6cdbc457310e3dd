// Package password implementa el hash y la verificación de credenciales.
//
// El hash activo se elige por configuración (bcrypt o argon2id); Verify
// reconoce ambos formatos por prefijo, así cambiar de algoritmo no invalida
// los hashes existentes.
package password

import (
	"errors"
	"fmt"
	"strings"
)

// Algoritmos soportados.
const (
	AlgBcrypt   = "bcrypt"
	AlgArgon2id = "argon2id"
)

// ErrEmptyPassword se devuelve al intentar hashear un password vacío.
var ErrEmptyPassword = errors.New("password: empty password")

// Hasher es la capacidad opaca hash+verify.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Options configura New.
type Options struct {
	Algorithm  string // bcrypt (default) | argon2id
	BcryptCost int    // default 10
	Argon2     Params // default Default
}

// New construye el Hasher configurado.
func New(opts Options) (Hasher, error) {
	bc := Bcrypt{Cost: opts.BcryptCost}
	ar := Argon2id{Params: opts.Argon2}
	if ar.Params == (Params{}) {
		ar.Params = Default
	}

	switch strings.ToLower(strings.TrimSpace(opts.Algorithm)) {
	case "", AlgBcrypt:
		return &multi{active: bc, bcrypt: bc, argon: ar}, nil
	case AlgArgon2id:
		return &multi{active: ar, bcrypt: bc, argon: ar}, nil
	default:
		return nil, fmt.Errorf("password: unknown algorithm %q", opts.Algorithm)
	}
}

// multi hashea con el algoritmo activo y verifica cualquiera de los soportados.
type multi struct {
	active Hasher
	bcrypt Bcrypt
	argon  Argon2id
}

func (m *multi) Hash(plain string) (string, error) {
	return m.active.Hash(plain)
}

func (m *multi) Verify(plain, hash string) bool {
	switch {
	case strings.HasPrefix(hash, argon2idPrefix):
		return m.argon.Verify(plain, hash)
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return m.bcrypt.Verify(plain, hash)
	default:
		return false
	}
}

package password

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost es el costo usado si no se configura otro.
const DefaultBcryptCost = 10

// Bcrypt hashea con golang.org/x/crypto/bcrypt.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) cost() int {
	if b.Cost < bcrypt.MinCost || b.Cost > bcrypt.MaxCost {
		return DefaultBcryptCost
	}
	return b.Cost
}

func (b Bcrypt) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compara en tiempo constante (lo hace bcrypt internamente).
func (b Bcrypt) Verify(plain, hash string) bool {
	if plain == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMissingPrivateKey    = errors.New("jwt: private signing key not configured")
	ErrMissingRefreshSecret = errors.New("jwt: refresh token secret not configured")
	ErrInvalidKey           = errors.New("jwt: invalid RSA key")
)

// MinRSABits tamaño mínimo aceptado para la clave de firma.
const MinRSABits = 2048

// LoadRSAPrivateKey toma el PEM inline (tiene prioridad) o lo lee de path.
// Acepta PKCS#1 ("RSA PRIVATE KEY") y PKCS#8 ("PRIVATE KEY").
// Algunos entornos pasan el PEM con "\n" literales; se normalizan.
func LoadRSAPrivateKey(inline, path string) (*rsa.PrivateKey, error) {
	var raw []byte
	switch {
	case strings.TrimSpace(inline) != "":
		raw = []byte(strings.ReplaceAll(inline, `\n`, "\n"))
	case strings.TrimSpace(path) != "":
		b, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("jwt: read private key: %w", err)
		}
		raw = b
	default:
		return nil, ErrMissingPrivateKey
	}
	return ParseRSAPrivateKey(raw)
}

func ParseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrInvalidKey)
	}

	var key *rsa.PrivateKey
	switch block.Type {
	case "RSA PRIVATE KEY":
		k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		key = k
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		rk, ok := k.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidKey)
		}
		key = rk
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q", ErrInvalidKey, block.Type)
	}

	if key.N.BitLen() < MinRSABits {
		return nil, fmt.Errorf("%w: %d bits, need at least %d", ErrInvalidKey, key.N.BitLen(), MinRSABits)
	}
	return key, nil
}

// GenerateRSAKey genera una clave nueva (usado por authctl keys generate).
func GenerateRSAKey(bits int) (*rsa.PrivateKey, error) {
	if bits < MinRSABits {
		bits = MinRSABits
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

// EncodePrivateKeyPEM serializa en PKCS#8.
func EncodePrivateKeyPEM(key *rsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKeyPEM serializa la pública en PKIX.
func EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// KeyID deriva el kid como thumbprint RFC 7638 (SHA-256, base64url).
// Mismo input => mismo kid, así un restart no invalida tokens emitidos.
func KeyID(pub *rsa.PublicKey) string {
	// miembros requeridos en orden lexicográfico: e, kty, n
	doc := fmt.Sprintf(`{"e":"%s","kty":"RSA","n":"%s"}`,
		EncodeBase64URL(big.NewInt(int64(pub.E)).Bytes()),
		EncodeBase64URL(pub.N.Bytes()),
	)
	sum := sha256.Sum256([]byte(doc))
	return EncodeBase64URL(sum[:])
}

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

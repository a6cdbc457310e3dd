package jwt

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
)

// JWK representa una clave pública RSA publicada en /.well-known/jwks.json.
type JWK struct {
	Kty string `json:"kty"` // "RSA"
	Kid string `json:"kid"`
	Alg string `json:"alg,omitempty"` // "RS256"
	Use string `json:"use,omitempty"` // "sig"
	N   string `json:"n"`
	E   string `json:"e"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// PublicJWK construye el JWK de una pública RSA.
func PublicJWK(pub *rsa.PublicKey) JWK {
	return JWK{
		Kty: "RSA",
		Kid: KeyID(pub),
		Alg: "RS256",
		Use: "sig",
		N:   EncodeBase64URL(pub.N.Bytes()),
		E:   EncodeBase64URL(big.NewInt(int64(pub.E)).Bytes()),
	}
}

// RSAPublicKey decodifica n/e.
func (k JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("%w: kty %q", ErrInvalidKey, k.Kty)
	}
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil || len(n) == 0 {
		return nil, fmt.Errorf("%w: bad modulus", ErrInvalidKey)
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil || len(e) == 0 {
		return nil, fmt.Errorf("%w: bad exponent", ErrInvalidKey)
	}
	exp := new(big.Int).SetBytes(e)
	if !exp.IsInt64() || exp.Int64() < 3 {
		return nil, fmt.Errorf("%w: bad exponent", ErrInvalidKey)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}

// MarshalJWKS serializa el documento JWKS.
func MarshalJWKS(keys ...JWK) []byte {
	if keys == nil {
		keys = []JWK{}
	}
	b, _ := json.Marshal(JWKS{Keys: keys})
	return b
}

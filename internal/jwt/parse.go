package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrKIDMissing   = errors.New("jwt: kid missing")
)

// tolerancia de reloj para exp/iat
const clockSkew = 30 * time.Second

// Parser valida tokens entrantes. Access se resuelve por kid contra Keys,
// refresh con el secreto HS256.
type Parser struct {
	Issuer        string
	Keys          KeySet
	RefreshSecret []byte
	Now           func() time.Time // opcional
}

func (p *Parser) options(alg string) []jwtv5.ParserOption {
	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{alg}),
		jwtv5.WithIssuer(p.Issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithLeeway(clockSkew),
	}
	if p.Now != nil {
		opts = append(opts, jwtv5.WithTimeFunc(p.Now))
	}
	return opts
}

// ParseAccess valida firma RS256 (pubkey por kid), iss y exp.
// Cualquier fallo se reporta envuelto en ErrInvalidToken.
func (p *Parser) ParseAccess(ctx context.Context, raw string) (*Claims, error) {
	if p.Keys == nil {
		return nil, fmt.Errorf("%w: no key set", ErrInvalidToken)
	}
	keyfunc := func(t *jwtv5.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrKIDMissing
		}
		return p.Keys.Key(ctx, kid)
	}
	claims := &Claims{}
	if _, err := jwtv5.ParseWithClaims(raw, claims, keyfunc, p.options(jwtv5.SigningMethodRS256.Alg())...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := checkClaims(claims, false); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefresh valida firma HS256, iss, exp y presencia de jti.
// No consulta el store: la revocación la decide el llamador.
func (p *Parser) ParseRefresh(raw string) (*Claims, error) {
	if len(p.RefreshSecret) == 0 {
		return nil, fmt.Errorf("%w: no refresh secret", ErrInvalidToken)
	}
	keyfunc := func(*jwtv5.Token) (any, error) { return p.RefreshSecret, nil }

	claims := &Claims{}
	if _, err := jwtv5.ParseWithClaims(raw, claims, keyfunc, p.options(jwtv5.SigningMethodHS256.Alg())...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := checkClaims(claims, true); err != nil {
		return nil, err
	}
	return claims, nil
}

func checkClaims(c *Claims, needJTI bool) error {
	if c.Subject == "" {
		return fmt.Errorf("%w: sub missing", ErrInvalidToken)
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("%w: role %q", ErrInvalidToken, c.Role)
	}
	if needJTI && c.ID == "" {
		return fmt.Errorf("%w: jti missing", ErrInvalidToken)
	}
	return nil
}


package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/tenantauth/internal/domain/types"
)

const (
	DefaultIssuer     = "auth-service"
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Claims son las claims de access y refresh. El access no lleva jti.
type Claims struct {
	Role types.Role `json:"role"`
	jwtv5.RegisteredClaims
}

// IssuerConfig parámetros de NewIssuer.
type IssuerConfig struct {
	Issuer        string
	PrivateKey    *rsa.PrivateKey
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time // tests
}

// Issuer firma access tokens (RS256, clave privada) y refresh tokens
// (HS256, secreto compartido).
type Issuer struct {
	iss        string
	priv       *rsa.PrivateKey
	kid        string
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer falla si falta la clave privada o el secreto de refresh:
// el proceso no debe arrancar sin ellos.
func NewIssuer(cfg IssuerConfig) (*Issuer, error) {
	if cfg.PrivateKey == nil {
		return nil, ErrMissingPrivateKey
	}
	if err := cfg.PrivateKey.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(cfg.RefreshSecret) == 0 {
		return nil, ErrMissingRefreshSecret
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Issuer{
		iss:        cfg.Issuer,
		priv:       cfg.PrivateKey,
		kid:        KeyID(&cfg.PrivateKey.PublicKey),
		secret:     cfg.RefreshSecret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
	}, nil
}

func (i *Issuer) Issuer() string {
	return i.iss
}

func (i *Issuer) KID() string {
	return i.kid
}

func (i *Issuer) PublicKey() *rsa.PublicKey {
	return &i.priv.PublicKey
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) RefreshSecret() []byte {
	return i.secret
}

func (i *Issuer) JWKS() []byte {
	return MarshalJWKS(PublicJWK(i.PublicKey()))
}

func (i *Issuer) StaticKeySet() *StaticKeySet {
	return NewStaticKeySet(i.PublicKey())
}

// IssueAccess emite el access token {sub, role, iss, iat, exp} firmado RS256.
func (i *Issuer) IssueAccess(sub string, role types.Role) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.accessTTL)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Subject:   sub,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = i.kid
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.priv)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh emite el refresh token HS256; jti es el id del registro
// persistido antes de llamar acá.
func (i *Issuer) IssueRefresh(sub string, role types.Role, jti string) (string, time.Time, error) {
	if jti == "" {
		return "", time.Time{}, fmt.Errorf("jwt: refresh token requires jti")
	}
	now := i.now().UTC()
	exp := now.Add(i.refreshTTL)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.iss,
			Subject:   sub,
			ID:        jti,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

package jwt

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var (
	ErrUnknownKID      = errors.New("jwt: unknown kid")
	ErrJWKSThrottled   = errors.New("jwt: jwks fetch rate limited")
	ErrJWKSUnavailable = errors.New("jwt: jwks unavailable")
)

// KeySet resuelve la pública RSA de un kid.
type KeySet interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// StaticKeySet claves conocidas en memoria (la propia del servicio).
type StaticKeySet struct {
	keys map[string]*rsa.PublicKey
}

func NewStaticKeySet(pubs ...*rsa.PublicKey) *StaticKeySet {
	ks := &StaticKeySet{keys: make(map[string]*rsa.PublicKey, len(pubs))}
	for _, p := range pubs {
		if p != nil {
			ks.keys[KeyID(p)] = p
		}
	}
	return ks
}

func (s *StaticKeySet) Key(_ context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := s.keys[kid]; ok {
		return k, nil
	}
	return nil, ErrUnknownKID
}

// ─── Remote ───

// Fetch results reportados a OnFetch.
const (
	FetchOK        = "ok"
	FetchError     = "error"
	FetchThrottled = "throttled"
)

const maxJWKSBytes = 1 << 20

type RemoteOptions struct {
	CacheTTL         time.Duration // default 10m
	FetchesPerMinute int           // default 5
	Timeout          time.Duration // default 5s
	Client           *http.Client
	OnFetch          func(result string) // métricas
}

// RemoteKeySet obtiene claves de un endpoint JWKS.
// Las claves se cachean por kid; los fetch están limitados por un token
// bucket y los misses concurrentes comparten un único request.
type RemoteKeySet struct {
	uri     string
	client  *http.Client
	timeout time.Duration
	cache   *gocache.Cache
	limiter *rate.Limiter
	group   singleflight.Group
	onFetch func(string)
}

func NewRemoteKeySet(uri string, opts RemoteOptions) *RemoteKeySet {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.FetchesPerMinute <= 0 {
		opts.FetchesPerMinute = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.OnFetch == nil {
		opts.OnFetch = func(string) {}
	}
	return &RemoteKeySet{
		uri:     uri,
		client:  opts.Client,
		timeout: opts.Timeout,
		cache:   gocache.New(opts.CacheTTL, 2*opts.CacheTTL),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.FetchesPerMinute)), opts.FetchesPerMinute),
		onFetch: opts.OnFetch,
	}
}

func (r *RemoteKeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if k, ok := r.cached(kid); ok {
		return k, nil
	}
	// el fetch compartido no hereda la cancelación de quien lo disparó;
	// cada caller sólo espera hasta su propio deadline
	ch := r.group.DoChan("jwks", func() (any, error) {
		return nil, r.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrJWKSUnavailable, ctx.Err())
	}
	if k, ok := r.cached(kid); ok {
		return k, nil
	}
	return nil, ErrUnknownKID
}

func (r *RemoteKeySet) cached(kid string) (*rsa.PublicKey, bool) {
	v, ok := r.cache.Get(kid)
	if !ok {
		return nil, false
	}
	k, ok := v.(*rsa.PublicKey)
	return k, ok
}

func (r *RemoteKeySet) refresh(ctx context.Context) error {
	if !r.limiter.Allow() {
		r.onFetch(FetchThrottled)
		return ErrJWKSThrottled
	}
	doc, err := r.fetch(ctx)
	if err != nil {
		r.onFetch(FetchError)
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	r.onFetch(FetchOK)

	for _, k := range doc.Keys {
		if k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.RSAPublicKey()
		if err != nil {
			continue
		}
		r.cache.Set(k.Kid, pub, gocache.DefaultExpiration)
	}
	return nil
}

func (r *RemoteKeySet) fetch(ctx context.Context) (*JWKS, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var doc JWKS
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Flush vacía el cache (rotación manual).
func (r *RemoteKeySet) Flush() {
	r.cache.Flush()
}

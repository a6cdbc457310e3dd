package helpers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies redes cuyo X-Forwarded-For se acepta. Vacío => se usa
// siempre RemoteAddr y el header se ignora.
type TrustedProxies []netip.Prefix

// ParseTrustedProxies acepta IPs sueltas ("10.0.0.1") o CIDRs ("10.0.0.0/8").
func ParseTrustedProxies(list []string) (TrustedProxies, error) {
	out := make(TrustedProxies, 0, len(list))
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			pfx, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
			}
			out = append(out, pfx.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

func (t TrustedProxies) trusts(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// Resolve devuelve la IP del cliente. Sólo si el peer directo es un proxy
// confiable se recorre X-Forwarded-For de derecha a izquierda, saltando
// proxies confiables; el primer salto no confiable es el cliente.
func (t TrustedProxies) Resolve(r *http.Request) string {
	peer := remoteHost(r)
	if len(t) == 0 || !t.trusts(peer) {
		return peer
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// header manipulado: no seguir confiando en lo que hay a la izquierda
			return peer
		}
		if !t.trusts(hop) {
			return hop
		}
	}
	return peer
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type clientIPKey struct{}

// WithClientIP guarda la IP ya resuelta en el contexto.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP devuelve la IP resuelta por el middleware de real IP; sin él,
// el host de RemoteAddr. Nunca lee X-Forwarded-For por su cuenta.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

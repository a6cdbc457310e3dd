package password

import "unicode/utf8"

// Policy reglas mínimas para passwords nuevos (registro y cambio).
type Policy struct {
	MinLength int
	Blacklist *Blacklist
}

// Validate devuelve las razones de rechazo; vacío = ok.
func (p Policy) Validate(s string) []string {
	var reasons []string
	if utf8.RuneCountInString(s) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.Blacklist.Contains(s) {
		reasons = append(reasons, "too_common")
	}
	return reasons
}

package types

import "strings"

// SplitName parte un nombre compuesto "first last..." en el primer espacio.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i], strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// JoinName arma el nombre compuesto ignorando partes vacías.
func JoinName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// MergeName reemplaza sólo las mitades provistas (nil = conservar) del nombre actual.
func MergeName(current string, first, last *string) string {
	f, l := SplitName(current)
	if first != nil {
		f = *first
	}
	if last != nil {
		l = *last
	}
	return JoinName(f, l)
}

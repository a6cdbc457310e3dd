package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Blacklist es un conjunto de passwords prohibidos (case-insensitive).
// Es inmutable después de construido.
type Blacklist struct {
	data map[string]struct{}
}

// NewBlacklist construye una lista a partir de palabras sueltas.
func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: make(map[string]struct{}, len(words))}
	for _, w := range words {
		bl.add(w)
	}
	return bl
}

// LoadBlacklist lee un archivo con un password por línea ('#' = comentario).
// Un path vacío produce una lista vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := NewBlacklist()
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			bl.add(line)
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) add(w string) {
	if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
		b.data[w] = struct{}{}
	}
}

// Contains es nil-safe.
func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	_, ok := b.data[strings.ToLower(strings.TrimSpace(pwd))]
	return ok
}

// Len retorna la cantidad de entradas.
func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

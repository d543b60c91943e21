// Package ident allocates fixed-length numeric surrogate keys.
package ident

import (
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Width is the length of every gid.
const Width = 16

// Allocator derives gids from 128-bit random values read from src.
type Allocator struct {
	src io.Reader
}

// New returns an Allocator reading randomness from src. Passing the run's
// seeded kernel keeps gids reproducible.
func New(src io.Reader) *Allocator {
	return &Allocator{src: src}
}

// Next returns a new gid. Collisions are statistically negligible and are not
// checked.
func (a *Allocator) Next() string {
	id, err := uuid.NewRandomFromReader(a.src)
	if err != nil {
		// only reachable with a failing reader
		id = uuid.New()
	}
	return Format(id)
}

// Format renders id as a Width-digit decimal string.
func Format(id uuid.UUID) string {
	n := new(big.Int).SetBytes(id[:])
	s := n.String()
	if len(s) > Width {
		return s[:Width]
	}
	return strings.Repeat("0", Width-len(s)) + s
}

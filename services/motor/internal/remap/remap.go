// Package remap validates the user's logical-to-physical output order.
package remap

import (
	"motorconf-go/services/motor/config"
	"motorconf-go/services/motor/motorerr"
	"motorconf-go/x/mathx"
)

// Permutation maps logical motor i to physical output At(i).
type Permutation struct {
	n   int
	out [config.MaxMotors]uint8
}

// Identity is the permutation used when no remap is configured.
func Identity(n int) Permutation {
	var p Permutation
	p.n = n
	for i := range n {
		p.out[i] = uint8(i)
	}
	return p
}

// Apply checks that r is a bijection on [0, count). An empty remap is the
// identity. Errors name the first offending slot.
func Apply(r config.Remap, count int) (Permutation, error) {
	if r.Len() == 0 {
		return Identity(count), nil
	}
	if r.Len() != count {
		return Permutation{}, motorerr.RemapLength(r.Len(), count)
	}
	var (
		p    Permutation
		seen [config.MaxMotors]bool
	)
	p.n = count
	for i := range count {
		v := r.At(i)
		if !mathx.InRange(v, count) || seen[v] {
			return Permutation{}, motorerr.InvalidRemap(i, v, count)
		}
		seen[v] = true
		p.out[i] = v
	}
	return p, nil
}

func (p Permutation) Len() int       { return p.n }
func (p Permutation) At(i int) int   { return int(p.out[i]) }
func (p Permutation) Slice() []uint8 { return p.out[:p.n:p.n] }

// Inverse maps physical outputs back to logical motors.
func (p Permutation) Inverse() Permutation {
	var q Permutation
	q.n = p.n
	for i := range p.n {
		q.out[p.out[i]] = uint8(i)
	}
	return q
}

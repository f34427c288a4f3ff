// Package sampler draws pseudo-random pixel coordinates from a seed.
// Two samplers built from the same seed and bounds yield the same sequence.
package sampler

import (
	"encoding/binary"
	"errors"
	"image"
	"math/rand"

	"golang.org/x/crypto/blake2b"
)

// Mode selects how coordinates are drawn.
type Mode int

const (
	// Distinct never returns the same coordinate twice.
	Distinct Mode = iota
	// Replacement draws x and y independently, so coordinates may repeat.
	Replacement
)

func (m Mode) String() string {
	switch m {
	case Distinct:
		return "distinct"
	case Replacement:
		return "replacement"
	}
	return "unknown"
}

var ErrExhausted = errors.New("no more positions to sample")

// Seed maps a secret to a generator seed.
func Seed(secret string) int64 {
	sum := blake2b.Sum256([]byte(secret))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Capacity returns the number of distinct coordinates inside rect.
func Capacity(rect image.Rectangle) int {
	return rect.Dx() * rect.Dy()
}

// Sampler is a seeded coordinate sequence. It is not safe for concurrent use.
type Sampler struct {
	rng  *rand.Rand
	rect image.Rectangle
	mode Mode

	// swapped holds the displaced entries of the lazily shuffled index table.
	swapped map[int]int
	drawn   int
}

func New(seed int64, rect image.Rectangle, mode Mode) *Sampler {
	return &Sampler{
		rng:     rand.New(rand.NewSource(seed)),
		rect:    rect.Canon(),
		mode:    mode,
		swapped: make(map[int]int),
	}
}

// Next returns the next coordinate.
func (s *Sampler) Next() (image.Point, error) {
	w, h := s.rect.Dx(), s.rect.Dy()
	if w*h == 0 {
		return image.Point{}, ErrExhausted
	}
	if s.mode == Replacement {
		x := s.rng.Intn(w)
		y := s.rng.Intn(h)
		s.drawn++
		return s.rect.Min.Add(image.Pt(x, y)), nil
	}

	total := w * h
	if s.drawn >= total {
		return image.Point{}, ErrExhausted
	}
	// Fisher-Yates step over the virtual table [0, total).
	j := s.drawn + s.rng.Intn(total-s.drawn)
	idx := s.at(j)
	s.swapped[j] = s.at(s.drawn)
	delete(s.swapped, s.drawn)
	s.drawn++
	return s.rect.Min.Add(image.Pt(idx%w, idx/w)), nil
}

// Drawn returns how many coordinates were returned so far.
func (s *Sampler) Drawn() int {
	return s.drawn
}

func (s *Sampler) at(i int) int {
	if v, ok := s.swapped[i]; ok {
		return v
	}
	return i
}
